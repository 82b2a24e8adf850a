package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/editor"
	"github.com/compozy/tplsettings/engine/override"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/engine/template"
	"github.com/compozy/tplsettings/pkg/config"
	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/spf13/cobra"
)

// TemplateCmd groups the template store commands.
func TemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Author component templates",
	}
	cmd.AddCommand(templateSaveCmd(), templateCollectionsCmd())
	return cmd
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store-url", "", "Template store base URL; empty uses an in-memory store")
	cmd.Flags().Bool("publish", false, "Publish the template on save")
}

func templateSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a component as a template from dialog values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()
			componentPath, _ := flags.GetString("component")
			valuesPath, _ := flags.GetString("values")
			outPath, _ := flags.GetString("out")
			comp, err := readComponent(componentPath)
			if err != nil {
				return core.NewError(err, "INVALID_INPUT", nil)
			}
			values := editor.FormValues{}
			if valuesPath != "" {
				if err := readYAML(valuesPath, &values); err != nil {
					return core.NewError(err, "INVALID_INPUT", nil)
				}
			}
			if err := runTemplateSave(ctx, config.FromContext(ctx), comp, values, outPath); err != nil {
				return saveError(err, comp)
			}
			return writeOutput(cmd, comp)
		},
	}
	cmd.Flags().String("component", "", "Component file (YAML or JSON)")
	cmd.Flags().String("values", "", "Dialog values file keyed by tab name")
	cmd.Flags().String("out", "", "Write the saved component to this file")
	addStoreFlags(cmd)
	return cmd
}

// runTemplateSave drives a dialog session through the template-author save.
func runTemplateSave(
	ctx context.Context,
	cfg *config.Config,
	comp *settings.Component,
	values editor.FormValues,
	outPath string,
) error {
	store, err := newStore(cfg, comp)
	if err != nil {
		return err
	}
	saver := &fileSaver{path: outPath, comp: comp}
	persister := editor.NewPersister(ctx, saver, cfg.Editor.AgentSaveWait, cfg.Editor.AgentSaveMaxWait)
	defer persister.Close()
	engine := editor.NewSaver(store, saver, logNotifier{},
		editor.WithPersister(persister),
		editor.WithValidationYield(cfg.Editor.ValidationYield),
		editor.WithPublish(cfg.Store.Publish),
	)
	host := NewStaticHost(values)
	session := editor.NewSession(comp, host, autoConfirmer(true), engine, store,
		editor.WithStrict(cfg.Runtime.Strict()),
		editor.WithTracker(override.NewTracker(override.WithMountDelay(cfg.Editor.MountDelay))),
		editor.WithCollectionsCache(template.NewCollectionsCache(cfg.Editor.CollectionsTTL)),
	)
	if err := session.OpenSettings(ctx); err != nil {
		return err
	}
	if err := session.EnterTemplateEdit(ctx); err != nil {
		return err
	}
	if err := session.Save(ctx); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Template saved",
		"component_id", comp.ID, "template_id", comp.Properties.Template.ID)
	if err := persister.Flush(ctx); err != nil {
		return fmt.Errorf("failed to persist agent: %w", err)
	}
	return nil
}

func templateCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the component collections of the template store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := newStore(config.FromContext(ctx), nil)
			if err != nil {
				return core.NewError(err, "INVALID_CONFIG", nil)
			}
			collections, err := store.GetComponentsCollections(ctx)
			if err != nil {
				return core.NewError(err, "REMOTE_FETCH_FAILED", nil)
			}
			if collections == nil {
				collections = []template.Collection{}
			}
			return writeOutput(cmd, collections)
		},
	}
	addStoreFlags(cmd)
	return cmd
}

// newStore returns the HTTP store when a base URL is configured and an
// in-memory store otherwise. The in-memory store starts with the template
// comp is bound to, so saving a bound component updates it.
func newStore(cfg *config.Config, comp *settings.Component) (template.Store, error) {
	if !cfg.Store.Remote() {
		store := template.NewMemoryStore()
		if err := seedStore(store, comp); err != nil {
			return nil, err
		}
		return store, nil
	}
	client, err := template.NewClient(template.ClientConfig{
		BaseURL:    cfg.Store.BaseURL,
		APIKey:     cfg.Store.APIKey.Value(),
		Timeout:    cfg.Store.Timeout,
		RetryCount: cfg.Store.RetryCount,
		Debug:      cfg.Runtime.LogLevel == "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template store client: %w", err)
	}
	return client, nil
}

func seedStore(store *template.MemoryStore, comp *settings.Component) error {
	if comp == nil || !comp.Bound() || comp.Properties.Template.ID.IsZero() {
		return nil
	}
	def := &template.Definition{
		TemplateInfo:  *comp.Properties.Template,
		ComponentName: comp.Name,
		Settings:      comp.TemplateSchema(),
		Data:          comp.TemplateVars(),
	}
	if err := store.Seed(def); err != nil {
		return fmt.Errorf("failed to seed template %s: %w", def.ID, err)
	}
	return nil
}

func saveError(err error, comp *settings.Component) error {
	details := map[string]any{"component_id": comp.ID.String()}
	var validation *editor.ValidationFailure
	switch {
	case errors.As(err, &validation):
		details["tab"] = validation.Tab
		details["fields"] = validation.Fields
		return core.NewError(err, "VALIDATION_FAILED", details)
	case errors.Is(err, template.ErrRemoteSave):
		return core.NewError(err, "REMOTE_SAVE_FAILED", details)
	case errors.Is(err, settings.ErrInvariantViolation):
		return core.NewError(err, "INVARIANT_VIOLATION", details)
	case errors.Is(err, editor.ErrInvalidTransition):
		return core.NewError(err, "INVALID_TRANSITION", details)
	default:
		return core.NewError(err, "SAVE_FAILED", details)
	}
}
