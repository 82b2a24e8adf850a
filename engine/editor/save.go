package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/override"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/engine/template"
	"github.com/compozy/tplsettings/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultValidationYield is the pause between triggering validation on every
// tab and reading the results.
const DefaultValidationYield = 50 * time.Millisecond

// templateTabs are validated and read by the template-author save.
var templateTabs = []string{TabInfo, TabSettings, TabHelp}

// Saver runs the instance and template-author save paths. Concurrent saves
// of the same component on the same path share one execution.
type Saver struct {
	store      template.Store
	components ComponentSaver
	notifier   Notifier
	persister  *Persister
	yield      time.Duration
	publish    bool
	group      singleflight.Group
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

func WithPersister(p *Persister) SaverOption {
	return func(s *Saver) {
		s.persister = p
	}
}

func WithValidationYield(d time.Duration) SaverOption {
	return func(s *Saver) {
		s.yield = d
	}
}

// WithPublish sets the publish flag sent with template saves.
func WithPublish(publish bool) SaverOption {
	return func(s *Saver) {
		s.publish = publish
	}
}

func NewSaver(store template.Store, components ComponentSaver, notifier Notifier, opts ...SaverOption) *Saver {
	s := &Saver{
		store:      store,
		components: components,
		notifier:   notifier,
		yield:      DefaultValidationYield,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveInstance writes the settings tab values into comp. The component is
// only modified after the component saver accepted the staged copy.
func (s *Saver) SaveInstance(ctx context.Context, comp *settings.Component, host Host) (*settings.SplitResult, error) {
	v, err, shared := s.group.Do(flightKey(comp, ModeSettings), func() (any, error) {
		return s.saveInstance(ctx, comp, host)
	})
	if shared {
		logger.FromContext(ctx).Debug("Joined in-flight instance save", "component_id", comp.ID)
	}
	if err != nil {
		return nil, err
	}
	return v.(*settings.SplitResult), nil
}

func (s *Saver) saveInstance(ctx context.Context, comp *settings.Component, host Host) (*settings.SplitResult, error) {
	log := logger.FromContext(ctx)
	if err := host.Validate(ctx, TabSettings); err != nil {
		return nil, fmt.Errorf("failed to validate settings: %w", err)
	}
	form, err := host.ReadValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read form values: %w", err)
	}
	values := form.Fields(TabSettings)
	schema := comp.Settings
	if comp.Bound() {
		schema = comp.TemplateSchema()
	}
	invalid, err := invalidFields(schema, values, form[TabSettings].Invalid)
	if err != nil {
		return nil, err
	}
	if len(invalid) > 0 {
		return nil, &ValidationFailure{Tab: TabSettings, Fields: invalid}
	}
	split, err := settings.SplitValues(comp, values)
	if err != nil {
		return nil, err
	}
	staged, err := comp.Clone()
	if err != nil {
		return nil, err
	}
	settings.ApplySplit(staged, split)
	if err := s.components.SaveComponent(ctx, staged); err != nil {
		failure := &template.RemoteSaveFailure{Op: "save component", Cause: err}
		s.notifier.Failure(ctx, failure)
		return nil, failure
	}
	*comp = *staged
	log.Info("Component settings saved", "component_id", comp.ID, "bound", split.Bound)
	s.succeeded(ctx, comp)
	return split, nil
}

// SaveTemplate runs the template-author save. draft is the metadata being
// edited; nil uses the component's current template or a new draft. On any
// failure comp is left untouched.
func (s *Saver) SaveTemplate(
	ctx context.Context,
	comp *settings.Component,
	host Host,
	draft *settings.TemplateInfo,
) (*template.SaveResult, error) {
	v, err, shared := s.group.Do(flightKey(comp, ModeTemplate), func() (any, error) {
		return s.saveTemplate(ctx, comp, host, draft)
	})
	if shared {
		logger.FromContext(ctx).Debug("Joined in-flight template save", "component_id", comp.ID)
	}
	if err != nil {
		return nil, err
	}
	return v.(*template.SaveResult), nil
}

func (s *Saver) saveTemplate(
	ctx context.Context,
	comp *settings.Component,
	host Host,
	draft *settings.TemplateInfo,
) (*template.SaveResult, error) {
	log := logger.FromContext(ctx)
	form, err := s.validateTabs(ctx, host)
	if err != nil {
		return nil, err
	}
	schema := comp.TemplateSchema()
	values := form.Fields(TabSettings)
	for _, tab := range templateTabs {
		var tabSchema []settings.Setting
		if tab == TabSettings {
			tabSchema = schema
		}
		invalid, err := invalidFields(tabSchema, form.Fields(tab), form[tab].Invalid)
		if err != nil {
			return nil, err
		}
		if len(invalid) > 0 {
			return nil, &ValidationFailure{Tab: tab, Fields: invalid}
		}
	}

	// The included list must be final before the data split.
	included := includedFrom(schema, form[TabSettings].Included, values)
	info, err := s.nextInfo(comp, draft, form, included)
	if err != nil {
		return nil, err
	}

	staged, err := comp.Clone()
	if err != nil {
		return nil, err
	}
	split, err := settings.SplitWithIncluded(staged, schema, values, included)
	if err != nil {
		return nil, err
	}
	settings.ApplySplit(staged, split)
	defaults := core.CopyMaps(split.IncludedValues(), split.Vars)
	staged.Properties.TemplateSettings = settings.WithDefaultsFrom(schema, defaults)
	staged.Properties.Template = info

	def := &template.Definition{
		TemplateInfo:  *info,
		ComponentName: comp.Name,
		Settings:      staged.Properties.TemplateSettings,
		Data:          split.Vars,
	}
	res, err := s.store.SaveComponentTemplate(ctx, info.ID, def, s.publish)
	if err != nil {
		log.Error("Template save failed", "component_id", comp.ID, "template_id", info.ID, "error", err)
		s.notifier.Failure(ctx, err)
		return nil, err
	}

	info.ID = res.ID
	if saved := res.Definition; saved != nil {
		staged.Title = saved.Name
		staged.Icon = saved.Icon
		staged.Description = saved.Description
	}
	*comp = *staged
	log.Info("Template saved", "component_id", comp.ID, "template_id", res.ID, "included", included)
	s.succeeded(ctx, comp)
	return res, nil
}

// validateTabs triggers validation on every authoring tab, yields, then
// reads the values.
func (s *Saver) validateTabs(ctx context.Context, host Host) (FormValues, error) {
	for _, tab := range templateTabs {
		if err := host.Validate(ctx, tab); err != nil {
			return nil, fmt.Errorf("failed to validate tab %s: %w", tab, err)
		}
	}
	if s.yield > 0 {
		timer := time.NewTimer(s.yield)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	form, err := host.ReadValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read form values: %w", err)
	}
	return form, nil
}

// nextInfo merges the Info and Help tab values into the prior metadata.
func (s *Saver) nextInfo(
	comp *settings.Component,
	draft *settings.TemplateInfo,
	form FormValues,
	included []string,
) (*settings.TemplateInfo, error) {
	prior := draft
	if prior == nil {
		prior = comp.Properties.Template
	}
	if prior == nil {
		created, err := settings.NewTemplateInfo(comp)
		if err != nil {
			return nil, err
		}
		prior = created
	}
	patch := core.CopyMaps(form.Fields(TabInfo), form.Fields(TabHelp))
	info, err := prior.ApplyValues(patch)
	if err != nil {
		return nil, err
	}
	info.IncludedSettings = included
	if err := info.WithDefaults(); err != nil {
		return nil, err
	}
	if err := info.Validate(); err != nil {
		if failure, ok := infoFailure(err); ok {
			return nil, failure
		}
		return nil, err
	}
	return info, nil
}

func (s *Saver) succeeded(ctx context.Context, comp *settings.Component) {
	s.notifier.SettingsSaved(ctx, comp)
	if s.persister != nil {
		s.persister.Schedule()
	}
}

// includedFrom lists the checked names in schema order. A name whose value
// carries an annotation token is never included.
func includedFrom(schema []settings.Setting, checked map[string]bool, values map[string]any) []string {
	included := make([]string, 0, len(checked))
	for _, setting := range schema {
		if !checked[setting.Name] {
			continue
		}
		if raw, ok := values[setting.Name].(string); ok && !override.Evaluate(raw).OverrideAllowed {
			continue
		}
		included = append(included, setting.Name)
	}
	return included
}

// flightKey identifies the component by address so components sharing an
// empty or duplicated id never join each other's save.
func flightKey(comp *settings.Component, mode Mode) string {
	return fmt.Sprintf("%p:%s", comp, mode)
}
