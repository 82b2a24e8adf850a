package cli

import (
	"errors"
	"fmt"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/pkg/config"
	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/spf13/cobra"
)

// ProjectCmd prints the editable entries of a component.
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the editable entries of a component",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			path, err := cmd.Flags().GetString("component")
			if err != nil {
				return err
			}
			comp, err := readComponent(path)
			if err != nil {
				return core.NewError(err, "INVALID_INPUT", nil)
			}
			strict, err := cmd.Flags().GetBool("strict")
			if err != nil {
				return err
			}
			strict = strict || cfg.Runtime.Strict()
			projection, err := settings.Project(ctx, comp, settings.GroupSync{}, settings.WithStrict(strict))
			if err != nil {
				return projectionError(err, comp)
			}
			logger.FromContext(ctx).Debug("Projected component",
				"component_id", comp.ID, "bound", projection.Bound, "entries", len(projection.Entries()))
			return writeOutput(cmd, projection)
		},
	}
	cmd.Flags().String("component", "", "Component file (YAML or JSON)")
	cmd.Flags().Bool("strict", false, "Fail on binding invariant breaches")
	return cmd
}

func projectionError(err error, comp *settings.Component) error {
	details := map[string]any{"component_id": comp.ID.String()}
	if errors.Is(err, settings.ErrInvariantViolation) {
		return core.NewError(err, "INVARIANT_VIOLATION", details)
	}
	return core.NewError(fmt.Errorf("failed to project component: %w", err), "PROJECTION_FAILED", details)
}
