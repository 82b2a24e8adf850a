package cli

import (
	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/spf13/cobra"
)

// SplitCmd splits instance form values into component data and template
// variables.
func SplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split form values into component data and template variables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)
			flags := cmd.Flags()
			componentPath, _ := flags.GetString("component")
			valuesPath, _ := flags.GetString("values")
			outPath, _ := flags.GetString("out")
			comp, err := readComponent(componentPath)
			if err != nil {
				return core.NewError(err, "INVALID_INPUT", nil)
			}
			values := make(map[string]any)
			if valuesPath != "" {
				if err := readYAML(valuesPath, &values); err != nil {
					return core.NewError(err, "INVALID_INPUT", nil)
				}
			}
			result, err := settings.SplitValues(comp, values)
			if err != nil {
				return core.NewError(err, "SPLIT_FAILED", map[string]any{"component_id": comp.ID.String()})
			}
			settings.ApplySplit(comp, result)
			if err := settings.VerifyDuality(comp); err != nil {
				log.Warn("Component breaks the binding invariants after split", "error", err)
			}
			if outPath != "" {
				if err := writeComponent(outPath, comp); err != nil {
					return core.NewError(err, "WRITE_FAILED", nil)
				}
				log.Info("Component written", "path", outPath)
			}
			return writeOutput(cmd, result)
		},
	}
	cmd.Flags().String("component", "", "Component file (YAML or JSON)")
	cmd.Flags().String("values", "", "Form values file mapping setting names to values")
	cmd.Flags().String("out", "", "Write the updated component to this file")
	return cmd
}
