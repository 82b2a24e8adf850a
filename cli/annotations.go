package cli

import (
	"github.com/compozy/tplsettings/engine/annotation"
	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/override"
	"github.com/spf13/cobra"
)

type annotationsOutput struct {
	Fields []annotation.Field `json:"fields"           yaml:"fields"`
	Errors []string           `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// AnnotationsCmd parses annotation tokens out of a value.
func AnnotationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotations [value]",
		Short: "List the annotation tokens of a value with their decoded specs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return core.NewError(err, "INVALID_INPUT", nil)
			}
			fields, errs := annotation.Fields(raw)
			out := annotationsOutput{Fields: fields}
			if out.Fields == nil {
				out.Fields = []annotation.Field{}
			}
			for _, e := range errs {
				out.Errors = append(out.Errors, e.Error())
			}
			return writeOutput(cmd, out)
		},
	}
	cmd.Flags().String("file", "", "Read the value from a file")
	return cmd
}

// EligibilityCmd reports whether a value may be overridden per instance.
func EligibilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eligibility [value]",
		Short: "Evaluate override eligibility of a value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return core.NewError(err, "INVALID_INPUT", nil)
			}
			checked, err := cmd.Flags().GetBool("checked")
			if err != nil {
				return err
			}
			eligibility := override.Evaluate(raw)
			return writeOutput(cmd, map[string]any{
				"eligibility": eligibility,
				"toggle":      override.Toggle{Checked: checked}.Apply(eligibility),
			})
		},
	}
	cmd.Flags().String("file", "", "Read the value from a file")
	cmd.Flags().Bool("checked", false, "Current state of the override checkbox")
	return cmd
}
