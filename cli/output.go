package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Output format constants
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// writeOutput renders data in the --format of cmd to its output stream.
func writeOutput(cmd *cobra.Command, data any) error {
	format, err := stringFlag(cmd, "format")
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), format, data, colorEnabled(cmd.OutOrStdout()))
}

func render(w io.Writer, format string, data any, color bool) error {
	switch format {
	case OutputFormatJSON, "":
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		out := pretty.Pretty(raw)
		if color {
			out = pretty.Color(out, nil)
		}
		_, err = w.Write(out)
		return err
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// colorEnabled reports whether w is an interactive terminal that accepts
// colors.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
