package cli

import (
	"encoding/json"
	"fmt"

	"github.com/compozy/tplsettings/engine/editor"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

type schemaDefinition struct {
	source   any
	fieldTag string
}

var schemaDefinitions = map[string]schemaDefinition{
	"component": {source: &settings.Component{}, fieldTag: "json"},
	"values":    {source: &editor.FormValues{}, fieldTag: "json"},
	"config":    {source: &config.Config{}, fieldTag: "koanf"},
}

// SchemaCmd prints the JSON schema of the files the other commands read.
func SchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema {component|values|config}",
		Short:     "Print the JSON schema of an input file kind",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"component", "values", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := buildSchema(schemaDefinitions[args[0]])
			if err != nil {
				return err
			}
			return writeOutput(cmd, data)
		},
	}
}

func buildSchema(definition schemaDefinition) (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		FieldNameTag:               definition.fieldTag,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(definition.source)
	schema.Version = "http://json-schema.org/draft-07/schema#"
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return out, nil
}
