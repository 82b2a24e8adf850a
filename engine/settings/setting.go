package settings

// Setting is one declared, named setting of a component. Value holds the
// declared default.
type Setting struct {
	Name     string    `json:"name"               yaml:"name"               mapstructure:"name"     validate:"required"`
	Type     FieldKind `json:"type"               yaml:"type"               mapstructure:"type"`
	Value    any       `json:"value,omitempty"    yaml:"value,omitempty"    mapstructure:"value"`
	Validate string    `json:"validate,omitempty" yaml:"validate,omitempty" mapstructure:"validate"`
	Label    string    `json:"label,omitempty"    yaml:"label,omitempty"    mapstructure:"label"`
	Class    string    `json:"class,omitempty"    yaml:"class,omitempty"    mapstructure:"class"`
	// Variable enables variable interpolation on input and textarea kinds.
	Variable bool `json:"variable,omitempty" yaml:"variable,omitempty" mapstructure:"variable"`
	// Vault stores password kinds in the secret vault.
	Vault   bool      `json:"vault,omitempty"   yaml:"vault,omitempty"   mapstructure:"vault"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Fields  []Setting `json:"fields,omitempty"  yaml:"fields,omitempty"  mapstructure:"fields"`
}

// DisplayLabel falls back to the name when no label is declared.
func (s *Setting) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

func names(list []Setting) []string {
	out := make([]string, 0, len(list))
	for i := range list {
		out = append(out, list[i].Name)
	}
	return out
}

func find(list []Setting, name string) (Setting, bool) {
	for i := range list {
		if list[i].Name == name {
			return list[i], true
		}
	}
	return Setting{}, false
}
