package settings

import "github.com/compozy/tplsettings/engine/core"

// Entry is one editable field handed to the dialog host.
type Entry struct {
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Type       FieldKind      `json:"type"`
	Value      any            `json:"value"`
	Validate   string         `json:"validate,omitempty"`
	Class      string         `json:"class,omitempty"`
	Options    []string       `json:"options,omitempty"`
	Variable   bool           `json:"variable,omitempty"`
	Vault      bool           `json:"vault,omitempty"`
	Children   []Entry        `json:"children,omitempty"`
	Events     []string       `json:"events,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// EntryFromSetting builds the entry for s holding value. Composite children
// take their value from the matching key of a map value, or their default.
func EntryFromSetting(s Setting, value any) Entry {
	entry := Entry{
		Name:     s.Name,
		Label:    s.DisplayLabel(),
		Type:     s.Type,
		Value:    value,
		Validate: s.Validate,
		Class:    s.Class,
		Options:  s.Options,
		Variable: s.Variable,
		Vault:    s.Vault,
	}
	if entry.Type == "" {
		entry.Type = KindInput
	}
	if len(s.Fields) == 0 {
		return entry
	}
	nested, _ := core.AsMap(value)
	entry.Children = make([]Entry, 0, len(s.Fields))
	for _, child := range s.Fields {
		childValue := child.Value
		if v, ok := nested[child.Name]; ok {
			childValue = v
		}
		entry.Children = append(entry.Children, EntryFromSetting(child, childValue))
	}
	return entry
}

// StringValue returns the entry value when it is a string.
func (e *Entry) StringValue() (string, bool) {
	s, ok := e.Value.(string)
	return s, ok
}
