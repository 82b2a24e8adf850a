package settings

import (
	"fmt"

	"github.com/compozy/tplsettings/engine/core"
)

// TemplateVarsKey is the data key holding the template variable bag.
const TemplateVarsKey = "_templateVars"

// Component is one placement of a configurable component.
type Component struct {
	ID          core.ID        `json:"id"                    yaml:"id"`
	Name        string         `json:"name"                  yaml:"name"`
	Title       string         `json:"title,omitempty"       yaml:"title,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string         `json:"icon,omitempty"        yaml:"icon,omitempty"`
	Settings    []Setting      `json:"settings"              yaml:"settings"`
	Data        map[string]any `json:"data"                  yaml:"data"`
	Properties  Properties     `json:"properties"            yaml:"properties"`
}

// Properties carries the template binding of a component.
type Properties struct {
	Template *TemplateInfo `json:"template,omitempty"         yaml:"template,omitempty"`
	// TemplateSettings is the settings schema of the bound template.
	TemplateSettings []Setting `json:"templateSettings,omitempty" yaml:"templateSettings,omitempty"`
}

// Bound reports whether the component is bound to a template.
func (c *Component) Bound() bool {
	return c.Properties.Template != nil
}

// Included returns the included settings of the bound template.
func (c *Component) Included() []string {
	if c.Properties.Template == nil {
		return nil
	}
	return c.Properties.Template.IncludedSettings
}

// TemplateSchema returns the template settings schema, falling back to the
// component's own settings when the template carries none.
func (c *Component) TemplateSchema() []Setting {
	if len(c.Properties.TemplateSettings) > 0 {
		return c.Properties.TemplateSettings
	}
	return c.Settings
}

// Lookup finds a setting definition by name in the component settings,
// then in the template schema.
func (c *Component) Lookup(name string) (Setting, bool) {
	if s, ok := find(c.Settings, name); ok {
		return s, true
	}
	return find(c.Properties.TemplateSettings, name)
}

// TemplateVars returns the template variable bag without copying it.
// A missing or malformed bag yields an empty map.
func (c *Component) TemplateVars() map[string]any {
	if c.Data == nil {
		return map[string]any{}
	}
	if vars, ok := core.AsMap(c.Data[TemplateVarsKey]); ok {
		return vars
	}
	return map[string]any{}
}

// SetTemplateVars replaces the template variable bag.
func (c *Component) SetTemplateVars(vars map[string]any) {
	if c.Data == nil {
		c.Data = make(map[string]any)
	}
	c.Data[TemplateVarsKey] = vars
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() (*Component, error) {
	copied, err := core.DeepCopy(c)
	if err != nil {
		return nil, fmt.Errorf("failed to clone component %s: %w", c.ID, err)
	}
	return copied, nil
}
