package settings

import (
	"fmt"
	"slices"
	"sync"

	"dario.cat/mergo"
	"github.com/Masterminds/semver/v3"
	"github.com/compozy/tplsettings/engine/core"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// TemplateInfo is the metadata of a reusable component template.
// IncludedSettings is the authoritative list of settings editable per
// instance; every other schema key is a template variable.
type TemplateInfo struct {
	ID                 core.ID  `json:"id,omitempty"                 yaml:"id,omitempty"                 mapstructure:"id"`
	Name               string   `json:"name"                         yaml:"name"                         mapstructure:"name"               validate:"required"`
	Description        string   `json:"description,omitempty"        yaml:"description,omitempty"        mapstructure:"description"`
	SidebarDescription string   `json:"sidebarDescription,omitempty" yaml:"sidebarDescription,omitempty" mapstructure:"sidebarDescription"`
	Icon               string   `json:"icon,omitempty"               yaml:"icon,omitempty"               mapstructure:"icon"`
	Color              string   `json:"color,omitempty"              yaml:"color,omitempty"              mapstructure:"color"              validate:"omitempty,hexcolor"`
	DocPath            string   `json:"docPath,omitempty"            yaml:"docPath,omitempty"            mapstructure:"docPath"`
	YTLink             string   `json:"ytLink,omitempty"             yaml:"ytLink,omitempty"             mapstructure:"ytLink"             validate:"omitempty,url"`
	Collection         string   `json:"collection,omitempty"         yaml:"collection,omitempty"         mapstructure:"collection"`
	Version            string   `json:"version,omitempty"            yaml:"version,omitempty"            mapstructure:"version"            validate:"omitempty,template_version"`
	Published          bool     `json:"published"                    yaml:"published"                    mapstructure:"published"`
	IncludedSettings   []string `json:"includedSettings"             yaml:"includedSettings"             mapstructure:"includedSettings"`
}

const (
	DefaultTemplateIcon    = "default-component"
	DefaultTemplateColor   = "#3C89F9"
	DefaultTemplateVersion = "1.0.0"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Versions follow semver; a missing patch or minor part is accepted.
		_ = validate.RegisterValidation("template_version", func(fl validator.FieldLevel) bool {
			_, err := semver.NewVersion(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// NewTemplateInfo builds the draft metadata used when a component is turned
// into a template for the first time.
func NewTemplateInfo(comp *Component) (*TemplateInfo, error) {
	name := comp.Title
	if name == "" {
		name = comp.Name
	}
	info := &TemplateInfo{
		Name:             name,
		Description:      comp.Description,
		Icon:             comp.Icon,
		IncludedSettings: []string{},
	}
	if err := info.WithDefaults(); err != nil {
		return nil, err
	}
	return info, nil
}

// WithDefaults fills empty icon, color and version.
func (t *TemplateInfo) WithDefaults() error {
	defaults := TemplateInfo{
		Icon:    DefaultTemplateIcon,
		Color:   DefaultTemplateColor,
		Version: DefaultTemplateVersion,
	}
	if err := mergo.Merge(t, defaults); err != nil {
		return fmt.Errorf("failed to merge template defaults: %w", err)
	}
	if t.IncludedSettings == nil {
		t.IncludedSettings = []string{}
	}
	return nil
}

// ApplyValues returns a copy of t with the supplied keys overwritten. Keys the
// author did not expose keep their prior value. The id and the included list
// are never taken from form values.
func (t *TemplateInfo) ApplyValues(values map[string]any) (*TemplateInfo, error) {
	next, err := core.DeepCopy(*t)
	if err != nil {
		return nil, fmt.Errorf("failed to copy template info: %w", err)
	}
	patch := make(map[string]any, len(values))
	for key, value := range values {
		if key == "id" || key == "includedSettings" {
			continue
		}
		patch[key] = value
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &next,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create template info decoder: %w", err)
	}
	if err := decoder.Decode(patch); err != nil {
		return nil, fmt.Errorf("failed to apply template info values: %w", err)
	}
	return &next, nil
}

// Validate checks the metadata against its struct rules.
func (t *TemplateInfo) Validate() error {
	if t == nil {
		return fmt.Errorf("template info cannot be nil")
	}
	if err := getValidator().Struct(t); err != nil {
		return fmt.Errorf("invalid template info: %w", err)
	}
	return nil
}

// Includes reports whether name is an included setting.
func (t *TemplateInfo) Includes(name string) bool {
	if t == nil {
		return false
	}
	return slices.Contains(t.IncludedSettings, name)
}
