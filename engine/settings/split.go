package settings

import (
	"fmt"
	"maps"
	"slices"

	"github.com/compozy/tplsettings/engine/core"
)

// SplitResult holds the data written by an instance save. Vars is nil for
// unbound components.
type SplitResult struct {
	Data     map[string]any `json:"data"`
	Vars     map[string]any `json:"templateVars,omitempty"`
	Bound    bool           `json:"bound"`
	Included []string       `json:"included,omitempty"`
}

// IncludedValues returns the data values of the included settings.
func (r *SplitResult) IncludedValues() map[string]any {
	out := make(map[string]any, len(r.Included))
	for _, name := range r.Included {
		if v, ok := r.Data[name]; ok {
			out[name] = v
		}
	}
	return out
}

// SplitValues splits form values using the component's current binding.
func SplitValues(comp *Component, values map[string]any) (*SplitResult, error) {
	if !comp.Bound() {
		return splitUnbound(comp, values)
	}
	return SplitWithIncluded(comp, comp.TemplateSchema(), values, comp.Included())
}

func splitUnbound(comp *Component, values map[string]any) (*SplitResult, error) {
	data, err := core.CloneMap(comp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to copy component data: %w", err)
	}
	for _, s := range comp.Settings {
		if !s.Type.holdsValue() {
			continue
		}
		if v, ok := values[s.Name]; ok {
			data[s.Name] = v
		}
	}
	return &SplitResult{Data: data}, nil
}

// SplitWithIncluded routes values for a template-bound component: included
// keys go to data, every other schema key goes to a freshly rebuilt variable
// bag. Keys absent from values keep their previous value from either side,
// then their declared default. comp is not modified.
func SplitWithIncluded(
	comp *Component,
	schema []Setting,
	values map[string]any,
	included []string,
) (*SplitResult, error) {
	partition, err := PartitionSettings(schema, included)
	if err != nil {
		return nil, err
	}
	data, err := core.CloneMap(comp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to copy component data: %w", err)
	}
	prevVars, err := core.CloneMap(comp.TemplateVars())
	if err != nil {
		return nil, fmt.Errorf("failed to copy template variables: %w", err)
	}
	delete(data, TemplateVarsKey)

	for _, name := range partition.Included {
		if v, ok := values[name]; ok {
			data[name] = v
			continue
		}
		if _, ok := data[name]; ok {
			continue
		}
		if v, ok := prevVars[name]; ok {
			data[name] = v
			continue
		}
		if s, ok := comp.Lookup(name); ok {
			data[name] = s.Value
		} else if s, ok := find(schema, name); ok {
			data[name] = s.Value
		}
	}

	vars := make(map[string]any, len(partition.Variables))
	for _, name := range partition.Variables {
		if v, ok := values[name]; ok {
			vars[name] = v
		} else {
			s, _ := find(schema, name)
			vars[name] = previousValue(prevVars, data, s)
		}
		delete(data, name)
	}

	return &SplitResult{
		Data:     data,
		Vars:     vars,
		Bound:    true,
		Included: partition.Included,
	}, nil
}

func previousValue(prevVars, data map[string]any, s Setting) any {
	if v, ok := prevVars[s.Name]; ok {
		return v
	}
	if v, ok := data[s.Name]; ok {
		return v
	}
	return s.Value
}

// ApplySplit writes a split result into comp.
func ApplySplit(comp *Component, result *SplitResult) {
	comp.Data = maps.Clone(result.Data)
	if comp.Data == nil {
		comp.Data = make(map[string]any)
	}
	if result.Bound {
		comp.SetTemplateVars(result.Vars)
	}
}

// WithDefaultsFrom returns a copy of schema whose defaults are replaced by
// the matching entries of values.
func WithDefaultsFrom(schema []Setting, values map[string]any) []Setting {
	out := slices.Clone(schema)
	for i := range out {
		if v, ok := values[out[i].Name]; ok {
			out[i].Value = v
		}
	}
	return out
}
