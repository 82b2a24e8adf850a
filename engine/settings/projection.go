package settings

import (
	"context"
	"slices"

	"github.com/compozy/tplsettings/pkg/logger"
)

// Projection is the set of editable entries for one component. Instance is
// used for unbound components; Included and Variables for bound ones.
type Projection struct {
	Bound     bool    `json:"bound"`
	Instance  []Entry `json:"instance,omitempty"`
	Included  []Entry `json:"included,omitempty"`
	Variables []Entry `json:"variables,omitempty"`
}

// Entries returns every entry of the projection in display order.
func (p *Projection) Entries() []Entry {
	if !p.Bound {
		return p.Instance
	}
	return append(slices.Clone(p.Included), p.Variables...)
}

type projectOptions struct {
	strict bool
}

// ProjectOption configures Project.
type ProjectOption func(*projectOptions)

// WithStrict makes Project fail on invariant breaches instead of routing
// unresolvable keys to the template variables.
func WithStrict(strict bool) ProjectOption {
	return func(o *projectOptions) {
		o.strict = strict
	}
}

// Project builds the editable entries of comp. Every emitted entry,
// including nested composite children, passes through sync.
func Project(
	ctx context.Context,
	comp *Component,
	sync CompositeSynchronizer,
	opts ...ProjectOption,
) (*Projection, error) {
	options := projectOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if sync == nil {
		sync = PassThrough
	}
	if !comp.Bound() {
		entries := make([]Entry, 0, len(comp.Settings))
		for _, s := range comp.Settings {
			entries = append(entries, syncEntry(sync, EntryFromSetting(s, valueOrDefault(comp.Data, s))))
		}
		return &Projection{Instance: entries}, nil
	}
	return projectBound(ctx, comp, sync, options)
}

func projectBound(
	ctx context.Context,
	comp *Component,
	sync CompositeSynchronizer,
	options projectOptions,
) (*Projection, error) {
	schema := comp.TemplateSchema()
	included := comp.Included()
	partition, err := PartitionSettings(schema, included)
	if err != nil {
		return nil, err
	}
	vars := comp.TemplateVars()
	projection := &Projection{Bound: true}
	violation := &InvariantViolation{ComponentID: comp.ID.String()}
	for _, name := range partition.Included {
		s, ok := comp.Lookup(name)
		if !ok {
			violation.Unresolved = append(violation.Unresolved, name)
			continue
		}
		entry := EntryFromSetting(s, valueOrDefault(comp.Data, s))
		projection.Included = append(projection.Included, syncEntry(sync, entry))
	}
	for _, name := range partition.Variables {
		s, _ := find(schema, name)
		entry := EntryFromSetting(s, valueOrDefault(vars, s))
		projection.Variables = append(projection.Variables, syncEntry(sync, entry))
	}
	if len(violation.Unresolved) > 0 {
		if options.strict {
			return nil, violation
		}
		logger.FromContext(ctx).Warn("Routing unresolved included settings to template variables",
			"component_id", comp.ID, "keys", violation.Unresolved)
		for _, name := range violation.Unresolved {
			value, ok := vars[name]
			if !ok {
				value = comp.Data[name]
			}
			entry := EntryFromSetting(Setting{Name: name, Type: KindInput}, value)
			projection.Variables = append(projection.Variables, syncEntry(sync, entry))
		}
	}
	check := Partition{
		Included:  entryNames(projection.Included),
		Variables: entryNames(projection.Variables),
	}
	if err := check.Verify(schema, includedResolved(included, violation, options.strict)); err != nil {
		return nil, err
	}
	return projection, nil
}

// includedResolved drops unresolved names in lenient mode, where they were
// moved to the variables projection.
func includedResolved(included []string, violation *InvariantViolation, strict bool) []string {
	if strict || len(violation.Unresolved) == 0 {
		return included
	}
	out := make([]string, 0, len(included))
	for _, name := range included {
		if !slices.Contains(violation.Unresolved, name) {
			out = append(out, name)
		}
	}
	return out
}

// VerifyDuality checks that included keys live only in data and template
// variable keys live only in the variable bag.
func VerifyDuality(comp *Component) error {
	if !comp.Bound() {
		return nil
	}
	partition, err := PartitionSettings(comp.TemplateSchema(), comp.Included())
	if err != nil {
		return err
	}
	vars := comp.TemplateVars()
	violation := &InvariantViolation{ComponentID: comp.ID.String()}
	for _, name := range partition.Included {
		_, inData := comp.Data[name]
		_, inVars := vars[name]
		switch {
		case inData && inVars:
			violation.Duplicated = append(violation.Duplicated, name)
		case !inData && !inVars:
			violation.Missing = append(violation.Missing, name)
		}
	}
	for _, name := range partition.Variables {
		_, inData := comp.Data[name]
		_, inVars := vars[name]
		switch {
		case inData && inVars:
			violation.Duplicated = append(violation.Duplicated, name)
		case !inData && !inVars:
			violation.Missing = append(violation.Missing, name)
		}
	}
	if violation.empty() {
		return nil
	}
	return violation
}

func valueOrDefault(values map[string]any, s Setting) any {
	if v, ok := values[s.Name]; ok {
		return v
	}
	return s.Value
}

func entryNames(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for i := range entries {
		out = append(out, entries[i].Name)
	}
	return out
}
