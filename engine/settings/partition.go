package settings

import "slices"

// Partition splits a template schema into included settings and template
// variables. The two lists are disjoint and together cover the schema keys
// plus the included names.
type Partition struct {
	Included  []string `json:"included"`
	Variables []string `json:"variables"`
}

// PartitionSettings computes the verified split of schema under included.
func PartitionSettings(schema []Setting, included []string) (Partition, error) {
	p := Partition{
		Included:  dedupe(included),
		Variables: make([]string, 0, len(schema)),
	}
	for i := range schema {
		name := schema[i].Name
		if slices.Contains(p.Included, name) || slices.Contains(p.Variables, name) {
			continue
		}
		p.Variables = append(p.Variables, name)
	}
	if err := p.Verify(schema, included); err != nil {
		return Partition{}, err
	}
	return p, nil
}

// Verify checks disjointness and coverage against schema and included.
func (p Partition) Verify(schema []Setting, included []string) error {
	violation := &InvariantViolation{}
	seen := make(map[string]int, len(p.Included)+len(p.Variables))
	for _, name := range p.Included {
		seen[name]++
	}
	for _, name := range p.Variables {
		seen[name]++
	}
	for name, count := range seen {
		if count > 1 {
			violation.Duplicated = append(violation.Duplicated, name)
		}
	}
	for _, name := range append(names(schema), included...) {
		if name == "" {
			continue
		}
		if seen[name] == 0 && !slices.Contains(violation.Missing, name) {
			violation.Missing = append(violation.Missing, name)
		}
	}
	if violation.empty() {
		return nil
	}
	slices.Sort(violation.Duplicated)
	return violation
}

// IsIncluded reports whether name is in the included list.
func (p Partition) IsIncluded(name string) bool {
	return slices.Contains(p.Included, name)
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, name := range list {
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
