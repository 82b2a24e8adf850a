package override

import "github.com/compozy/tplsettings/engine/annotation"

const (
	LabelAllowed    = "Allow Override"
	LabelDisallowed = "Override Not allowed With Custom Variables"
)

// Eligibility says whether a field may be overridden per instance.
type Eligibility struct {
	OverrideAllowed bool   `json:"override_allowed" yaml:"override_allowed"`
	ReasonLabel     string `json:"reason_label"     yaml:"reason_label"`
}

// Evaluate derives eligibility from the current raw value. A value carrying
// any annotation token cannot be overridden.
func Evaluate(raw string) Eligibility {
	if annotation.HasAnnotations(raw) {
		return Eligibility{OverrideAllowed: false, ReasonLabel: LabelDisallowed}
	}
	return Eligibility{OverrideAllowed: true, ReasonLabel: LabelAllowed}
}

// Toggle is the state of a field's override checkbox.
type Toggle struct {
	Checked  bool   `json:"checked"  yaml:"checked"`
	Disabled bool   `json:"disabled" yaml:"disabled"`
	Hidden   bool   `json:"hidden"   yaml:"hidden"`
	Label    string `json:"label"    yaml:"label"`
}

// Apply returns the toggle state that follows from e. The checked state
// survives only while override stays allowed.
func (t Toggle) Apply(e Eligibility) Toggle {
	if !e.OverrideAllowed {
		return Toggle{Checked: false, Disabled: true, Hidden: true, Label: e.ReasonLabel}
	}
	return Toggle{Checked: t.Checked, Disabled: false, Hidden: false, Label: e.ReasonLabel}
}
