package settings

// FieldKind is the control type of a setting.
type FieldKind string

const (
	KindInput     FieldKind = "input"
	KindTextarea  FieldKind = "textarea"
	KindPassword  FieldKind = "password"
	KindSelect    FieldKind = "select"
	KindCheckbox  FieldKind = "checkbox"
	KindColor     FieldKind = "color"
	KindComposite FieldKind = "composite"
	KindButton    FieldKind = "button"
	// KindRange is only produced for synthesized RANGE annotation controls.
	KindRange FieldKind = "range"
)

func (k FieldKind) String() string {
	return string(k)
}

// Textual reports whether the kind holds free text that may carry
// annotation tokens.
func (k FieldKind) Textual() bool {
	switch k {
	case KindInput, KindTextarea, KindPassword, "":
		return true
	default:
		return false
	}
}

// holdsValue is false for kinds that never carry data, such as buttons.
func (k FieldKind) holdsValue() bool {
	return k != KindButton
}
