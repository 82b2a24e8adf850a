package editor

// State is a stable state of the settings session.
type State string

const (
	StateClosed           State = "closed"
	StateSettingsOpen     State = "settings_open"
	StateTemplateEditOpen State = "template_edit_open"
)

func (s State) String() string {
	return string(s)
}

// Outcome is the transient result recorded when the session closes.
type Outcome string

const (
	OutcomeNone               Outcome = ""
	OutcomeSaved              Outcome = "saved"
	OutcomeCancelledDiscarded Outcome = "cancelled_discarded"
	OutcomeCancelledKept      Outcome = "cancelled_kept"
)
