package editor

import (
	"context"

	"github.com/compozy/tplsettings/engine/settings"
)

// Mode selects the dialog layout and the save path.
type Mode string

const (
	ModeSettings Mode = "settings"
	ModeTemplate Mode = "template"
)

// Tab names used by the dialog views.
const (
	TabSettings = "Settings"
	TabInfo     = "Info"
	TabHelp     = "Help"
)

// ActionSaveTemplate is the dialog action that runs the template-author save.
const ActionSaveTemplate = "Save Template Component"

// Tab is one page of the dialog.
type Tab struct {
	Name    string           `json:"name"`
	Entries []settings.Entry `json:"entries"`
}

// View is what the engine hands to the host when opening the dialog.
type View struct {
	Mode Mode  `json:"mode"`
	Tabs []Tab `json:"tabs"`
}

// Tab returns the named tab.
func (v View) Tab(name string) (Tab, bool) {
	for _, tab := range v.Tabs {
		if tab.Name == name {
			return tab, true
		}
	}
	return Tab{}, false
}

// Hooks are the callbacks a host invokes on user actions.
type Hooks struct {
	OnSave         func(ctx context.Context) error
	OnDraft        func(ctx context.Context) error
	OnBeforeCancel func(ctx context.Context) error
	OnCancel       func(ctx context.Context) error
	OnLoad         func(ctx context.Context) error
	Actions        []string
	Features       []string
}

// TabValues holds the resolved values of one tab. Included carries the state
// of the per-field include checkboxes; Invalid the fields the host marked.
type TabValues struct {
	Fields   map[string]any  `json:"fields"             yaml:"fields"`
	Included map[string]bool `json:"included,omitempty" yaml:"included,omitempty"`
	Invalid  []string        `json:"invalid,omitempty"  yaml:"invalid,omitempty"`
}

// FormValues maps tab name to its values.
type FormValues map[string]TabValues

// Fields returns the field values of tab, never nil.
func (f FormValues) Fields(tab string) map[string]any {
	if values, ok := f[tab]; ok && values.Fields != nil {
		return values.Fields
	}
	return map[string]any{}
}

// Host is the sidebar or dialog that renders entries and collects values.
type Host interface {
	Open(ctx context.Context, view View, hooks Hooks) error
	// Validate triggers field validation on one tab.
	Validate(ctx context.Context, tab string) error
	ReadValues(ctx context.Context) (FormValues, error)
	Close(ctx context.Context) error
}

// Confirmer asks the user yes/no questions.
type Confirmer interface {
	ConfirmDiscard(ctx context.Context) (bool, error)
	// ConfirmSave is the prompt of the template-edit cancel path.
	ConfirmSave(ctx context.Context) (bool, error)
}

// Notifier receives save outcomes.
type Notifier interface {
	SettingsSaved(ctx context.Context, comp *settings.Component)
	Failure(ctx context.Context, err error)
}

// ComponentSaver persists a component instance. Calls are awaited.
type ComponentSaver interface {
	SaveComponent(ctx context.Context, comp *settings.Component) error
}

// AgentSaver persists the whole agent. Calls are debounced.
type AgentSaver interface {
	SaveAgent(ctx context.Context) error
}
