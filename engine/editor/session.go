package editor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/compozy/tplsettings/engine/core"
	"github.com/compozy/tplsettings/engine/override"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/engine/template"
	"github.com/compozy/tplsettings/pkg/logger"
)

// Session drives the settings dialog of one component through its states.
// Hooks handed to the host call back into the session, so no lock is held
// while a collaborator runs.
type Session struct {
	comp      *settings.Component
	host      Host
	confirmer Confirmer
	saver     *Saver
	store     template.Store
	cache     *template.CollectionsCache
	tracker   *override.Tracker
	sync      settings.CompositeSynchronizer
	strict    bool

	mu       sync.Mutex
	state    State
	last     Outcome
	snapshot map[string]any
	draft    *settings.TemplateInfo
	view     View
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStrict makes duality violations fail the projection.
func WithStrict(strict bool) SessionOption {
	return func(s *Session) {
		s.strict = strict
	}
}

func WithSynchronizer(sync settings.CompositeSynchronizer) SessionOption {
	return func(s *Session) {
		s.sync = sync
	}
}

func WithTracker(t *override.Tracker) SessionOption {
	return func(s *Session) {
		s.tracker = t
	}
}

func WithCollectionsCache(c *template.CollectionsCache) SessionOption {
	return func(s *Session) {
		s.cache = c
	}
}

// NewSession creates a closed session for comp.
func NewSession(
	comp *settings.Component,
	host Host,
	confirmer Confirmer,
	saver *Saver,
	store template.Store,
	opts ...SessionOption,
) *Session {
	s := &Session{
		comp:      comp,
		host:      host,
		confirmer: confirmer,
		saver:     saver,
		store:     store,
		sync:      settings.GroupSync{},
		state:     StateClosed,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracker == nil {
		s.tracker = override.NewTracker()
	}
	if s.cache == nil {
		s.cache = template.NewCollectionsCache(0)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOutcome returns how the session last closed.
func (s *Session) LastOutcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// View returns the view currently shown by the host.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Component returns the component edited by the session.
func (s *Session) Component() *settings.Component {
	return s.comp
}

// Eligibility returns the override tracker of the session fields.
func (s *Session) Eligibility() *override.Tracker {
	return s.tracker
}

// Draft returns a copy of the template metadata being authored.
func (s *Session) Draft() (*settings.TemplateInfo, bool) {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	if draft == nil {
		return nil, false
	}
	copied, err := core.DeepCopy(draft)
	if err != nil {
		return nil, false
	}
	return copied, true
}

func (s *Session) expect(op string, want State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != want {
		return transitionError(op, s.state)
	}
	return nil
}

func (s *Session) setState(state State, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if outcome != OutcomeNone {
		s.last = outcome
	}
	if state != StateTemplateEditOpen {
		s.draft = nil
	}
}

// OpenSettings opens the instance settings dialog.
func (s *Session) OpenSettings(ctx context.Context) error {
	if err := s.expect("open settings", StateClosed); err != nil {
		return err
	}
	s.cache.Invalidate()
	if err := s.showSettings(ctx); err != nil {
		return err
	}
	s.setState(StateSettingsOpen, OutcomeNone)
	logger.FromContext(ctx).Debug("Settings opened", "component_id", s.comp.ID, "bound", s.comp.Bound())
	return nil
}

func (s *Session) showSettings(ctx context.Context) error {
	projection, err := settings.Project(ctx, s.comp, s.sync, settings.WithStrict(s.strict))
	if err != nil {
		return fmt.Errorf("failed to project settings: %w", err)
	}
	entries := projection.Entries()
	snapshot := make(map[string]any, len(entries))
	for i := range entries {
		snapshot[entries[i].Name] = entries[i].Value
		s.attachToggle(&entries[i])
	}
	view := View{Mode: ModeSettings, Tabs: []Tab{{Name: TabSettings, Entries: entries}}}
	hooks := Hooks{
		OnSave:   s.Save,
		OnCancel: s.Cancel,
		OnDraft:  s.EnterTemplateEdit,
		OnLoad:   s.mountToggles,
		Actions:  []string{"save", "cancel", "template"},
		Features: []string{"override"},
	}
	if err := s.host.Open(ctx, view, hooks); err != nil {
		return fmt.Errorf("failed to open settings dialog: %w", err)
	}
	s.mu.Lock()
	s.snapshot = snapshot
	s.view = view
	s.mu.Unlock()
	return nil
}

// attachToggle evaluates the override toggle of a text entry and exposes it
// to the host.
func (s *Session) attachToggle(entry *settings.Entry) {
	raw, ok := entry.StringValue()
	if !ok || !entry.Type.Textual() {
		return
	}
	toggle := s.tracker.Observe(entry.Name, raw, override.TriggerMount)
	if entry.Attributes == nil {
		entry.Attributes = make(map[string]any)
	}
	entry.Attributes["override"] = toggle
	entry.Events = []string{"change", "pointerleave", "keyup"}
}

// mountToggles re-evaluates every text field once the host settled any
// programmatic prefill.
func (s *Session) mountToggles(ctx context.Context) error {
	view := s.View()
	tab, ok := view.Tab(TabSettings)
	if !ok {
		return nil
	}
	for _, entry := range tab.Entries {
		if _, text := entry.StringValue(); !text {
			continue
		}
		name := entry.Name
		s.tracker.Mount(ctx, name, func() string {
			form, err := s.host.ReadValues(ctx)
			if err != nil {
				return ""
			}
			raw, _ := form.Fields(TabSettings)[name].(string)
			return raw
		})
	}
	return nil
}

// FieldChanged re-derives the override toggle of a field after any input
// event.
func (s *Session) FieldChanged(name, raw string, trigger override.Trigger) override.Toggle {
	return s.tracker.Observe(name, raw, trigger)
}

// Changed reports whether the settings values differ from those shown when
// the dialog opened.
func (s *Session) Changed(ctx context.Context) (bool, error) {
	form, err := s.host.ReadValues(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read form values: %w", err)
	}
	s.mu.Lock()
	snapshot := s.snapshot
	s.mu.Unlock()
	current := form.Fields(TabSettings)
	for name, value := range current {
		prev, ok := snapshot[name]
		if !ok || !reflect.DeepEqual(prev, value) {
			return true, nil
		}
	}
	return false, nil
}

// Save runs the save path of the current mode.
func (s *Session) Save(ctx context.Context) error {
	switch s.State() {
	case StateSettingsOpen:
		return s.saveInstance(ctx)
	case StateTemplateEditOpen:
		return s.saveTemplate(ctx)
	default:
		return transitionError("save", s.State())
	}
}

func (s *Session) saveInstance(ctx context.Context) error {
	if _, err := s.saver.SaveInstance(ctx, s.comp, s.host); err != nil {
		return err
	}
	s.close(ctx, OutcomeSaved)
	return nil
}

func (s *Session) saveTemplate(ctx context.Context) error {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	if _, err := s.saver.SaveTemplate(ctx, s.comp, s.host, draft); err != nil {
		return err
	}
	return s.backToSettings(ctx)
}

// Cancel leaves the dialog. From settings, unsaved changes need a discard
// confirmation; declining keeps the dialog open. From template edit the
// dedicated template cancel flow runs.
func (s *Session) Cancel(ctx context.Context) error {
	switch s.State() {
	case StateSettingsOpen:
	case StateTemplateEditOpen:
		return s.CancelTemplateEdit(ctx)
	default:
		return transitionError("cancel", s.State())
	}
	changed, err := s.Changed(ctx)
	if err != nil {
		return err
	}
	if !changed {
		s.close(ctx, OutcomeCancelledKept)
		return nil
	}
	discard, err := s.confirmer.ConfirmDiscard(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm discard: %w", err)
	}
	if !discard {
		return nil
	}
	s.close(ctx, OutcomeCancelledDiscarded)
	return nil
}

func (s *Session) close(ctx context.Context, outcome Outcome) {
	if err := s.host.Close(ctx); err != nil {
		logger.FromContext(ctx).Warn("Failed to close settings dialog", "error", err)
	}
	s.setState(StateClosed, outcome)
	s.mu.Lock()
	s.snapshot = nil
	s.view = View{}
	s.mu.Unlock()
}

// EnterTemplateEdit switches to template authoring.
func (s *Session) EnterTemplateEdit(ctx context.Context) error {
	if err := s.expect("enter template edit", StateSettingsOpen); err != nil {
		return err
	}
	draft, err := s.templateDraft()
	if err != nil {
		return err
	}
	view, err := s.templateView(ctx, draft)
	if err != nil {
		return err
	}
	hooks := Hooks{
		OnSave:   s.Save,
		OnCancel: s.CancelTemplateEdit,
		Actions:  []string{ActionSaveTemplate, "cancel"},
	}
	if err := s.host.Open(ctx, view, hooks); err != nil {
		return fmt.Errorf("failed to open template editor: %w", err)
	}
	s.mu.Lock()
	s.state = StateTemplateEditOpen
	s.draft = draft
	s.view = view
	s.mu.Unlock()
	return nil
}

func (s *Session) templateDraft() (*settings.TemplateInfo, error) {
	if s.comp.Properties.Template != nil {
		return core.DeepCopy(s.comp.Properties.Template)
	}
	return settings.NewTemplateInfo(s.comp)
}

func (s *Session) templateView(ctx context.Context, draft *settings.TemplateInfo) (View, error) {
	projection, err := settings.Project(ctx, s.comp, s.sync, settings.WithStrict(s.strict))
	if err != nil {
		return View{}, fmt.Errorf("failed to project settings: %w", err)
	}
	entries := projection.Entries()
	values := make(map[string]any, len(entries))
	for i := range entries {
		values[entries[i].Name] = entries[i].Value
		if entries[i].Attributes == nil {
			entries[i].Attributes = make(map[string]any)
		}
		entries[i].Attributes["included"] = s.includeToggle(&entries[i], draft)
	}
	entries = append(entries, settingAnnotations(ctx, s.comp.TemplateSchema(), values)...)

	collections, err := s.cache.Get(ctx, s.store.GetComponentsCollections)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to load component collections", "error", err)
	}
	return View{
		Mode: ModeTemplate,
		Tabs: []Tab{
			{Name: TabInfo, Entries: infoEntries(draft, collections)},
			{Name: TabSettings, Entries: entries},
			{Name: TabHelp, Entries: helpEntries(draft)},
		},
	}, nil
}

// includeToggle seeds the include checkbox of a template entry from the draft.
// Text entries carrying an annotation token cannot be included.
func (s *Session) includeToggle(entry *settings.Entry, draft *settings.TemplateInfo) bool {
	included := draft.Includes(entry.Name)
	raw, ok := entry.StringValue()
	if !ok || !entry.Type.Textual() {
		return included
	}
	s.tracker.Seed(entry.Name, included)
	toggle := s.tracker.Observe(entry.Name, raw, override.TriggerMount)
	entry.Attributes["override"] = toggle
	return toggle.Checked
}

// CancelTemplateEdit is the template-edit cancel path. It always asks the
// save question: yes runs the template save, no returns to the settings
// dialog without saving.
func (s *Session) CancelTemplateEdit(ctx context.Context) error {
	if err := s.expect("cancel template edit", StateTemplateEditOpen); err != nil {
		return err
	}
	save, err := s.confirmer.ConfirmSave(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm save: %w", err)
	}
	if save {
		return s.saveTemplate(ctx)
	}
	return s.backToSettings(ctx)
}

func (s *Session) backToSettings(ctx context.Context) error {
	if err := s.showSettings(ctx); err != nil {
		return err
	}
	s.setState(StateSettingsOpen, OutcomeNone)
	return nil
}

func infoEntries(info *settings.TemplateInfo, collections []template.Collection) []settings.Entry {
	options := make([]string, 0, len(collections))
	for _, c := range collections {
		options = append(options, c.Value)
	}
	return []settings.Entry{
		{Name: "name", Label: "Name", Type: settings.KindInput, Value: info.Name, Validate: "required"},
		{Name: "description", Label: "Description", Type: settings.KindTextarea, Value: info.Description},
		{Name: "icon", Label: "Icon", Type: settings.KindInput, Value: info.Icon},
		{Name: "color", Label: "Color", Type: settings.KindColor, Value: info.Color},
		{
			Name:       "collection",
			Label:      "Collection",
			Type:       settings.KindSelect,
			Value:      info.Collection,
			Options:    options,
			Attributes: map[string]any{"collections": collections},
		},
		{Name: "version", Label: "Version", Type: settings.KindInput, Value: info.Version},
		{Name: "published", Label: "Published", Type: settings.KindCheckbox, Value: info.Published},
	}
}

func helpEntries(info *settings.TemplateInfo) []settings.Entry {
	return []settings.Entry{
		{Name: "sidebarDescription", Label: "Sidebar Description", Type: settings.KindTextarea, Value: info.SidebarDescription},
		{Name: "docPath", Label: "Documentation Path", Type: settings.KindInput, Value: info.DocPath},
		{Name: "ytLink", Label: "Video Link", Type: settings.KindInput, Value: info.YTLink},
	}
}
