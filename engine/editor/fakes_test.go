package editor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/compozy/tplsettings/engine/settings"
)

type fakeHost struct {
	mu        sync.Mutex
	values    FormValues
	readErr   error
	opened    []View
	hooks     Hooks
	validated []string
	closed    int
}

func newFakeHost(values FormValues) *fakeHost {
	return &fakeHost{values: values}
}

func (h *fakeHost) Open(_ context.Context, view View, hooks Hooks) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, view)
	h.hooks = hooks
	return nil
}

func (h *fakeHost) Validate(_ context.Context, tab string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.validated = append(h.validated, tab)
	return nil
}

func (h *fakeHost) ReadValues(context.Context) (FormValues, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.readErr != nil {
		return nil, h.readErr
	}
	return h.values, nil
}

func (h *fakeHost) Close(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed++
	return nil
}

func (h *fakeHost) setValues(values FormValues) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values = values
}

func (h *fakeHost) lastView() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.opened) == 0 {
		return View{}
	}
	return h.opened[len(h.opened)-1]
}

type fakeConfirmer struct {
	discard     bool
	save        bool
	discardAsks int
	saveAsks    int
}

func (c *fakeConfirmer) ConfirmDiscard(context.Context) (bool, error) {
	c.discardAsks++
	return c.discard, nil
}

func (c *fakeConfirmer) ConfirmSave(context.Context) (bool, error) {
	c.saveAsks++
	return c.save, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	saved    []*settings.Component
	failures []error
}

func (n *fakeNotifier) SettingsSaved(_ context.Context, comp *settings.Component) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.saved = append(n.saved, comp)
}

func (n *fakeNotifier) Failure(_ context.Context, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, err)
}

type fakeComponentSaver struct {
	err     error
	calls   atomic.Int32
	block   chan struct{}
	started chan struct{}
	last    *settings.Component
}

func (c *fakeComponentSaver) SaveComponent(_ context.Context, comp *settings.Component) error {
	if c.calls.Add(1) == 1 && c.started != nil {
		close(c.started)
	}
	if c.block != nil {
		<-c.block
	}
	c.last = comp
	return c.err
}

type fakeAgentSaver struct {
	calls atomic.Int32
}

func (a *fakeAgentSaver) SaveAgent(context.Context) error {
	a.calls.Add(1)
	return nil
}

func apiCall() *settings.Component {
	return &settings.Component{
		ID:    "comp-1",
		Name:  "APICall",
		Title: "API Call",
		Icon:  "globe",
		Settings: []settings.Setting{
			{Name: "method", Type: settings.KindSelect, Value: "GET", Options: []string{"GET", "POST"}},
			{Name: "url", Type: settings.KindInput, Value: "", Validate: "required"},
			{Name: "headers", Type: settings.KindTextarea, Value: "{}"},
		},
		Data: map[string]any{
			"method":  "POST",
			"url":     "https://api.example.com",
			"headers": `{"x":"y"}`,
		},
	}
}

func boundAPICall() *settings.Component {
	comp := apiCall()
	comp.Properties.Template = &settings.TemplateInfo{
		ID:               "tpl-1",
		Name:             "API Call Template",
		Icon:             "globe",
		Color:            "#3C89F9",
		Version:          "1.0.0",
		IncludedSettings: []string{"url", "method"},
	}
	comp.Data = map[string]any{
		"url":    "https://instance.example.com",
		"method": "POST",
		settings.TemplateVarsKey: map[string]any{
			"headers": "{}",
			"stale":   "gone",
		},
	}
	return comp
}
