package cli

import (
	"context"
	"sync"

	"github.com/compozy/tplsettings/engine/editor"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/pkg/logger"
)

// StaticHost is a non-interactive dialog host whose values come from a file.
// It records the views it was asked to render.
type StaticHost struct {
	mu     sync.Mutex
	values editor.FormValues
	views  []editor.View
	open   bool
}

var _ editor.Host = (*StaticHost)(nil)

func NewStaticHost(values editor.FormValues) *StaticHost {
	if values == nil {
		values = editor.FormValues{}
	}
	return &StaticHost{values: values}
}

func (h *StaticHost) Open(ctx context.Context, view editor.View, _ editor.Hooks) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.views = append(h.views, view)
	h.open = true
	logger.FromContext(ctx).Debug("Opened dialog", "mode", view.Mode, "tabs", len(view.Tabs))
	return nil
}

func (h *StaticHost) Validate(_ context.Context, _ string) error {
	return nil
}

func (h *StaticHost) ReadValues(_ context.Context) (editor.FormValues, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(editor.FormValues, len(h.values))
	for tab, values := range h.values {
		out[tab] = values
	}
	return out, nil
}

func (h *StaticHost) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open = false
	return nil
}

// Views returns the views rendered so far.
func (h *StaticHost) Views() []editor.View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]editor.View(nil), h.views...)
}

// autoConfirmer answers every prompt with the same value.
type autoConfirmer bool

func (a autoConfirmer) ConfirmDiscard(context.Context) (bool, error) { return bool(a), nil }
func (a autoConfirmer) ConfirmSave(context.Context) (bool, error)    { return bool(a), nil }

type logNotifier struct{}

func (logNotifier) SettingsSaved(ctx context.Context, comp *settings.Component) {
	logger.FromContext(ctx).Info("Settings saved", "component_id", comp.ID, "component", comp.Name)
}

func (logNotifier) Failure(ctx context.Context, err error) {
	logger.FromContext(ctx).Error("Save failed", "error", err)
}

// fileSaver writes saved components to path. The agent save writes comp, the
// component owned by the running session. An empty path only logs.
type fileSaver struct {
	path string
	comp *settings.Component
}

func (f *fileSaver) SaveComponent(ctx context.Context, comp *settings.Component) error {
	if f.path == "" {
		logger.FromContext(ctx).Debug("No output path, component kept in memory", "component_id", comp.ID)
		return nil
	}
	return writeComponent(f.path, comp)
}

func (f *fileSaver) SaveAgent(ctx context.Context) error {
	if f.comp == nil {
		return nil
	}
	return f.SaveComponent(ctx, f.comp)
}
