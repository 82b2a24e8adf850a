package override

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"
)

// Trigger names the input event that caused a re-evaluation.
type Trigger string

const (
	TriggerMount        Trigger = "mount"
	TriggerChange       Trigger = "change"
	TriggerPointerLeave Trigger = "pointer_leave"
	TriggerPaste        Trigger = "paste"
)

// DefaultMountDelay lets a programmatic prefill settle before the first
// evaluation of a freshly mounted field.
const DefaultMountDelay = 100 * time.Millisecond

// KeyEvent is a key-up notification from a field.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

// IsPasteGesture reports a modifier-qualified "v" key-up.
func IsPasteGesture(ev KeyEvent) bool {
	return (ev.Ctrl || ev.Meta) && strings.EqualFold(ev.Key, "v")
}

// Listener receives every recomputed toggle.
type Listener func(name string, trigger Trigger, toggle Toggle)

// Tracker keeps one override toggle per field in sync with the field's raw
// value. Every trigger funnels into the same derivation.
type Tracker struct {
	mu         sync.Mutex
	toggles    map[string]Toggle
	mountDelay time.Duration
	listener   Listener
}

type Option func(*Tracker)

func WithMountDelay(d time.Duration) Option {
	return func(t *Tracker) {
		t.mountDelay = d
	}
}

func WithListener(fn Listener) Option {
	return func(t *Tracker) {
		t.listener = fn
	}
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		toggles:    make(map[string]Toggle),
		mountDelay: DefaultMountDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seed records the initial checked state of a field without evaluating it.
func (t *Tracker) Seed(name string, checked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	toggle := t.toggles[name]
	toggle.Checked = checked
	if toggle.Label == "" {
		toggle.Label = LabelAllowed
	}
	t.toggles[name] = toggle
}

// Observe recomputes the toggle of name from raw.
func (t *Tracker) Observe(name, raw string, trigger Trigger) Toggle {
	eligibility := Evaluate(raw)
	t.mu.Lock()
	next := t.toggles[name].Apply(eligibility)
	t.toggles[name] = next
	listener := t.listener
	t.mu.Unlock()
	if listener != nil {
		listener(name, trigger, next)
	}
	return next
}

// KeyUp re-evaluates only when the key event is a paste gesture.
func (t *Tracker) KeyUp(name, raw string, ev KeyEvent) (Toggle, bool) {
	if !IsPasteGesture(ev) {
		return t.Toggle(name), false
	}
	return t.Observe(name, raw, TriggerPaste), true
}

// Mount schedules the deferred first evaluation. read is called once the
// mount delay elapses; cancelling ctx first skips it. The returned channel
// is closed when the evaluation ran or was skipped.
func (t *Tracker) Mount(ctx context.Context, name string, read func() string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		timer := time.NewTimer(t.mountDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			t.Observe(name, read(), TriggerMount)
		}
	}()
	return done
}

// SetChecked records a user click on the checkbox. Clicks on a disabled
// toggle are ignored.
func (t *Tracker) SetChecked(name string, checked bool) Toggle {
	t.mu.Lock()
	defer t.mu.Unlock()
	toggle, ok := t.toggles[name]
	if !ok {
		toggle = Toggle{Label: LabelAllowed}
	}
	if toggle.Disabled {
		return toggle
	}
	toggle.Checked = checked
	t.toggles[name] = toggle
	return toggle
}

// Toggle returns the current toggle of name.
func (t *Tracker) Toggle(name string) Toggle {
	t.mu.Lock()
	defer t.mu.Unlock()
	toggle, ok := t.toggles[name]
	if !ok {
		return Toggle{Label: LabelAllowed}
	}
	return toggle
}

// Snapshot copies every tracked toggle.
func (t *Tracker) Snapshot() map[string]Toggle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.toggles)
}
