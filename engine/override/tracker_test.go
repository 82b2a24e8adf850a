package override

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Observe(t *testing.T) {
	t.Run("Should derive the same toggle for every trigger", func(t *testing.T) {
		raw := `{{SELECT:Mode:["a"]}}`
		for _, trigger := range []Trigger{TriggerChange, TriggerPointerLeave, TriggerPaste, TriggerMount} {
			tracker := NewTracker()
			tracker.Seed("mode", true)
			got := tracker.Observe("mode", raw, trigger)
			assert.True(t, got.Disabled, "trigger %s", trigger)
			assert.False(t, got.Checked, "trigger %s", trigger)
		}
	})

	t.Run("Should force the toggle off regardless of prior state", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Seed("url", true)
		tracker.SetChecked("url", true)
		got := tracker.Observe("url", `https://x/{{INPUT:Path:[""]}}`, TriggerChange)
		assert.False(t, got.Checked)
		assert.Equal(t, LabelDisallowed, tracker.Toggle("url").Label)
	})

	t.Run("Should notify the listener", func(t *testing.T) {
		var seen []Trigger
		tracker := NewTracker(WithListener(func(_ string, trigger Trigger, _ Toggle) {
			seen = append(seen, trigger)
		}))
		tracker.Observe("a", "x", TriggerChange)
		tracker.Observe("a", "x", TriggerPointerLeave)
		assert.Equal(t, []Trigger{TriggerChange, TriggerPointerLeave}, seen)
	})
}

func TestTracker_KeyUp(t *testing.T) {
	t.Run("Should re-evaluate after a paste gesture", func(t *testing.T) {
		tracker := NewTracker()
		got, evaluated := tracker.KeyUp("a", `{{INPUT:X:[""]}}`, KeyEvent{Key: "v", Ctrl: true})
		assert.True(t, evaluated)
		assert.True(t, got.Disabled)
	})

	t.Run("Should ignore ordinary key presses", func(t *testing.T) {
		tracker := NewTracker()
		got, evaluated := tracker.KeyUp("a", `{{INPUT:X:[""]}}`, KeyEvent{Key: "v"})
		assert.False(t, evaluated)
		assert.False(t, got.Disabled)
	})

	t.Run("Should accept the meta modifier", func(t *testing.T) {
		assert.True(t, IsPasteGesture(KeyEvent{Key: "V", Meta: true}))
		assert.False(t, IsPasteGesture(KeyEvent{Key: "c", Ctrl: true}))
	})
}

func TestTracker_Mount(t *testing.T) {
	t.Run("Should evaluate after the mount delay", func(t *testing.T) {
		tracker := NewTracker(WithMountDelay(time.Millisecond))
		done := tracker.Mount(context.Background(), "a", func() string { return `{{INPUT:X:[""]}}` })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("mount evaluation did not run")
		}
		assert.True(t, tracker.Toggle("a").Disabled)
	})

	t.Run("Should skip evaluation when cancelled first", func(t *testing.T) {
		tracker := NewTracker(WithMountDelay(time.Hour))
		ctx, cancel := context.WithCancel(context.Background())
		called := false
		done := tracker.Mount(ctx, "a", func() string {
			called = true
			return ""
		})
		cancel()
		<-done
		assert.False(t, called)
	})
}

func TestTracker_SetChecked(t *testing.T) {
	t.Run("Should ignore clicks on a disabled toggle", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Observe("a", `{{INPUT:X:[""]}}`, TriggerChange)
		got := tracker.SetChecked("a", true)
		assert.False(t, got.Checked)
	})

	t.Run("Should snapshot all toggles", func(t *testing.T) {
		tracker := NewTracker()
		tracker.SetChecked("a", true)
		tracker.Observe("b", "plain", TriggerChange)
		snap := tracker.Snapshot()
		require.Len(t, snap, 2)
		assert.True(t, snap["a"].Checked)
	})
}
