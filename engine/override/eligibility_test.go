package override

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t.Run("Should allow override for plain text", func(t *testing.T) {
		got := Evaluate("plain text")
		assert.Equal(t, Eligibility{OverrideAllowed: true, ReasonLabel: LabelAllowed}, got)
	})

	t.Run("Should disallow override when a token is embedded", func(t *testing.T) {
		got := Evaluate(`prefix {{PASSWORD:Key:[""]}} suffix`)
		assert.False(t, got.OverrideAllowed)
		assert.Equal(t, "Override Not allowed With Custom Variables", got.ReasonLabel)
	})

	t.Run("Should be a pure function of the raw value", func(t *testing.T) {
		raw := `{{SELECT:Foo:["a","b"]}}`
		assert.Equal(t, Evaluate(raw), Evaluate(raw))
	})

	t.Run("Should ignore malformed tokens", func(t *testing.T) {
		assert.True(t, Evaluate(`{{SELECT:Foo:["a"]`).OverrideAllowed)
	})
}

func TestToggle_Apply(t *testing.T) {
	t.Run("Should uncheck disable and hide when disallowed", func(t *testing.T) {
		prior := Toggle{Checked: true, Label: LabelAllowed}
		got := prior.Apply(Evaluate(`{{INPUT:Name:[""]}}`))
		assert.Equal(t, Toggle{Checked: false, Disabled: true, Hidden: true, Label: LabelDisallowed}, got)
	})

	t.Run("Should re-enable and keep checked state when allowed", func(t *testing.T) {
		prior := Toggle{Checked: true, Disabled: false, Label: LabelAllowed}
		got := prior.Apply(Evaluate("plain"))
		assert.Equal(t, Toggle{Checked: true, Label: LabelAllowed}, got)
	})

	t.Run("Should restore the allowed label after a token is removed", func(t *testing.T) {
		disabled := Toggle{}.Apply(Evaluate(`{{INPUT:Name:[""]}}`))
		got := disabled.Apply(Evaluate("now plain"))
		assert.False(t, got.Disabled)
		assert.False(t, got.Hidden)
		assert.False(t, got.Checked)
		assert.Equal(t, LabelAllowed, got.Label)
	})
}
