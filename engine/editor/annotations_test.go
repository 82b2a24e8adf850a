package editor

import (
	"context"
	"testing"

	"github.com/compozy/tplsettings/engine/annotation"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationEntries(t *testing.T) {
	setting := settings.Setting{Name: "prompt", Type: settings.KindTextarea}

	t.Run("Should map every tag to its control", func(t *testing.T) {
		raw := `{{SELECT:Tone:["formal","casual"]}} {{VARINPUT:Topic:[""]}} ` +
			`{{VAULTPASSWORD:Api Key:[""]}} {{RANGE:Temperature:[{"min":0,"max":2,"step":0.1,"value":1}]}} ` +
			`{{VARTEXTAREA:Notes:[""]}}`
		fields, errs := annotation.Fields(raw)
		require.Empty(t, errs)
		entries := AnnotationEntries(setting, fields)
		require.Len(t, entries, 5)

		assert.Equal(t, settings.KindSelect, entries[0].Type)
		assert.Equal(t, []string{"formal", "casual"}, entries[0].Options)
		assert.Equal(t, "formal", entries[0].Value)
		assert.Equal(t, "prompt.Tone", entries[0].Name)

		assert.Equal(t, settings.KindInput, entries[1].Type)
		assert.True(t, entries[1].Variable)
		assert.Empty(t, entries[1].Options)

		assert.Equal(t, settings.KindPassword, entries[2].Type)
		assert.True(t, entries[2].Vault)
		assert.Equal(t, "prompt.Api_Key", entries[2].Name)

		assert.Equal(t, settings.KindRange, entries[3].Type)
		assert.Equal(t, 1.0, entries[3].Value)
		assert.Equal(t, 2.0, entries[3].Attributes["max"])
		assert.Equal(t, 0.1, entries[3].Attributes["step"])

		assert.Equal(t, settings.KindTextarea, entries[4].Type)
		assert.True(t, entries[4].Variable)
		assert.Equal(t, "prompt", entries[4].Attributes["setting"])
	})

	t.Run("Should expand KVJSON keys into children", func(t *testing.T) {
		fields, errs := annotation.Fields(`{{KVJSON:Headers:[{"b":"2","a":1}]}}`)
		require.Empty(t, errs)
		entries := AnnotationEntries(setting, fields)
		require.Len(t, entries, 1)
		assert.Equal(t, settings.KindComposite, entries[0].Type)
		require.Len(t, entries[0].Children, 2)
		assert.Equal(t, "prompt.Headers.a", entries[0].Children[0].Name)
		assert.Equal(t, 1.0, entries[0].Children[0].Value)
		assert.Equal(t, "2", entries[0].Children[1].Value)
	})
}

func TestSettingAnnotations(t *testing.T) {
	t.Run("Should skip non-text settings and undecodable tokens", func(t *testing.T) {
		schema := []settings.Setting{
			{Name: "mode", Type: settings.KindSelect},
			{Name: "prompt", Type: settings.KindTextarea},
		}
		values := map[string]any{
			"mode":   `{{INPUT:Ignored:[""]}}`,
			"prompt": `{{RANGE:Bad:[{min:0}]}} {{INPUT:Name:[""]}}`,
		}
		entries := settingAnnotations(context.Background(), schema, values)
		require.Len(t, entries, 1)
		assert.Equal(t, "prompt.Name", entries[0].Name)
	})
}
