package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/compozy/tplsettings/engine/override"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/engine/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	session   *Session
	host      *fakeHost
	confirmer *fakeConfirmer
	notifier  *fakeNotifier
	store     *template.MemoryStore
	cache     *template.CollectionsCache
}

func newSessionFixture(comp *settings.Component, opts ...SessionOption) *sessionFixture {
	f := &sessionFixture{
		host:      newFakeHost(FormValues{TabSettings: {Fields: map[string]any{}}}),
		confirmer: &fakeConfirmer{},
		notifier:  &fakeNotifier{},
		store:     template.NewMemoryStore(template.Collection{Value: "utils", Text: "Utilities"}),
		cache:     template.NewCollectionsCache(time.Minute),
	}
	saver := newTestSaver(f.store, &fakeComponentSaver{}, f.notifier)
	opts = append([]SessionOption{WithCollectionsCache(f.cache)}, opts...)
	f.session = NewSession(comp, f.host, f.confirmer, saver, f.store, opts...)
	return f
}

func unchangedValues(comp *settings.Component) FormValues {
	fields := make(map[string]any, len(comp.Data))
	for _, s := range comp.Settings {
		fields[s.Name] = comp.Data[s.Name]
	}
	return FormValues{TabSettings: {Fields: fields}}
}

func TestSession_OpenSettings(t *testing.T) {
	t.Run("Should open the settings view and invalidate the collections cache", func(t *testing.T) {
		f := newSessionFixture(apiCall())
		ctx := context.Background()
		_, err := f.cache.Get(ctx, f.store.GetComponentsCollections)
		require.NoError(t, err)

		require.NoError(t, f.session.OpenSettings(ctx))
		assert.Equal(t, StateSettingsOpen, f.session.State())
		assert.False(t, f.cache.Cached())
		view := f.host.lastView()
		assert.Equal(t, ModeSettings, view.Mode)
		tab, ok := view.Tab(TabSettings)
		require.True(t, ok)
		require.Len(t, tab.Entries, 3)
		assert.Equal(t, "POST", tab.Entries[0].Value)
		assert.NotNil(t, f.host.hooks.OnSave)
	})

	t.Run("Should attach override toggles to text fields", func(t *testing.T) {
		comp := apiCall()
		comp.Data["headers"] = `{"auth":"{{PASSWORD:Token:[""]}}"}`
		f := newSessionFixture(comp)

		require.NoError(t, f.session.OpenSettings(context.Background()))
		tab, _ := f.host.lastView().Tab(TabSettings)
		toggle, ok := tab.Entries[2].Attributes["override"].(override.Toggle)
		require.True(t, ok)
		assert.True(t, toggle.Disabled)
		assert.Equal(t, override.LabelDisallowed, toggle.Label)
		assert.Equal(t, override.LabelAllowed, f.session.Eligibility().Toggle("url").Label)
	})

	t.Run("Should reject opening twice", func(t *testing.T) {
		f := newSessionFixture(apiCall())
		require.NoError(t, f.session.OpenSettings(context.Background()))
		assert.ErrorIs(t, f.session.OpenSettings(context.Background()), ErrInvalidTransition)
	})

	t.Run("Should fail in strict mode on unresolved included settings", func(t *testing.T) {
		comp := boundAPICall()
		comp.Properties.Template.IncludedSettings = []string{"url", "missing"}
		comp.Properties.TemplateSettings = comp.Settings

		strict := newSessionFixture(comp, WithStrict(true))
		assert.ErrorIs(t, strict.session.OpenSettings(context.Background()), settings.ErrInvariantViolation)
		assert.Equal(t, StateClosed, strict.session.State())
	})
}

func TestSession_SaveAndCancel(t *testing.T) {
	t.Run("Should close with Saved after an instance save", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		values := unchangedValues(comp)
		values[TabSettings].Fields["url"] = "https://saved.example.com"
		f.host.setValues(values)

		require.NoError(t, f.session.Save(ctx))
		assert.Equal(t, StateClosed, f.session.State())
		assert.Equal(t, OutcomeSaved, f.session.LastOutcome())
		assert.Equal(t, 1, f.host.closed)
		assert.Equal(t, "https://saved.example.com", comp.Data["url"])
	})

	t.Run("Should stay open when the instance save fails validation", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		f.host.setValues(FormValues{TabSettings: {Fields: map[string]any{"url": ""}}})

		assert.ErrorIs(t, f.session.Save(ctx), ErrValidation)
		assert.Equal(t, StateSettingsOpen, f.session.State())
	})

	t.Run("Should close with CancelledKept when nothing changed", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		f.host.setValues(unchangedValues(comp))

		require.NoError(t, f.session.Cancel(ctx))
		assert.Equal(t, StateClosed, f.session.State())
		assert.Equal(t, OutcomeCancelledKept, f.session.LastOutcome())
		assert.Zero(t, f.confirmer.discardAsks)
	})

	t.Run("Should ask before discarding changes", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		values := unchangedValues(comp)
		values[TabSettings].Fields["method"] = "GET"
		f.host.setValues(values)

		changed, err := f.session.Changed(ctx)
		require.NoError(t, err)
		assert.True(t, changed)

		f.confirmer.discard = false
		require.NoError(t, f.session.Cancel(ctx))
		assert.Equal(t, StateSettingsOpen, f.session.State())

		f.confirmer.discard = true
		require.NoError(t, f.session.Cancel(ctx))
		assert.Equal(t, StateClosed, f.session.State())
		assert.Equal(t, OutcomeCancelledDiscarded, f.session.LastOutcome())
		assert.Equal(t, 2, f.confirmer.discardAsks)
		assert.Equal(t, "POST", comp.Data["method"])
	})

	t.Run("Should reject save and cancel while closed", func(t *testing.T) {
		f := newSessionFixture(apiCall())
		assert.ErrorIs(t, f.session.Save(context.Background()), ErrInvalidTransition)
		assert.ErrorIs(t, f.session.Cancel(context.Background()), ErrInvalidTransition)
		assert.ErrorIs(t, f.session.EnterTemplateEdit(context.Background()), ErrInvalidTransition)
	})
}

func templateValues(included map[string]bool) FormValues {
	return FormValues{
		TabInfo: {Fields: map[string]any{"name": "API Call Template", "collection": "utils"}},
		TabSettings: {
			Fields:   map[string]any{"method": "POST", "url": "https://api.example.com", "headers": "{}"},
			Included: included,
		},
		TabHelp: {Fields: map[string]any{}},
	}
}

func TestSession_TemplateEdit(t *testing.T) {
	t.Run("Should open the authoring tabs with a draft", func(t *testing.T) {
		comp := apiCall()
		comp.Data["headers"] = `{{KVJSON:Headers:[{"accept":"json"}]}}`
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))

		require.NoError(t, f.session.EnterTemplateEdit(ctx))
		assert.Equal(t, StateTemplateEditOpen, f.session.State())
		draft, ok := f.session.Draft()
		require.True(t, ok)
		assert.Equal(t, "API Call", draft.Name)
		assert.Equal(t, settings.DefaultTemplateColor, draft.Color)
		assert.True(t, f.cache.Cached())

		view := f.host.lastView()
		assert.Equal(t, ModeTemplate, view.Mode)
		require.Len(t, view.Tabs, 3)
		info, _ := view.Tab(TabInfo)
		collection := info.Entries[4]
		assert.Equal(t, "collection", collection.Name)
		assert.Equal(t, []string{"utils"}, collection.Options)
		tab, _ := view.Tab(TabSettings)
		require.Len(t, tab.Entries, 4)
		assert.Equal(t, false, tab.Entries[0].Attributes["included"])
		kv := tab.Entries[3]
		assert.Equal(t, "headers.Headers", kv.Name)
		assert.Equal(t, settings.KindComposite, kv.Type)
		assert.Contains(t, f.host.hooks.Actions, ActionSaveTemplate)
	})

	t.Run("Should return to settings after a template save", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		require.NoError(t, f.session.EnterTemplateEdit(ctx))
		f.host.setValues(templateValues(map[string]bool{"url": true}))

		require.NoError(t, f.session.Save(ctx))
		assert.Equal(t, StateSettingsOpen, f.session.State())
		assert.True(t, comp.Bound())
		assert.Equal(t, "utils", comp.Properties.Template.Collection)
		assert.Equal(t, ModeSettings, f.host.lastView().Mode)
		assert.Equal(t, 1, f.store.Len())
		_, hasDraft := f.session.Draft()
		assert.False(t, hasDraft)
	})

	t.Run("Should stay in template edit when the store rejects", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		require.NoError(t, f.session.EnterTemplateEdit(ctx))
		f.store.FailWith(errors.New("down"))
		f.host.setValues(templateValues(map[string]bool{"url": true}))

		assert.ErrorIs(t, f.session.Save(ctx), template.ErrRemoteSave)
		assert.Equal(t, StateTemplateEditOpen, f.session.State())
		assert.False(t, comp.Bound())
		assert.Len(t, f.notifier.failures, 1)
	})

	t.Run("Should always ask the save question on template cancel", func(t *testing.T) {
		comp := apiCall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		require.NoError(t, f.session.EnterTemplateEdit(ctx))
		f.host.setValues(templateValues(nil))

		f.confirmer.save = false
		require.NoError(t, f.session.Cancel(ctx))
		assert.Equal(t, StateSettingsOpen, f.session.State())
		assert.False(t, comp.Bound())
		assert.Zero(t, f.confirmer.discardAsks)

		require.NoError(t, f.session.EnterTemplateEdit(ctx))
		f.confirmer.save = true
		require.NoError(t, f.session.CancelTemplateEdit(ctx))
		assert.Equal(t, StateSettingsOpen, f.session.State())
		assert.True(t, comp.Bound())
		assert.Equal(t, 2, f.confirmer.saveAsks)
	})

	t.Run("Should reuse the bound template as draft", func(t *testing.T) {
		comp := boundAPICall()
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		require.NoError(t, f.session.EnterTemplateEdit(ctx))

		draft, ok := f.session.Draft()
		require.True(t, ok)
		assert.Equal(t, "tpl-1", draft.ID.String())
		assert.NotSame(t, comp.Properties.Template, draft)
		tab, _ := f.host.lastView().Tab(TabSettings)
		assert.Equal(t, true, tab.Entries[0].Attributes["included"])
	})

	t.Run("Should lock the include checkbox of annotated fields", func(t *testing.T) {
		comp := boundAPICall()
		comp.Data["url"] = `https://x/{{INPUT:Api Key:[""]}}`
		f := newSessionFixture(comp)
		ctx := context.Background()
		require.NoError(t, f.session.OpenSettings(ctx))
		require.NoError(t, f.session.EnterTemplateEdit(ctx))

		tab, ok := f.host.lastView().Tab(TabSettings)
		require.True(t, ok)
		url := tab.Entries[0]
		require.Equal(t, "url", url.Name)
		assert.Equal(t, false, url.Attributes["included"])
		toggle, ok := url.Attributes["override"].(override.Toggle)
		require.True(t, ok)
		assert.True(t, toggle.Disabled)
		assert.False(t, toggle.Checked)
		assert.Equal(t, override.LabelDisallowed, toggle.Label)
	})
}
