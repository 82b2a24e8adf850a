package editor

import (
	"context"

	"github.com/compozy/tplsettings/engine/annotation"
	"github.com/compozy/tplsettings/engine/settings"
	"github.com/compozy/tplsettings/pkg/logger"
)

// AnnotationEntries maps the annotation fields found in the value of s to
// auxiliary entries. Entry names are prefixed with the setting name.
func AnnotationEntries(s settings.Setting, fields []annotation.Field) []settings.Entry {
	entries := make([]settings.Entry, 0, len(fields))
	for _, field := range fields {
		entries = append(entries, annotationEntry(s, field))
	}
	return entries
}

func annotationEntry(s settings.Setting, field annotation.Field) settings.Entry {
	entry := settings.Entry{
		Name:     s.Name + "." + field.Key(),
		Label:    field.Label,
		Variable: field.Tag.Variable(),
		Vault:    field.Tag.Vault(),
		Attributes: map[string]any{
			"annotation": field.Source(),
			"setting":    s.Name,
		},
	}
	switch spec := field.Spec.(type) {
	case annotation.RangeSpec:
		entry.Type = settings.KindRange
		entry.Value = spec.Value
		entry.Attributes["min"] = spec.Min
		entry.Attributes["max"] = spec.Max
		entry.Attributes["step"] = spec.Step
		return entry
	case annotation.KVSpec:
		entry.Type = settings.KindComposite
		entry.Children = kvChildren(entry.Name, spec)
		return entry
	}
	switch field.Tag.Base() {
	case annotation.TagSelect:
		entry.Type = settings.KindSelect
		entry.Options = field.Options()
		if len(entry.Options) > 0 {
			entry.Value = entry.Options[0]
		}
	case annotation.TagTextarea:
		entry.Type = settings.KindTextarea
		entry.Value = ""
	case annotation.TagPassword:
		entry.Type = settings.KindPassword
		entry.Value = ""
	default:
		entry.Type = settings.KindInput
		entry.Options = field.Options()
		entry.Value = ""
	}
	return entry
}

func kvChildren(parent string, spec annotation.KVSpec) []settings.Entry {
	keys := spec.Keys()
	children := make([]settings.Entry, 0, len(keys))
	for _, key := range keys {
		children = append(children, settings.Entry{
			Name:  parent + "." + key,
			Label: key,
			Type:  settings.KindInput,
			Value: spec[key],
		})
	}
	return children
}

// settingAnnotations collects the annotation entries of every textual setting
// whose current value is a string. Undecodable tokens are skipped.
func settingAnnotations(ctx context.Context, schema []settings.Setting, values map[string]any) []settings.Entry {
	log := logger.FromContext(ctx)
	var entries []settings.Entry
	for _, s := range schema {
		if !s.Type.Textual() {
			continue
		}
		raw, ok := values[s.Name].(string)
		if !ok || !annotation.HasAnnotations(raw) {
			continue
		}
		fields, errs := annotation.Fields(raw)
		for _, err := range errs {
			log.Warn("Skipping annotation token", "setting", s.Name, "error", err)
		}
		entries = append(entries, AnnotationEntries(s, fields)...)
	}
	return entries
}
