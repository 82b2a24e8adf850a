package settings

func apiCallComponent() *Component {
	return &Component{
		ID:    "comp-1",
		Name:  "APICall",
		Title: "API Call",
		Settings: []Setting{
			{Name: "method", Type: KindSelect, Value: "GET", Options: []string{"GET", "POST"}},
			{Name: "url", Type: KindInput, Value: "", Validate: "required"},
			{Name: "headers", Type: KindTextarea, Value: "{}"},
			{Name: "token", Type: KindPassword, Vault: true},
		},
		Data: map[string]any{
			"method":  "POST",
			"url":     "https://api.example.com",
			"headers": `{"x":"y"}`,
			"token":   "secret",
		},
	}
}

func boundComponent() *Component {
	comp := apiCallComponent()
	comp.Properties.Template = &TemplateInfo{
		ID:               "tpl-1",
		Name:             "API Call Template",
		IncludedSettings: []string{"url"},
	}
	comp.Data = map[string]any{
		"url": "https://instance.example.com",
		TemplateVarsKey: map[string]any{
			"method":  "PUT",
			"headers": "{}",
			"stale":   "gone",
		},
	}
	return comp
}
