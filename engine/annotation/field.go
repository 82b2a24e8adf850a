package annotation

// Field is a decoded annotation token, ready to be rendered as an auxiliary
// template control.
type Field struct {
	Token
	Spec Spec `json:"decoded"`
}

// Fields parses raw and decodes every token. Tokens whose spec fails to
// decode are dropped and reported; the remaining fields are still returned.
func Fields(raw string) ([]Field, []error) {
	tokens := Parse(raw)
	if len(tokens) == 0 {
		return nil, nil
	}
	fields := make([]Field, 0, len(tokens))
	var errs []error
	for _, tok := range tokens {
		spec, err := DecodeToken(tok)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fields = append(fields, Field{Token: tok, Spec: spec})
	}
	return fields, errs
}

// Options returns the enumerated options of an options field.
func (f Field) Options() []string {
	if spec, ok := f.Spec.(OptionsSpec); ok {
		return spec.Options
	}
	return nil
}
