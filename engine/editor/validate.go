package editor

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/compozy/tplsettings/engine/settings"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// checkRule runs one validator tag expression against value. Unknown tags
// make the validator panic; they are reported as errors.
func checkRule(value any, rule string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid validation rule %q: %v", rule, r)
		}
	}()
	return getValidator().Var(value, rule)
}

// invalidFields returns the names in schema whose value breaks its validate
// rule, merged with the host markers. Only fields present in values or with
// a non-empty rule are checked.
func invalidFields(schema []settings.Setting, values map[string]any, marked []string) ([]string, error) {
	invalid := slices.Clone(marked)
	for _, s := range schema {
		if s.Validate == "" {
			continue
		}
		value, ok := values[s.Name]
		if !ok {
			continue
		}
		err := checkRule(value, s.Validate)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("failed to validate %s: %w", s.Name, err)
		}
		if !slices.Contains(invalid, s.Name) {
			invalid = append(invalid, s.Name)
		}
	}
	return invalid, nil
}

// infoFailure converts struct validation errors of the template info into a
// ValidationFailure on the tab holding the field.
func infoFailure(err error) (*ValidationFailure, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	failure := &ValidationFailure{Tab: TabInfo}
	for _, fe := range verrs {
		switch fe.Field() {
		case "YTLink", "DocPath", "SidebarDescription":
			failure.Tab = TabHelp
		}
		failure.Fields = append(failure.Fields, fe.Field())
	}
	return failure, true
}
