package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ErrSpecDecode matches every *SpecDecodeError.
var ErrSpecDecode = errors.New("invalid annotation spec")

// SpecDecodeError reports a spec literal that is not valid JSON for its tag.
type SpecDecodeError struct {
	Tag     Tag
	Label   string
	Literal string
	Cause   error
}

func (e *SpecDecodeError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("annotation %s %q: invalid spec %s: %v", e.Tag, e.Label, e.Literal, e.Cause)
	}
	return fmt.Sprintf("annotation %s: invalid spec %s: %v", e.Tag, e.Literal, e.Cause)
}

func (e *SpecDecodeError) Unwrap() error {
	return e.Cause
}

func (e *SpecDecodeError) Is(target error) bool {
	return target == ErrSpecDecode
}

// Spec is the decoded spec literal. Implementations: OptionsSpec, RangeSpec
// and KVSpec.
type Spec interface {
	isSpec()
}

// OptionsSpec belongs to SELECT, INPUT, TEXTAREA and PASSWORD tokens.
// FreeForm is set for the [""] placeholder, which carries no options.
type OptionsSpec struct {
	Options  []string `json:"options"`
	FreeForm bool     `json:"free_form"`
}

// RangeSpec belongs to RANGE tokens.
type RangeSpec struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value float64 `json:"value"`
}

// KVSpec belongs to KVJSON tokens. Values are string or float64.
type KVSpec map[string]any

// Keys returns the keys in sorted order.
func (k KVSpec) Keys() []string {
	return slices.Sorted(maps.Keys(k))
}

func (OptionsSpec) isSpec() {}
func (RangeSpec) isSpec()   {}
func (KVSpec) isSpec()      {}

const (
	defaultRangeMin  = 0
	defaultRangeMax  = 100
	defaultRangeStep = 1
)

// Decode parses literal according to tag.
func Decode(tag Tag, literal string) (Spec, error) {
	fail := func(cause error) error {
		return &SpecDecodeError{Tag: tag, Literal: literal, Cause: cause}
	}
	if !tag.Valid() {
		return nil, fail(fmt.Errorf("unknown tag %q", tag))
	}
	if !tag.Structured() {
		spec, err := decodeOptions(literal)
		if err != nil {
			return nil, fail(err)
		}
		return spec, nil
	}
	obj, err := decodeObject(literal)
	if err != nil {
		return nil, fail(err)
	}
	var spec Spec
	if tag.Base() == TagRange {
		spec, err = rangeFromObject(obj)
	} else {
		spec, err = kvFromObject(obj)
	}
	if err != nil {
		return nil, fail(err)
	}
	return spec, nil
}

// DecodeToken decodes the spec of tok, labelling any error with the token.
func DecodeToken(tok Token) (Spec, error) {
	spec, err := Decode(tok.Tag, tok.SpecLiteral)
	if err != nil {
		var decodeErr *SpecDecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Label = tok.Label
		}
		return nil, err
	}
	return spec, nil
}

func decodeOptions(literal string) (OptionsSpec, error) {
	var items []any
	if err := json.Unmarshal([]byte(literal), &items); err != nil {
		return OptionsSpec{}, err
	}
	if len(items) == 0 || (len(items) == 1 && items[0] == "") {
		return OptionsSpec{Options: []string{}, FreeForm: true}, nil
	}
	options := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			options = append(options, v)
		case float64:
			options = append(options, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			options = append(options, strconv.FormatBool(v))
		default:
			return OptionsSpec{}, fmt.Errorf("option %d must be a scalar, got %T", i, item)
		}
	}
	return OptionsSpec{Options: options}, nil
}

// decodeObject accepts a bare JSON object or a one-element array holding it.
func decodeObject(literal string) (map[string]any, error) {
	trimmed := strings.TrimSpace(literal)
	raw := []byte(trimmed)
	if strings.HasPrefix(trimmed, "[") {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		if len(wrapped) != 1 {
			return nil, fmt.Errorf("expected exactly one object, got %d elements", len(wrapped))
		}
		raw = wrapped[0]
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("expected a JSON object")
	}
	return obj, nil
}

func rangeFromObject(obj map[string]any) (RangeSpec, error) {
	read := func(key string, fallback float64) (float64, error) {
		v, ok := obj[key]
		if !ok {
			return fallback, nil
		}
		n, isNum := v.(float64)
		if !isNum {
			return 0, fmt.Errorf("%s must be a number, got %T", key, v)
		}
		return n, nil
	}
	var spec RangeSpec
	var err error
	if spec.Min, err = read("min", defaultRangeMin); err != nil {
		return RangeSpec{}, err
	}
	if spec.Max, err = read("max", defaultRangeMax); err != nil {
		return RangeSpec{}, err
	}
	if spec.Step, err = read("step", defaultRangeStep); err != nil {
		return RangeSpec{}, err
	}
	if spec.Value, err = read("value", spec.Min); err != nil {
		return RangeSpec{}, err
	}
	return spec, nil
}

func kvFromObject(obj map[string]any) (KVSpec, error) {
	out := make(KVSpec, len(obj))
	for key, v := range obj {
		switch v.(type) {
		case string, float64:
			out[key] = v
		default:
			return nil, fmt.Errorf("field %q must be a string or number, got %T", key, v)
		}
	}
	return out, nil
}
