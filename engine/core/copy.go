package core

import (
	"fmt"
	"maps"

	"github.com/mohae/deepcopy"
)

// DeepCopy returns a deep copy of v using github.com/mohae/deepcopy.
//
// Only exported fields of structs are copied. If the copied value cannot be
// asserted back to T the zero value and an error are returned.
func DeepCopy[T any](v T) (T, error) {
	var zero T
	copied := deepcopy.Copy(v)
	if copied == nil {
		return zero, nil
	}
	result, ok := copied.(T)
	if !ok {
		return zero, fmt.Errorf("failed to cast copied value to type %T", zero)
	}
	return result, nil
}

// CloneMap deep copies a map[string]any. A nil map yields an empty map.
func CloneMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return make(map[string]any), nil
	}
	copied, err := DeepCopy(m)
	if err != nil {
		return nil, fmt.Errorf("failed to copy map: %w", err)
	}
	return copied, nil
}

// CopyMaps merges the given maps left to right into a new map.
// Later maps win on key collisions. The copy is shallow.
func CopyMaps(ms ...map[string]any) map[string]any {
	size := 0
	for _, m := range ms {
		size += len(m)
	}
	out := make(map[string]any, size)
	for _, m := range ms {
		maps.Copy(out, m)
	}
	return out
}

// AsMap returns v as map[string]any when it holds one, including the
// map[any]any shape produced by some YAML decoders.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
