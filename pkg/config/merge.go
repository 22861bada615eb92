package config

import "fmt"

// Merge deep-merges b into a copy of a and returns the result.
// When a key holds a map on both sides the maps are merged recursively.
// Otherwise b's value replaces a's only if overwrite is true.
// Slices and scalars are never concatenated. Neither input is modified.
func Merge(a, b map[string]any, overwrite bool) map[string]any {
	out := copyMap(a)
	for k, bv := range b {
		av, exists := out[k]
		if !exists {
			out[k] = copyValue(bv)
			continue
		}

		am, aIsMap := av.(map[string]any)
		bm, bIsMap := bv.(map[string]any)
		if aIsMap && bIsMap {
			out[k] = Merge(am, bm, overwrite)
			continue
		}

		if overwrite {
			out[k] = copyValue(bv)
		}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		s := make([]any, len(t))
		for i, item := range t {
			s[i] = copyValue(item)
		}
		return s
	default:
		return v
	}
}

// normalize converts decoded or caller-supplied values into the canonical
// tree representation: map[string]any and []any all the way down.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = item
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
