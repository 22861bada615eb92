package config

import (
	"strconv"
	"strings"
)

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

// lookup walks root along a dot-separated key.
// Numeric segments index into slices.
func lookup(root map[string]any, key string) (any, bool) {
	if key == "" {
		return root, true
	}

	var cur any = root
	for _, seg := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// assign stores value at key, replacing any scalar found on the way with a map.
func assign(root map[string]any, key string, value any) {
	segs := strings.Split(key, ".")
	node := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}
	node[segs[len(segs)-1]] = value
}

func remove(root map[string]any, key string) bool {
	segs := strings.Split(key, ".")
	parentKey := strings.Join(segs[:len(segs)-1], ".")
	parent, ok := lookup(root, parentKey)
	if !ok {
		return false
	}
	m, ok := parent.(map[string]any)
	if !ok {
		return false
	}
	last := segs[len(segs)-1]
	if _, exists := m[last]; !exists {
		return false
	}
	delete(m, last)
	return true
}
