package ffprobe

import (
	"encoding/json"
	"math"
)

// Object asserts a tree node is a JSON object.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// String asserts a tree node is a JSON string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Int asserts a tree node is an integral JSON number.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// Path walks nested objects by key and returns the node found, if any.
func Path(v any, keys ...string) (any, bool) {
	current := v
	for _, key := range keys {
		obj, ok := Object(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
