// Package canon implements the canonical JSON serialization (spec §6.2)
// and the minified-key alias table (spec §6.3), ported from
// original_source/amorph/format.py.
package canon

import (
	"bytes"
	"encoding/json"
	"sort"
)

// KeyMap is the fixed, invertible long-key -> short-key alias table.
var KeyMap = map[string]string{
	"let": "l", "set": "s", "def": "d", "if": "i", "then": "t", "else": "e",
	"return": "r", "print": "p", "expr": "x", "var": "v", "call": "c",
	"name": "n", "value": "val", "params": "pa", "body": "b", "cond": "co",
	"id": "id",
}

// RevKeyMap is KeyMap inverted (short -> long).
var RevKeyMap = reverse(KeyMap)

func reverse(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func transformKeys(node any, mapping map[string]string) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			newKey := k
			if alias, ok := mapping[k]; ok {
				newKey = alias
			}
			out[newKey] = transformKeys(val, mapping)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = transformKeys(item, mapping)
		}
		return out
	default:
		return v
	}
}

// Minify replaces every well-known key with its short alias, recursively
// and uniformly over every object in the tree.
func Minify(node any) any { return transformKeys(node, KeyMap) }

// Unminify replaces every short alias with its long key, the inverse of
// Minify.
func Unminify(node any) any { return transformKeys(node, RevKeyMap) }

// Dump renders node as canonical JSON: 2-space indent, keys sorted
// ascending, trailing newline.
func Dump(node any) ([]byte, error) {
	raw, err := marshalSorted(node)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// DumpMinified renders node as compact JSON with sorted keys and no
// whitespace, the form used by the "minify" command and as the JSON
// fallback for ACIR packing.
func DumpMinified(node any) ([]byte, error) {
	return marshalSorted(node)
}

// marshalSorted marshals node to JSON with object keys sorted ascending.
// encoding/json already sorts map[string]any keys, so this is a thin
// wrapper kept for call-site clarity and future format changes.
func marshalSorted(node any) ([]byte, error) {
	return json.Marshal(sortableCopy(node))
}

// sortableCopy is the identity function for our generic tree: Go's
// encoding/json sorts map[string]any keys by default, so no reordering
// copy is actually required, but we still walk to make sure nested maps
// are the stdlib-comparable map[string]any rather than some other map
// type before marshaling.
func sortableCopy(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = sortableCopy(v[k])
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sortableCopy(item)
		}
		return out
	default:
		return v
	}
}
