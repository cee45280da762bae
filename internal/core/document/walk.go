package document

import (
	"sort"
	"strconv"
)

// LeafFunc transforms a single leaf. It receives the leaf and its absolute path.
type LeafFunc func(value any, path string) (any, error)

// Walk applies fn to every leaf of node and returns the rebuilt tree.
// Mappings are visited in key order so that errors are reported
// deterministically.
func Walk(node any, fn LeafFunc) (any, error) {
	return walk(node, fn, Separator)
}

func walk(node any, fn LeafFunc, at string) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for _, key := range SortedKeys(n) {
			value, err := walk(n[key], fn, Child(at, key))
			if err != nil {
				return nil, err
			}
			out[key] = value
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			value, err := walk(item, fn, Child(at, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = value
		}
		return out, nil
	default:
		return fn(node, at)
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of a document tree.
func Clone(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = Clone(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Clone(v)
		}
		return out
	default:
		return node
	}
}
