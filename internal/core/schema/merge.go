package schema

import (
	"reflect"

	"github.com/artpar/di/internal/core/document"
)

// =============================================================================
// Merge
// =============================================================================

// Merge folds y into x and returns x. Keys unique to y are copied; when both
// sides hold mappings they are merged recursively; any other pair of values
// must be equal or a *ConflictError is returned.
func Merge(x, y Schema) (Schema, error) {
	return merge(x, y, "")
}

// MergeAll merges fragments left to right into a fresh schema. The inputs are
// never mutated.
func MergeAll(fragments ...Schema) (Schema, error) {
	out := Schema{}
	for _, fragment := range fragments {
		var err error
		if out, err = merge(out, fragment, ""); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func merge(x, y map[string]any, at string) (map[string]any, error) {
	if x == nil {
		x = map[string]any{}
	}
	for _, key := range document.SortedKeys(y) {
		right := y[key]
		left, ok := x[key]
		if !ok {
			x[key] = document.Clone(right)
			continue
		}

		leftMap, leftIsMap := left.(map[string]any)
		rightMap, rightIsMap := right.(map[string]any)
		if leftIsMap && rightIsMap {
			merged, err := merge(leftMap, rightMap, document.Child(at, key))
			if err != nil {
				return nil, err
			}
			x[key] = merged
			continue
		}

		if !reflect.DeepEqual(left, right) {
			return nil, &ConflictError{Path: document.Child(at, key), Left: left, Right: right}
		}
	}
	return x, nil
}
