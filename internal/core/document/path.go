package document

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Separator delimits path segments.
const Separator = "/"

// =============================================================================
// Path Normalization
// =============================================================================

// Abs returns the normalized absolute form of p. A relative p is joined onto
// ref first; an absolute p ignores ref.
func Abs(p, ref string) (string, error) {
	if !strings.HasPrefix(p, Separator) && ref != "" {
		p = ref + Separator + p
	}
	if !strings.HasPrefix(p, Separator) {
		return "", NewPathError("split", p, fmt.Errorf("%w: expected an absolute path", ErrInvalidPath))
	}
	return path.Clean(p), nil
}

// Split normalizes p (relative to ref) and returns its segments. The root
// path yields no segments.
func Split(p, ref string) ([]string, error) {
	abs, err := Abs(p, ref)
	if err != nil {
		return nil, err
	}
	if abs == Separator {
		return nil, nil
	}
	return strings.Split(strings.TrimPrefix(abs, Separator), Separator), nil
}

// Join builds an absolute path from segments.
func Join(segments ...string) string {
	return Separator + strings.Join(segments, Separator)
}

// Child returns the path of key below parent.
func Child(parent, key string) string {
	if parent == "" || parent == Separator {
		return Separator + key
	}
	return parent + Separator + key
}

// Dir returns the parent of an absolute path; the parent of the root is the root.
func Dir(p string) string {
	return path.Dir(p)
}

// =============================================================================
// Access
// =============================================================================

// Get returns the value at p in doc.
func Get(doc any, p, ref string) (any, error) {
	segments, err := Split(p, ref)
	if err != nil {
		return nil, err
	}
	current := doc
	for _, segment := range segments {
		current, err = child(current, segment)
		if err != nil {
			return nil, NewPathError("get", Join(segments...), err)
		}
	}
	return current, nil
}

// Set stores value at p, creating missing intermediate mappings. The final
// segment is overwritten unconditionally.
func Set(doc any, p string, value any, ref string) error {
	segments, err := Split(p, ref)
	if err != nil {
		return err
	}
	parent, last, err := parentOf(doc, segments, true)
	if err != nil {
		return NewPathError("set", Join(segments...), err)
	}
	if err := assign(parent, last, value); err != nil {
		return NewPathError("set", Join(segments...), err)
	}
	return nil
}

// SetDefault stores value at p only if nothing is stored there yet and
// returns whichever value ends up at p.
func SetDefault(doc any, p string, value any, ref string) (any, error) {
	segments, err := Split(p, ref)
	if err != nil {
		return nil, err
	}
	parent, last, err := parentOf(doc, segments, true)
	if err != nil {
		return nil, NewPathError("setdefault", Join(segments...), err)
	}
	existing, err := child(parent, last)
	if err == nil {
		return existing, nil
	}
	if err := assign(parent, last, value); err != nil {
		return nil, NewPathError("setdefault", Join(segments...), err)
	}
	return value, nil
}

// Pop removes the value at p and returns it. When the parent is a sequence
// the shortened sequence is written back into its own parent.
func Pop(doc any, p, ref string) (any, error) {
	segments, err := Split(p, ref)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, NewPathError("pop", Separator, fmt.Errorf("%w: cannot pop the root", ErrInvalidPath))
	}
	full := Join(segments...)
	head, last := segments[:len(segments)-1], segments[len(segments)-1]

	parent, err := Get(doc, Join(head...), "")
	if err != nil {
		return nil, err
	}

	switch node := parent.(type) {
	case map[string]any:
		value, ok := node[last]
		if !ok {
			return nil, NewPathError("pop", full, ErrPathNotFound)
		}
		delete(node, last)
		return value, nil
	case []any:
		idx, err := index(last, len(node))
		if err != nil {
			return nil, NewPathError("pop", full, err)
		}
		if len(head) == 0 {
			return nil, NewPathError("pop", full, fmt.Errorf("%w: cannot resize the root sequence", ErrInvalidPath))
		}
		value := node[idx]
		shortened := append(append(make([]any, 0, len(node)-1), node[:idx]...), node[idx+1:]...)
		if err := Set(doc, Join(head...), shortened, ""); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return nil, NewPathError("pop", full, ErrTypeMismatch)
	}
}

// Append adds value to the sequence at p, creating the sequence and any
// intermediate mappings when absent.
func Append(doc any, p string, value any, ref string) error {
	abs, err := Abs(p, ref)
	if err != nil {
		return err
	}
	existing, err := SetDefault(doc, abs, []any{}, "")
	if err != nil {
		return err
	}
	list, ok := existing.([]any)
	if !ok {
		return NewPathError("append", abs, ErrTypeMismatch)
	}
	return Set(doc, abs, append(list, value), "")
}

// =============================================================================
// Helpers
// =============================================================================

// parentOf walks all but the last segment and returns the container holding
// the last one. Missing mappings are created when create is set.
func parentOf(doc any, segments []string, create bool) (any, string, error) {
	if len(segments) == 0 {
		return nil, "", fmt.Errorf("%w: the root cannot be replaced", ErrInvalidPath)
	}
	current := doc
	for _, segment := range segments[:len(segments)-1] {
		next, err := child(current, segment)
		if err == nil {
			current = next
			continue
		}
		node, isMap := current.(map[string]any)
		if !create || !isMap || !isNotFound(err) {
			return nil, "", err
		}
		created := map[string]any{}
		node[segment] = created
		current = created
	}
	return current, segments[len(segments)-1], nil
}

func child(node any, segment string) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		value, ok := n[segment]
		if !ok {
			return nil, ErrPathNotFound
		}
		return value, nil
	case []any:
		idx, err := index(segment, len(n))
		if err != nil {
			return nil, err
		}
		return n[idx], nil
	default:
		return nil, fmt.Errorf("%w: expected a mapping or sequence but got %T", ErrTypeMismatch, node)
	}
}

func assign(node any, segment string, value any) error {
	switch n := node.(type) {
	case map[string]any:
		n[segment] = value
		return nil
	case []any:
		idx, err := index(segment, len(n))
		if err != nil {
			return err
		}
		n[idx] = value
		return nil
	default:
		return fmt.Errorf("%w: expected a mapping or sequence but got %T", ErrTypeMismatch, node)
	}
}

func index(segment string, length int) (int, error) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 || strings.HasPrefix(segment, "+") {
		return 0, fmt.Errorf("%w: %q is not a sequence index", ErrPathNotFound, segment)
	}
	if idx >= length {
		return 0, fmt.Errorf("%w: index %d out of range", ErrPathNotFound, idx)
	}
	return idx, nil
}

func isNotFound(err error) bool {
	return err == ErrPathNotFound
}
