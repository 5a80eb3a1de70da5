package treepath

import (
	"fmt"

	"playscraper/internal/tree"
)

// FieldMap is the result of evaluating a Spec against one subtree.
type FieldMap map[string]tree.Value

// Present reports whether the field was found and is not an explicit null.
func (m FieldMap) Present(field string) bool {
	v, ok := m[field]
	return ok && !v.IsNull()
}

func (m FieldMap) String(field string) (string, bool) {
	v, ok := m[field]
	if !ok {
		return "", false
	}
	return v.Str()
}

func (m FieldMap) StringOr(field, fallback string) string {
	s, ok := m.String(field)
	if !ok {
		return fallback
	}
	return s
}

func (m FieldMap) Float(field string) (float64, bool) {
	v, ok := m[field]
	if !ok {
		return 0, false
	}
	return v.Float64()
}

func (m FieldMap) Int(field string) (int64, bool) {
	v, ok := m[field]
	if !ok {
		return 0, false
	}
	return v.Int64()
}

func (m FieldMap) IntOr(field string, fallback int64) int64 {
	n, ok := m.Int(field)
	if !ok {
		return fallback
	}
	return n
}

func (m FieldMap) Array(field string) ([]tree.Value, bool) {
	v, ok := m[field]
	if !ok {
		return nil, false
	}
	return v.Array()
}

// RequireString returns the string stored under field or an error naming the
// field when it is absent or of another kind.
func (m FieldMap) RequireString(field string) (string, error) {
	v, ok := m[field]
	if !ok {
		return "", fmt.Errorf("field %q: not found", field)
	}
	s, ok := v.Str()
	if !ok {
		return "", fmt.Errorf("field %q: expected String, got %s", field, v.Kind())
	}
	return s, nil
}

func (m FieldMap) RequireInt(field string) (int64, error) {
	v, ok := m[field]
	if !ok {
		return 0, fmt.Errorf("field %q: not found", field)
	}
	n, ok := v.Int64()
	if !ok {
		return 0, fmt.Errorf("field %q: expected Number, got %s", field, v.Kind())
	}
	return n, nil
}
