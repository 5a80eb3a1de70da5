package treepath

import (

	"playscraper/internal/tree"
)

// Extract walks root along p. Any mismatch (wrong container kind, missing
// index or key) yields ok == false, it never fails.
func Extract(root tree.Value, p Path) (tree.Value, bool) {
	current := root
	for _, el := range p.elements {
		var ok bool
		if el.isKey {
			current, ok = current.Field(el.key)
		} else {
			current, ok = current.Index(el.index)
		}
		if !ok {
			return tree.Value{}, false
		}
	}
	return current, true
}

// Spec is an immutable mapping from logical field name to the path it is
// found at.
type Spec struct {
	name   string
	fields map[string]Path
}

// NewSpec copies fields, later changes to the map do not affect the spec.
func NewSpec(name string, fields map[string]Path) Spec {
	copied := make(map[string]Path, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Spec{name: name, fields: copied}
}

func (s Spec) Name() string { return s.name }

// Path returns the path registered for field.
func (s Spec) Path(field string) (Path, bool) {
	p, ok := s.fields[field]
	return p, ok
}

// ExtractSpec evaluates every path of spec against root. Fields whose path is
// absent are omitted, an explicit null node is recorded as a null value.
func ExtractSpec(root tree.Value, spec Spec) FieldMap {
	out := make(FieldMap, len(spec.fields))
	for name, p := range spec.fields {
		value, ok := Extract(root, p)
		if !ok {
			continue
		}
		out[name] = value
	}
	return out
}
