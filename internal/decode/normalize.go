package decode

import (
	"strings"

	"playscraper/internal/tree"
)

// Normalize expands string leaves that hold a serialized array or object into
// real containers, recursively. Scalars are returned as is, containers are
// cloned first so the input is never mutated.
//
// Nesting depth is controlled by the server, so the walk uses an explicit
// stack instead of recursion.
func Normalize(v tree.Value) tree.Value {
	if !v.IsContainer() {
		return v
	}

	root := v.Clone()
	pending := []tree.Value{root}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if arr, ok := current.Array(); ok {
			for i, child := range arr {
				replacement, push := expandChild(child)
				if !push {
					continue
				}
				if replacement.IsContainer() && !child.IsContainer() {
					current.SetIndex(i, replacement)
				}
				pending = append(pending, replacement)
			}
			continue
		}

		if obj, ok := current.Object(); ok {
			for key, child := range obj {
				replacement, push := expandChild(child)
				if !push {
					continue
				}
				if replacement.IsContainer() && !child.IsContainer() {
					current.SetField(key, replacement)
				}
				pending = append(pending, replacement)
			}
		}
	}
	return root
}

// expandChild returns the container that should be traversed for child, if
// any: child itself when it is a container, or the container parsed out of a
// string leaf.
func expandChild(child tree.Value) (tree.Value, bool) {
	if child.IsContainer() {
		return child, true
	}
	s, ok := child.Str()
	if !ok || !looksLikeContainer(s) {
		return tree.Value{}, false
	}
	parsed, err := tree.Parse(s)
	if err != nil || !parsed.IsContainer() {
		return tree.Value{}, false
	}
	return parsed, true
}

// a serialized container always starts with a bracket, skipping the parse
// attempt otherwise does not change the outcome.
func looksLikeContainer(s string) bool {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}
