// Package treepath addresses values inside a tree.Value by position.
package treepath

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is one addressing step, either an array index or an object key.
type Element struct {
	index int
	key   string
	isKey bool
}

func Index(i int) Element {
	return Element{index: i}
}

func Key(k string) Element {
	return Element{key: k, isKey: true}
}

func (e Element) IsKey() bool { return e.isKey }

// Index returns the array index of an index element.
func (e Element) Index() (int, bool) {
	if e.isKey {
		return 0, false
	}
	return e.index, true
}

// Key returns the object key of a key element.
func (e Element) Key() (string, bool) {
	if !e.isKey {
		return "", false
	}
	return e.key, true
}

func (e Element) String() string {
	if e.isKey {
		return "['" + strings.ReplaceAll(e.key, "'", "\\'") + "']"
	}
	return "[" + strconv.Itoa(e.index) + "]"
}

// Path is an immutable sequence of elements.
type Path struct {
	elements []Element
}

// New builds a path out of ints (indices) and strings (keys). Any other
// element type, or a negative index, is an error.
func New(elements ...any) (Path, error) {
	out := make([]Element, len(elements))
	for i, el := range elements {
		switch el := el.(type) {
		case int:
			if el < 0 {
				return Path{}, fmt.Errorf("treepath: element %d: negative index %d", i, el)
			}
			out[i] = Index(el)
		case string:
			out[i] = Key(el)
		case Element:
			if !el.isKey && el.index < 0 {
				return Path{}, fmt.Errorf("treepath: element %d: negative index %d", i, el.index)
			}
			out[i] = el
		default:
			return Path{}, fmt.Errorf(
				"treepath: element %d: must be int or string, got %T (%v)",
				i, el, el,
			)
		}
	}
	return Path{elements: out}, nil
}

// Must is New for paths declared in code, it panics on an invalid element.
func Must(elements ...any) Path {
	p, err := New(elements...)
	if err != nil {
		panic(err)
	}
	return p
}

// Elements returns a copy of the path's elements.
func (p Path) Elements() []Element {
	out := make([]Element, len(p.elements))
	copy(out, p.elements)
	return out
}

func (p Path) Len() int { return len(p.elements) }

// Concat returns a new path made of p's elements followed by other's.
func (p Path) Concat(other Path) Path {
	out := make([]Element, 0, len(p.elements)+len(other.elements))
	out = append(out, p.elements...)
	out = append(out, other.elements...)
	return Path{elements: out}
}

// Concat joins any number of paths in order.
func Concat(paths ...Path) Path {
	var out Path
	for _, p := range paths {
		out = out.Concat(p)
	}
	return out
}

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, el := range p.elements {
		b.WriteString(el.String())
	}
	return b.String()
}
