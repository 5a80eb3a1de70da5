package tree

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Parse decodes a complete JSON document into a Value. Trailing content after
// the document is an error.
func Parse(text string) (Value, error) {
	data := []byte(text)
	if !json.Valid(data) {
		if depth := nestingDepth(data); depth > MaxDepth {
			return Value{}, fmt.Errorf("tree: document nests %d levels deep, the limit is %d", depth, MaxDepth)
		}
		return Value{}, fmt.Errorf("tree: invalid json document")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("tree: decode: %w", err)
	}
	return fromAny(raw)
}

// MaxDepth is the deepest nesting the decoder accepts.
const MaxDepth = 10000

// nestingDepth returns the deepest bracket nesting of data, brackets inside
// strings are ignored.
func nestingDepth(data []byte) int {
	depth, deepest := 0, 0
	inString, escaped := false, false
	for _, c := range data {
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
			deepest = max(deepest, depth)
		case c == ']' || c == '}':
			depth--
		}
	}
	return deepest
}

// fromAny converts the generic decoder output into a Value without recursing
// on the call stack.
func fromAny(raw any) (Value, error) {
	type pending struct {
		src any
		dst *Value
	}
	type fixup struct {
		obj  map[string]Value
		key  string
		slot *Value
	}

	var root Value
	var fixups []fixup
	work := []pending{{src: raw, dst: &root}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		switch src := p.src.(type) {
		case nil:
			*p.dst = Null()
		case bool:
			*p.dst = Bool(src)
		case json.Number:
			*p.dst = Number(src.String())
		case float64:
			*p.dst = Float(src)
		case string:
			*p.dst = String(src)
		case []any:
			arr := make([]Value, len(src))
			*p.dst = Value{kind: ArrayKind, arr: arr}
			for i, child := range src {
				work = append(work, pending{src: child, dst: &arr[i]})
			}
		case map[string]any:
			obj := make(map[string]Value, len(src))
			*p.dst = Value{kind: ObjectKind, obj: obj}
			for key, child := range src {
				slot := new(Value)
				work = append(work, pending{src: child, dst: slot})
				fixups = append(fixups, fixup{obj: obj, key: key, slot: slot})
			}
		default:
			return Value{}, fmt.Errorf("tree: unsupported decoded type %T", src)
		}
	}
	for _, f := range fixups {
		f.obj[f.key] = *f.slot
	}
	return root, nil
}

func toAny(v Value) any {
	switch v.kind {
	case BoolKind:
		return v.b
	case NumberKind:
		return json.Number(v.str)
	case StringKind:
		return v.str
	case ArrayKind:
		out := make([]any, len(v.arr))
		for i, child := range v.arr {
			out[i] = toAny(child)
		}
		return out
	case ObjectKind:
		out := make(map[string]any, len(v.obj))
		for key, child := range v.obj {
			out[key] = toAny(child)
		}
		return out
	}
	return nil
}

// Marshal encodes v as compact JSON.
func Marshal(v Value) ([]byte, error) {
	return json.Marshal(toAny(v))
}

func (v Value) MarshalJSON() ([]byte, error) {
	return Marshal(v)
}

// Equal reports whether a and b are structurally identical. Numbers compare by
// numeric value when both parse, otherwise by literal text.
func Equal(a, b Value) bool {
	type pair struct{ a, b Value }

	work := []pair{{a, b}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		if p.a.kind != p.b.kind {
			return false
		}
		switch p.a.kind {
		case BoolKind:
			if p.a.b != p.b.b {
				return false
			}
		case StringKind:
			if p.a.str != p.b.str {
				return false
			}
		case NumberKind:
			if p.a.str == p.b.str {
				continue
			}
			fa, okA := p.a.Float64()
			fb, okB := p.b.Float64()
			if !okA || !okB || fa != fb {
				return false
			}
		case ArrayKind:
			if len(p.a.arr) != len(p.b.arr) {
				return false
			}
			for i := range p.a.arr {
				work = append(work, pair{p.a.arr[i], p.b.arr[i]})
			}
		case ObjectKind:
			if len(p.a.obj) != len(p.b.obj) {
				return false
			}
			for key, childA := range p.a.obj {
				childB, ok := p.b.obj[key]
				if !ok {
					return false
				}
				work = append(work, pair{childA, childB})
			}
		}
	}
	return true
}

// MustParse is Parse for literals known to be valid, it panics on error.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}
