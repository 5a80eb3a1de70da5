// Package tree contains the semi-structured value model every decoded
// response is expressed in.
package tree

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "Null"
	case BoolKind:
		return "Bool"
	case NumberKind:
		return "Number"
	case StringKind:
		return "String"
	case ArrayKind:
		return "Array"
	case ObjectKind:
		return "Object"
	}
	return "<unknown kind>"
}

// Value is a tagged union over the JSON kinds. The zero value is Null.
//
// Arrays and objects share their backing storage when a Value is copied, use
// Clone to get an independent tree.
type Value struct {
	kind Kind
	b    bool
	// str holds the string contents for StringKind and the literal text
	// for NumberKind so that large integers are never rounded.
	str string
	arr []Value
	obj map[string]Value
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: BoolKind, b: b}
}

// Number creates a number from its literal JSON text.
func Number(literal string) Value {
	return Value{kind: NumberKind, str: literal}
}

func Int(n int64) Value {
	return Number(strconv.FormatInt(n, 10))
}

func Float(f float64) Value {
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

func String(s string) Value {
	return Value{kind: StringKind, str: s}
}

func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: ArrayKind, arr: items}
}

func Object(entries map[string]Value) Value {
	if entries == nil {
		entries = map[string]Value{}
	}
	return Value{kind: ObjectKind, obj: entries}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == NullKind }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool {
	return v.kind == ArrayKind || v.kind == ObjectKind
}

func (v Value) Bool() (bool, bool) {
	if v.kind != BoolKind {
		return false, false
	}
	return v.b, true
}

func (v Value) Str() (string, bool) {
	if v.kind != StringKind {
		return "", false
	}
	return v.str, true
}

// NumberText returns the literal text of a number.
func (v Value) NumberText() (string, bool) {
	if v.kind != NumberKind {
		return "", false
	}
	return v.str, true
}

func (v Value) Float64() (float64, bool) {
	if v.kind != NumberKind {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int64 returns the number as an integer, numbers with a fractional part are
// truncated.
func (v Value) Int64() (int64, bool) {
	if v.kind != NumberKind {
		return 0, false
	}
	n, err := strconv.ParseInt(v.str, 10, 64)
	if err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func (v Value) Array() ([]Value, bool) {
	if v.kind != ArrayKind {
		return nil, false
	}
	return v.arr, true
}

func (v Value) Object() (map[string]Value, bool) {
	if v.kind != ObjectKind {
		return nil, false
	}
	return v.obj, true
}

// Len returns the number of children of a container and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case ArrayKind:
		return len(v.arr)
	case ObjectKind:
		return len(v.obj)
	}
	return 0
}

// Index returns the array element at i.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != ArrayKind || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Field returns the object member stored under key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != ObjectKind {
		return Value{}, false
	}
	child, ok := v.obj[key]
	return child, ok
}

// SetIndex replaces the array element at i in place. Every Value sharing the
// array observes the change.
func (v Value) SetIndex(i int, child Value) bool {
	if v.kind != ArrayKind || i < 0 || i >= len(v.arr) {
		return false
	}
	v.arr[i] = child
	return true
}

// SetField stores child under key in place.
func (v Value) SetField(key string, child Value) bool {
	if v.kind != ObjectKind {
		return false
	}
	v.obj[key] = child
	return true
}

// Clone returns a deep copy of v. It walks the tree with an explicit work list
// so arbitrarily deep input cannot exhaust the goroutine stack.
func (v Value) Clone() Value {
	if !v.IsContainer() {
		return v
	}

	type pending struct {
		src Value
		dst *Value
	}

	// map entries are not addressable, their clones are built in a slot and
	// stored once the walk has finished.
	type fixup struct {
		obj  map[string]Value
		key  string
		slot *Value
	}

	var root Value
	var fixups []fixup
	work := []pending{{src: v, dst: &root}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		switch p.src.kind {
		case ArrayKind:
			arr := make([]Value, len(p.src.arr))
			*p.dst = Value{kind: ArrayKind, arr: arr}
			for i, child := range p.src.arr {
				if child.IsContainer() {
					work = append(work, pending{src: child, dst: &arr[i]})
					continue
				}
				arr[i] = child
			}
		case ObjectKind:
			obj := make(map[string]Value, len(p.src.obj))
			*p.dst = Value{kind: ObjectKind, obj: obj}
			for key, child := range p.src.obj {
				if child.IsContainer() {
					slot := new(Value)
					work = append(work, pending{src: child, dst: slot})
					fixups = append(fixups, fixup{obj: obj, key: key, slot: slot})
					continue
				}
				obj[key] = child
			}
		default:
			*p.dst = p.src
		}
	}
	for _, f := range fixups {
		f.obj[f.key] = *f.slot
	}
	return root
}

func (v Value) String() string {
	switch v.kind {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(v.b)
	case NumberKind:
		return v.str
	case StringKind:
		return strconv.Quote(v.str)
	}
	out, err := Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(out)
}
