package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Value
	}{
		{
			name:     "scalar",
			input:    `"hello"`,
			expected: String("hello"),
		},
		{
			name:     "null",
			input:    `null`,
			expected: Null(),
		},
		{
			name:  "nested",
			input: `[1, [true, null], {"a": "b", "c": [2.5]}]`,
			expected: Array(
				Int(1),
				Array(Bool(true), Null()),
				Object(map[string]Value{
					"a": String("b"),
					"c": Array(Number("2.5")),
				}),
			),
		},
		{
			name:     "large integer keeps its digits",
			input:    `[9007199254740993]`,
			expected: Array(Number("9007199254740993")),
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			v, err := Parse(test.input)
			require.NoError(t, err)
			require.True(t, Equal(test.expected, v), "got %s", v)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "[1,", "[1] trailing", "{'a': 1}", "AF_initDataCallback"} {
		_, err := Parse(input)
		require.Error(t, err, input)
	}
}

func TestParseDeepNesting(t *testing.T) {
	depth := 5000
	input := strings.Repeat("[", depth) + strings.Repeat("]", depth)
	v, err := Parse(input)
	require.NoError(t, err)
	require.Equal(t, ArrayKind, v.Kind())
	require.True(t, Equal(v, v.Clone()))
}

func TestParseTooDeep(t *testing.T) {
	depth := 2 * MaxDepth
	input := strings.Repeat("[", depth) + strings.Repeat("]", depth)
	_, err := Parse(input)
	require.ErrorContains(t, err, "the limit is 10000")
	require.ErrorContains(t, err, "20000 levels")

	require.Equal(t, 3, nestingDepth([]byte(`{"a":[["[[[\"]"]]}`)))
}

func TestAccessors(t *testing.T) {
	v := MustParse(`[1, "two", 3.75, true, null, {"k": "v"}]`)

	n, ok := v.Index(0)
	require.True(t, ok)
	i, ok := n.Int64()
	require.True(t, ok)
	require.Equal(t, int64(1), i)

	_, ok = n.Str()
	require.False(t, ok)

	s, _ := v.Index(1)
	str, ok := s.Str()
	require.True(t, ok)
	require.Equal(t, "two", str)

	f, _ := v.Index(2)
	fv, ok := f.Float64()
	require.True(t, ok)
	require.Equal(t, 3.75, fv)
	truncated, ok := f.Int64()
	require.True(t, ok)
	require.Equal(t, int64(3), truncated)

	b, _ := v.Index(3)
	bv, ok := b.Bool()
	require.True(t, ok)
	require.True(t, bv)

	null, ok := v.Index(4)
	require.True(t, ok)
	require.True(t, null.IsNull())

	obj, _ := v.Index(5)
	field, ok := obj.Field("k")
	require.True(t, ok)
	require.Equal(t, `"v"`, field.String())

	_, ok = v.Index(6)
	require.False(t, ok)
	_, ok = v.Index(-1)
	require.False(t, ok)
	_, ok = obj.Index(0)
	require.False(t, ok)
	_, ok = v.Field("k")
	require.False(t, ok)

	require.Equal(t, 6, v.Len())
	require.Equal(t, 0, String("abc").Len())
}

func TestClone(t *testing.T) {
	original := MustParse(`{"list": [1, [2, {"deep": "x"}]], "scalar": 1}`)
	clone := original.Clone()
	require.True(t, Equal(original, clone))

	list, _ := clone.Field("list")
	inner, _ := list.Index(1)
	require.True(t, inner.SetIndex(0, String("changed")))
	deep, _ := inner.Index(1)
	require.True(t, deep.SetField("deep", Null()))

	require.False(t, Equal(original, clone))
	require.True(t, Equal(original, MustParse(`{"list": [1, [2, {"deep": "x"}]], "scalar": 1}`)))
}

func TestEqual(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected bool
	}{
		{`[1, 2]`, `[1, 2]`, true},
		{`[1, 2]`, `[2, 1]`, false},
		{`[1.0]`, `[1]`, true},
		{`{"a": 1, "b": 2}`, `{"b": 2, "a": 1}`, true},
		{`{"a": 1}`, `{"a": 1, "b": 2}`, false},
		{`"1"`, `1`, false},
		{`null`, `[]`, false},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Equal(MustParse(test.a), MustParse(test.b)), "%s == %s", test.a, test.b)
	}
}

func TestString(t *testing.T) {
	require.Equal(t, `[1,"a",null]`, Array(Int(1), String("a"), Null()).String())
	require.Equal(t, `{"k":[true]}`, Object(map[string]Value{"k": Array(Bool(true))}).String())
	require.Equal(t, "Array", ArrayKind.String())
}
