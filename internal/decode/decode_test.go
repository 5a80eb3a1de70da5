package decode

import (
	"errors"
	"strings"
	"testing"

	"playscraper/internal/components/telemetry"
	"playscraper/internal/tree"
	"playscraper/internal/treepath"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var treeComparer = cmp.Comparer(tree.Equal)

func scriptBlock(key, data string) string {
	return `<script nonce="abc">AF_initDataCallback({key: '` + key + `', hash: '1', data:` + data + `, sideChannel: {}});</script>`
}

func TestDecodeFramedEnvelope(t *testing.T) {
	d := NewDecoder(DefaultOptions, telemetry.NewRecorder())

	v, err := d.Decode(")]}'\n\n[[\"wrb.fr\",\"qnKhOb\",\"[1,2]\"]]")
	require.NoError(t, err)

	expected := tree.MustParse(`[["wrb.fr","qnKhOb",[1,2]]]`)
	require.Empty(t, cmp.Diff(expected, v, treeComparer))
}

func TestDecodeScriptBlock(t *testing.T) {
	html := `<html><head>` +
		scriptBlock("ds:3", `[[null,[["com.example.a"],["com.example.b"]]]]`) +
		`</head><body></body></html>`

	d := NewDecoder(DefaultOptions, telemetry.NewRecorder())
	v, err := d.Decode(html)
	require.NoError(t, err)

	expected := tree.Object(map[string]tree.Value{
		"ds:3": tree.MustParse(`[[null,[["com.example.a"],["com.example.b"]]]]`),
	})
	require.Empty(t, cmp.Diff(expected, v, treeComparer))

	spec := treepath.NewSpec("apps", map[string]treepath.Path{
		"apps": treepath.Must("ds:3", 0, 1),
	})
	fields := treepath.ExtractSpec(v, spec)
	require.Empty(t, cmp.Diff(
		tree.MustParse(`[["com.example.a"],["com.example.b"]]`),
		fields["apps"],
		treeComparer,
	))
}

func TestDecodeMultipleScriptBlocks(t *testing.T) {
	html := scriptBlock("ds:0", `[1]`) +
		scriptBlock("ds:3", `["first"]`) +
		scriptBlock("ds:3", `["second"]`)

	v, err := NewDecoder(DefaultOptions, telemetry.NewRecorder()).Decode(html)
	require.NoError(t, err)

	expected := tree.MustParse(`{"ds:0":[1],"ds:3":["second"]}`)
	require.Empty(t, cmp.Diff(expected, v, treeComparer))
}

func TestDecodeBrokenScriptBlock(t *testing.T) {
	html := scriptBlock("ds:4", `[1,[2]]`) + scriptBlock("ds:5", `[[null, {broken`)

	_, err := NewDecoder(DefaultOptions, telemetry.NewRecorder()).Decode(html)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "ds:5", decodeErr.Block)
	require.Error(t, decodeErr.Cause)
	require.ErrorContains(t, err, "ds:5")

	_, count, err := ParseScriptData(html)
	require.Error(t, err)
	require.Zero(t, count)
}

func TestDecodeScalarFallsThrough(t *testing.T) {
	// the remainder after the prefix is a bare number, which is not a payload
	raw := "xxxxxx12345"
	_, err := NewDecoder(DefaultOptions, telemetry.NewRecorder()).Decode(raw)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, raw, decodeErr.Snippet)
}

func TestDecodeErrors(t *testing.T) {
	d := NewDecoder(DefaultOptions, telemetry.NewRecorder())

	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := d.Decode(raw)
		var emptyErr *EmptyInputError
		require.ErrorAs(t, err, &emptyErr, "%q", raw)
	}

	_, err := d.Decode("<html>nothing to see</html>")
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	long := strings.Repeat("a", 500)
	_, err = d.Decode(long)
	require.True(t, errors.As(err, &decodeErr))
	require.True(t, strings.HasSuffix(decodeErr.Snippet, "..."))
	require.Less(t, len(decodeErr.Snippet), len(long))
}

func TestDecodeShortInputSkipsPrefix(t *testing.T) {
	v, err := NewDecoder(Options{FramingPrefixLength: 10}, telemetry.NewRecorder()).Decode("[1]")
	require.NoError(t, err)
	require.Equal(t, "[1]", v.String())
}

func TestListDecoder(t *testing.T) {
	d := NewListDecoder(DefaultOptions, telemetry.NewRecorder())

	v, err := d.Decode("l1\nl2\nl3\n[1,2,3]\nl5")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(tree.MustParse(`[1,2,3]`), v, treeComparer))

	v, err = d.Decode("l1\nl2\nl3\n[\"[4,\\\"[5]\\\"]\"]")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(tree.MustParse(`[[4,[5]]]`), v, treeComparer))
}

func TestListDecoderFallback(t *testing.T) {
	d := NewListDecoder(DefaultOptions, telemetry.NewRecorder())

	// too few lines, the general decoder strips the framing prefix instead
	v, err := d.Decode(")]}'\n\n[7]")
	require.NoError(t, err)
	require.Equal(t, "[7]", v.String())

	v, err = d.Decode("a\nb\nc\nnot json\n" + scriptBlock("ds:1", `["x"]`))
	require.NoError(t, err)
	require.Equal(t, `{"ds:1":["x"]}`, v.String())

	_, err = d.Decode("")
	var emptyErr *EmptyInputError
	require.ErrorAs(t, err, &emptyErr)

	_, err = d.Decode("a\nb\nc\nd")
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestListDecoderCustomLine(t *testing.T) {
	d := NewListDecoder(Options{FramingPrefixLength: 6, ListPayloadLine: 1}, telemetry.NewRecorder())
	v, err := d.Decode("junk\n{\"a\":1}")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, v.String())
}
