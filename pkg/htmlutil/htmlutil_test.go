package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div>
			<a href="/store/apps/details?id=com.a&amp;hl=en">  App <b>A</b> </a>
			<a href="/store/apps/details?id=com.b">App B</a>
			<a href="%zz">broken</a>
		</div>`))
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("a"))
	expected := []Anchor{
		{Name: "App A", Href: "/store/apps/details?id=com.a&hl=en"},
		{Name: "App B", Href: "/store/apps/details?id=com.b"},
	}
	if diff := cmp.Diff(expected, anchors); diff != "" {
		t.Fatalf("anchors mismatch (-want +got):\n%s", diff)
	}
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>one <i>two <b>three</b></i> four</p>`))
	require.NoError(t, err)
	require.Equal(t, "one two three four", GetText(doc.Find("p").Nodes[0]))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("\n  a \t\n  b\u0007 c \n"))
}
