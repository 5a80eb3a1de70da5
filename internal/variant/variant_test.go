package variant

import (
	"testing"

	"playscraper/internal/tree"
	"playscraper/internal/treepath"

	"github.com/stretchr/testify/require"
)

func testTable() Table {
	return NewTable(
		"top",
		treepath.Must(0, 3, 4, 2),
		treepath.Must(0, 0),
		map[int]map[string]treepath.Path{
			4: {
				"TOP_FREE": treepath.Must(0),
				"GROSSING": treepath.Must(1),
				"TRENDING": treepath.Must(2),
				"TOP_PAID": treepath.Must(3),
			},
			6: {
				"TOP_FREE":           treepath.Must(0),
				"TOP_PAID":           treepath.Must(1),
				"GROSSING":           treepath.Must(2),
				"TOP_FREE_GAMES":     treepath.Must(3),
				"TOP_PAID_GAMES":     treepath.Must(4),
				"TOP_GROSSING_GAMES": treepath.Must(5),
			},
		},
	)
}

func TestResolve(t *testing.T) {
	table := testTable()

	four, err := table.Resolve(4)
	require.NoError(t, err)
	require.Equal(t, 4, four.Signature())
	require.Equal(t, []string{"GROSSING", "TOP_FREE", "TOP_PAID", "TRENDING"}, four.Collections())

	six, err := table.Resolve(6)
	require.NoError(t, err)
	require.Equal(t, 6, six.Signature())
	require.NotEqual(t, four.Collections(), six.Collections())

	paidFour, err := table.ClusterPath(four, "TOP_PAID")
	require.NoError(t, err)
	paidSix, err := table.ClusterPath(six, "TOP_PAID")
	require.NoError(t, err)
	require.Equal(t, "$[3][0][3][4][2]", paidFour.String())
	require.Equal(t, "$[1][0][3][4][2]", paidSix.String())

	initial, err := table.InitialItemsPath(six, "TOP_GROSSING_GAMES")
	require.NoError(t, err)
	require.Equal(t, "$[5][0][0]", initial.String())

	_, err = table.Resolve(5)
	var unknown *UnknownVariantError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, 5, unknown.Signature)
	require.Equal(t, "top", unknown.Table)

	_, err = table.ClusterPath(four, "TOP_FREE_GAMES")
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "TOP_FREE_GAMES", unknown.Collection)
	require.Equal(t, four.Collections(), unknown.Known)
	require.ErrorContains(t, err, "GROSSING, TOP_FREE, TOP_PAID, TRENDING")

	require.True(t, table.Has("TRENDING"))
	require.False(t, table.Has("NEW_FREE"))
}

// collection builds one cluster entry: [[items], _, _, [_, _, _, _, [_, _, url]]]
func collection(url string, prices ...int) string {
	items := "["
	for i, price := range prices {
		if i > 0 {
			items += ","
		}
		items += `[` + tree.Int(int64(price)).String() + `]`
	}
	items += "]"
	return `[[` + items + `,null,null,[null,null,null,null,[null,null,"` + url + `"]]]]`
}

func TestRequirePaidOnly(t *testing.T) {
	table := testTable()
	isFree := func(item tree.Value) bool {
		price, _ := item.Index(0)
		n, _ := price.Int64()
		return n == 0
	}

	container := tree.MustParse(`[` +
		collection("/free", 0, 0) + `,` +
		collection("/grossing", 0, 1) + `,` +
		collection("/trending", 1) + `,` +
		collection("/paid", 1, 2, 3) +
		`]`)

	require.NoError(t, table.RequirePaidOnly(container, "TOP_PAID", isFree))

	var parsingErr *ResponseParsingError
	err := table.RequirePaidOnly(container, "GROSSING", isFree)
	require.ErrorAs(t, err, &parsingErr)

	b, err := table.ResolveContainer(container)
	require.NoError(t, err)
	p, err := table.ClusterPath(b, "TOP_PAID")
	require.NoError(t, err)
	url, ok := treepath.Extract(container, p)
	require.True(t, ok)
	require.Equal(t, `"/paid"`, url.String())

	err = table.RequirePaidOnly(tree.MustParse(`[1,2,3,4]`), "TOP_PAID", isFree)
	require.ErrorAs(t, err, &parsingErr)

	_, err = table.ResolveContainer(tree.MustParse(`{"a":1}`))
	require.ErrorAs(t, err, &parsingErr)
}
