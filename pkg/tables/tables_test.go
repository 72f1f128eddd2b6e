package tables

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montplusa/tetress/pkg/game"
)

func TestCatalogHasNineteenOrientations(t *testing.T) {
	total := 0
	for _, p := range Pieces() {
		total += len(Catalog[p])
	}
	assert.Equal(t, 19, total)
	assert.Equal(t, []string{"I", "J", "L", "O", "S", "T", "Z"}, Pieces())
}

func TestGenerate(t *testing.T) {
	tb, err := Generate()
	require.NoError(t, err)
	assert.Equal(t, 19*game.Cells, tb.Placements())
	for i := 0; i < game.Cells; i++ {
		assert.Len(t, tb.Lookup[i], 19*game.PieceCells, "cell %d", i)
		assert.Equal(t, 4, tb.Adjacency[i].Count(), "cell %d", i)
	}
	// the corner wraps to the opposite edges
	assert.Equal(t, game.MaskOf(1, 10, 11, 110), tb.Adjacency[0])
	assert.Same(t, Default(), Default())
}

func TestPlace(t *testing.T) {
	a, err := Place("I", 2, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, game.MaskOf(25, 26, 27, 28), game.MoveFromAction(a))
	assert.Equal(t, "PLACE(2-3, 2-4, 2-5, 2-6)", a.String())

	// rotations wrap around the torus
	a, err = Place("t", 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, game.NewCoord(-2, 0), a.Coords[2])
	assert.True(t, Default().IsPlacement(game.MoveFromAction(a)))

	_, err = Place("X", 0, 0, 0)
	assert.Error(t, err)
	_, err = Place("O", 0, 0, 1)
	assert.Error(t, err)
}

func TestEveryPlacementIsCatalogued(t *testing.T) {
	tb := Default()
	for _, p := range Pieces() {
		for rot := range Catalog[p] {
			for i := 0; i < game.Cells; i++ {
				a, err := Place(p, i/game.Size, i%game.Size, rot)
				require.NoError(t, err)
				m := game.MoveFromAction(a)
				require.True(t, tb.IsPlacement(m), "%s rot %d at %d", p, rot, i)
			}
		}
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, Default().Placements(), got.Placements())
	assert.Equal(t, Default().Lookup, got.Lookup)
	assert.Equal(t, Default().Adjacency, got.Adjacency)
}

func TestNewTablesRejectsBadShapes(t *testing.T) {
	lookup := Lookup()
	lookup[5] = append(lookup[5], game.MaskOf(5, 6, 7))
	_, err := game.NewTables(lookup, Adjacency())
	assert.Error(t, err)

	lookup = Lookup()
	lookup[5] = []game.Mask{game.MaskOf(0, 1, 2, 3)}
	_, err = game.NewTables(lookup, Adjacency())
	assert.Error(t, err)

	adj := Adjacency()
	adj[9] = game.Mask{}
	_, err = game.NewTables(Lookup(), adj)
	assert.Error(t, err)
}
