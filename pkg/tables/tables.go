// Package tables builds the placement and adjacency tables consumed by the
// rules engine from the tetromino catalog.
package tables

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/montplusa/tetress/pkg/game"
)

// Offset is a (row, col) displacement from a piece's reference cell.
type Offset struct {
	DR, DC int
}

// Shape is one orientation of a piece.
type Shape [game.PieceCells]Offset

// Catalog maps each piece letter to its orientations, indexed by rotation.
var Catalog = map[string][]Shape{
	"I": {
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	},
	"O": {
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	},
	"T": {
		{{0, 0}, {1, 0}, {2, 0}, {1, 1}},
		{{0, 0}, {0, -1}, {0, -2}, {1, -1}},
		{{0, 0}, {-1, 0}, {-2, 0}, {-1, -1}},
		{{0, 0}, {0, 1}, {0, 2}, {-1, 1}},
	},
	"J": {
		{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {-1, 0}, {-2, 0}, {-2, 1}},
		{{0, 0}, {0, -1}, {0, -2}, {-1, -2}},
		{{0, 0}, {1, 0}, {2, -1}, {2, 0}},
	},
	"L": {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {1, 0}, {1, -1}, {1, -2}},
		{{0, 0}, {0, -1}, {-1, -1}, {-2, -1}},
		{{0, 0}, {-1, 1}, {-1, 2}, {-1, 0}},
	},
	"S": {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {-1, 1}, {-1, 2}},
	},
	"Z": {
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{0, 0}, {1, 0}, {1, -1}, {2, -1}},
	},
}

// Pieces returns the catalog letters in a fixed order.
func Pieces() []string {
	out := make([]string, 0, len(Catalog))
	for k := range Catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Place translates a piece, its reference cell and a rotation into a placement.
func Place(piece string, r, c, rotation int) (game.PlaceAction, error) {
	shapes, ok := Catalog[strings.ToUpper(piece)]
	if !ok {
		return game.PlaceAction{}, fmt.Errorf("unknown piece type %q", piece)
	}
	if rotation < 0 || rotation >= len(shapes) {
		return game.PlaceAction{}, fmt.Errorf("invalid rotation %d for piece %s", rotation, piece)
	}
	return shapeAt(shapes[rotation], r, c), nil
}

func shapeAt(s Shape, r, c int) game.PlaceAction {
	var a game.PlaceAction
	for k, off := range s {
		a.Coords[k] = game.NewCoord(r+off.DR, c+off.DC)
	}
	return a
}

// Lookup returns, for every cell, each placement of each catalogued
// orientation that covers the cell.
func Lookup() [game.Cells][]game.Mask {
	var out [game.Cells][]game.Mask
	for i := 0; i < game.Cells; i++ {
		r, c := i/game.Size, i%game.Size
		for _, p := range Pieces() {
			for _, s := range Catalog[p] {
				// every cell of the shape in turn lands on (r, c)
				for _, pivot := range s {
					a := shapeAt(s, r-pivot.DR, c-pivot.DC)
					out[i] = append(out[i], game.MoveFromAction(a))
				}
			}
		}
	}
	return out
}

// Adjacency returns the four toroidal neighbours of every cell.
func Adjacency() [game.Cells]game.Mask {
	var out [game.Cells]game.Mask
	for i := 0; i < game.Cells; i++ {
		r, c := i/game.Size, i%game.Size
		out[i] = game.MaskOf(
			game.CellIndex(r+1, c),
			game.CellIndex(r-1, c),
			game.CellIndex(r, c+1),
			game.CellIndex(r, c-1),
		)
	}
	return out
}

// Generate builds validated tables from the catalog.
func Generate() (*game.Tables, error) {
	return game.NewTables(Lookup(), Adjacency())
}

var (
	defaultOnce   sync.Once
	defaultTables *game.Tables
)

// Default returns tables generated once per process. The catalog is fixed,
// so a generation failure is a programming error.
func Default() *game.Tables {
	defaultOnce.Do(func() {
		t, err := Generate()
		if err != nil {
			panic(fmt.Sprintf("tables: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}
