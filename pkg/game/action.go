package game

import (
	"fmt"
	"strings"
)

// PieceCells is the number of cells in every placement.
const PieceCells = 4

// Coord は盤面上の座標 (トーラス上で折り返す)
type Coord struct {
	R int `json:"r"`
	C int `json:"c"`
}

// NewCoord wraps r and c onto the board.
func NewCoord(r, c int) Coord {
	return Coord{R: wrap(r), C: wrap(c)}
}

func (c Coord) Index() int { return CellIndex(c.R, c.C) }

func (c Coord) String() string {
	return fmt.Sprintf("%d-%d", wrap(c.R), wrap(c.C))
}

// CoordOf returns the coordinate of cell i.
func CoordOf(i int) Coord {
	return Coord{R: i / Size, C: i % Size}
}

// PlaceAction is a placement of one piece given by its four cells.
type PlaceAction struct {
	Coords [PieceCells]Coord `json:"coords"`
}

// NewPlaceAction builds an action from four coordinates, wrapping each.
func NewPlaceAction(c1, c2, c3, c4 Coord) PlaceAction {
	return PlaceAction{Coords: [PieceCells]Coord{
		NewCoord(c1.R, c1.C), NewCoord(c2.R, c2.C), NewCoord(c3.R, c3.C), NewCoord(c4.R, c4.C),
	}}
}

func (a PlaceAction) String() string {
	parts := make([]string, len(a.Coords))
	for i, c := range a.Coords {
		parts[i] = c.String()
	}
	return "PLACE(" + strings.Join(parts, ", ") + ")"
}

// MoveFromAction returns the mask covered by the action's cells. Repeated
// coordinates collapse, so the result may hold fewer than four cells.
func MoveFromAction(a PlaceAction) Mask {
	var m Mask
	for _, c := range a.Coords {
		m = m.With(c.Index())
	}
	return m
}

// ActionFromMove lists the cells of m, in ascending index order, as an action.
func ActionFromMove(m Mask) (PlaceAction, error) {
	if n := m.Count(); n != PieceCells {
		return PlaceAction{}, fmt.Errorf("move has %d cells, want %d", n, PieceCells)
	}
	var a PlaceAction
	for k, i := range m.Cells() {
		a.Coords[k] = CoordOf(i)
	}
	return a, nil
}
