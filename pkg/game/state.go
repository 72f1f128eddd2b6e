package game

import (
	"fmt"
	"strings"
)

// Player は手番のプレイヤー (Red が先手)
type Player uint8

const (
	Red Player = iota
	Blue
)

// Opponent returns the other player.
func (p Player) Opponent() Player { return 1 - p }

func (p Player) String() string {
	switch p {
	case Red:
		return "red"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("Player(%d)", uint8(p))
}

// ParsePlayer accepts "red"/"r" and "blue"/"b".
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(s) {
	case "red", "r":
		return Red, nil
	case "blue", "b":
		return Blue, nil
	}
	return 0, fmt.Errorf("unknown player %q", s)
}

// State は盤面情報を保持する値型。遷移は常に新しい State を返す。
type State struct {
	Owners    [2]Mask // プレイヤーごとの占有マス
	Turn      Player  // 次に打つプレイヤー
	TurnCount int     // 1 から始まり一手ごとに +1
	LastMove  Mask    // 直前の配置 (初期状態ではゼロ)
}

// Key identifies a position independently of how it was reached.
type Key struct {
	Owners    [2]Mask
	Turn      Player
	TurnCount int
}

// NewState returns the empty starting position, red to move.
func NewState() State {
	return State{Turn: Red, TurnCount: 1}
}

func (s State) Key() Key {
	return Key{Owners: s.Owners, Turn: s.Turn, TurnCount: s.TurnCount}
}

// Occupied returns the union of both owners.
func (s State) Occupied() Mask {
	return s.Owners[Red].Or(s.Owners[Blue])
}

// Count returns the number of tokens owned by p.
func (s State) Count(p Player) int {
	return s.Owners[p].Count()
}

// HasLastMove reports whether a move has been applied since the start.
func (s State) HasLastMove() bool {
	return !s.LastMove.IsZero()
}

// LastAction converts LastMove to its placement form.
func (s State) LastAction() (PlaceAction, error) {
	if !s.HasLastMove() {
		return PlaceAction{}, fmt.Errorf("no move has been played")
	}
	return ActionFromMove(s.LastMove)
}

// ClearLines removes every saturated row and column from both owners.
func (s State) ClearLines() State {
	s.Owners = ClearLines(s.Owners)
	return s
}

// ClearLines clears, in a single pass, every line fully covered by the union
// of both masks. Ownership inside the line is irrelevant.
func ClearLines(owners [2]Mask) [2]Mask {
	occupied := owners[Red].Or(owners[Blue])
	var toClear Mask
	for _, line := range lines {
		if occupied.Covers(line) {
			toClear = toClear.Or(line)
		}
	}
	if toClear.IsZero() {
		return owners
	}
	return [2]Mask{owners[Red].AndNot(toClear), owners[Blue].AndNot(toClear)}
}

// String renders the board row by row using r, b and -.
func (s State) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			i := r*Size + c
			switch {
			case s.Owners[Red].Has(i):
				sb.WriteByte('r')
			case s.Owners[Blue].Has(i):
				sb.WriteByte('b')
			default:
				sb.WriteByte('-')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CellOwner reports who owns cell (r, c), if anyone.
func (s State) CellOwner(r, c int) (Player, bool) {
	i := CellIndex(r, c)
	switch {
	case s.Owners[Red].Has(i):
		return Red, true
	case s.Owners[Blue].Has(i):
		return Blue, true
	}
	return 0, false
}
