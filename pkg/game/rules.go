package game

import (
	"errors"
	"math/rand"
	"sort"
)

const (
	// DefaultTurnCap is the turn count at which the game stops.
	DefaultTurnCap = 150
	// OpeningTurns are played without the adjacency rule or terminal checks.
	OpeningTurns = 2
)

// EndReason は終局理由
type EndReason int

const (
	EndNone EndReason = iota
	EndTurnCap
	EndNoMoves
)

func (r EndReason) String() string {
	switch r {
	case EndTurnCap:
		return "turn_cap"
	case EndNoMoves:
		return "no_moves"
	}
	return "none"
}

// Outcome is the result of a finished game. Winner is only meaningful when
// Draw is false.
type Outcome struct {
	Winner Player
	Draw   bool
	Reason EndReason
}

func (o Outcome) String() string {
	if o.Draw {
		return "draw"
	}
	return o.Winner.String()
}

// Rules applies the game rules using the injected tables.
type Rules struct {
	tables  *Tables
	turnCap int
}

// NewRules returns rules over t. A turnCap of zero selects DefaultTurnCap.
func NewRules(t *Tables, turnCap int) (*Rules, error) {
	if t == nil {
		return nil, errors.New("rules: nil tables")
	}
	if turnCap == 0 {
		turnCap = DefaultTurnCap
	}
	if turnCap <= OpeningTurns {
		return nil, errors.New("rules: turn cap must exceed the opening turns")
	}
	return &Rules{tables: t, turnCap: turnCap}, nil
}

func (r *Rules) Tables() *Tables { return r.tables }
func (r *Rules) TurnCap() int     { return r.turnCap }

// anchors returns the empty cells a new piece of the player to move may
// attach to. During the opening every empty cell qualifies.
func (r *Rules) anchors(s State) Mask {
	occupied := s.Occupied()
	if s.TurnCount <= OpeningTurns {
		return full.AndNot(occupied)
	}
	return r.tables.Neighbours(s.Owners[s.Turn]).AndNot(occupied)
}

// LegalMoves lists the placements available to the player to move, without
// duplicates, in anchor order.
func (r *Rules) LegalMoves(s State) []Mask {
	occupied := s.Occupied()
	var (
		moves []Mask
		done  Mask
	)
	r.anchors(s).Each(func(a int) {
		for _, m := range r.tables.Lookup[a] {
			// a placement touching an earlier anchor was already collected there
			if !m.Intersects(occupied) && !m.Intersects(done) {
				moves = append(moves, m)
			}
		}
		done = done.With(a)
	})
	return moves
}

// LegalMoveCount returns len(LegalMoves(s)).
func (r *Rules) LegalMoveCount(s State) int {
	return len(r.LegalMoves(s))
}

// HasLegalMove reports whether at least one placement is available.
func (r *Rules) HasLegalMove(s State) bool {
	occupied := s.Occupied()
	return r.anchors(s).Any(func(a int) bool {
		for _, m := range r.tables.Lookup[a] {
			if !m.Intersects(occupied) {
				return true
			}
		}
		return false
	})
}

// ValidateMove checks that m may be played by the player to move.
func (r *Rules) ValidateMove(s State, m Mask) error {
	invalid := func(reason string) error {
		return &InvalidMoveError{Move: m, Player: s.Turn, Reason: reason}
	}
	switch {
	case m.Count() != PieceCells:
		return invalid("a piece must cover exactly 4 cells")
	case !r.tables.IsPlacement(m):
		return invalid("cells do not form a piece")
	case m.Intersects(s.Occupied()):
		return invalid("piece overlaps occupied cells")
	case s.TurnCount > OpeningTurns && !m.Intersects(r.tables.Neighbours(s.Owners[s.Turn])):
		return invalid("piece is not adjacent to the player's cells")
	case r.IsTerminal(s):
		return invalid("game is over")
	}
	return nil
}

// ApplyMove validates m and returns the state after playing it.
func (r *Rules) ApplyMove(s State, m Mask) (State, error) {
	if err := r.ValidateMove(s, m); err != nil {
		return s, err
	}
	return s.Play(m), nil
}

// ApplyAction is ApplyMove for an external placement.
func (r *Rules) ApplyAction(s State, a PlaceAction) (State, error) {
	return r.ApplyMove(s, MoveFromAction(a))
}

// Play places m for the player to move without validation, clears lines
// and passes the turn. m must come from LegalMoves or ValidateMove.
func (s State) Play(m Mask) State {
	s.Owners[s.Turn] = s.Owners[s.Turn].Or(m)
	s.Owners = ClearLines(s.Owners)
	s.Turn = s.Turn.Opponent()
	s.TurnCount++
	s.LastMove = m
	return s
}

// IsTerminal reports whether the game is over.
func (r *Rules) IsTerminal(s State) bool {
	if s.TurnCount <= OpeningTurns {
		return false
	}
	if s.TurnCount >= r.turnCap {
		return true
	}
	return !r.HasLegalMove(s)
}

// Outcome decides the winner of a terminal state.
func (r *Rules) Outcome(s State) (Outcome, error) {
	if !r.IsTerminal(s) {
		return Outcome{}, &NotTerminalError{TurnCount: s.TurnCount}
	}
	if s.TurnCount >= r.turnCap {
		red, blue := s.Count(Red), s.Count(Blue)
		switch {
		case red > blue:
			return Outcome{Winner: Red, Reason: EndTurnCap}, nil
		case blue > red:
			return Outcome{Winner: Blue, Reason: EndTurnCap}, nil
		}
		return Outcome{Draw: true, Reason: EndTurnCap}, nil
	}
	// 手番側が置けないので相手の勝ち
	return Outcome{Winner: s.Turn.Opponent(), Reason: EndNoMoves}, nil
}

// Reward scores a terminal state for the player to move: 1 for a win,
// 0 for a loss and 0.5 for a draw.
func (r *Rules) Reward(s State) (float64, error) {
	o, err := r.Outcome(s)
	if err != nil {
		return 0, err
	}
	switch {
	case o.Draw:
		return 0.5, nil
	case o.Winner == s.Turn:
		return 1, nil
	}
	return 0, nil
}

// Children returns the distinct states reachable in one move.
func (r *Rules) Children(s State) []State {
	if r.IsTerminal(s) {
		return nil
	}
	moves := r.LegalMoves(s)
	children := make([]State, 0, len(moves))
	seen := make(map[Key]struct{}, len(moves))
	for _, m := range moves {
		child := s.Play(m)
		if _, dup := seen[child.Key()]; dup {
			continue
		}
		seen[child.Key()] = struct{}{}
		children = append(children, child)
	}
	return children
}

// OrderedChildren is Children sorted by the opponent's mobility, fewest
// replies first.
func (r *Rules) OrderedChildren(s State) []State {
	children := r.Children(s)
	mobility := make(map[Key]int, len(children))
	for _, c := range children {
		mobility[c.Key()] = r.LegalMoveCount(c)
	}
	sort.SliceStable(children, func(i, j int) bool {
		return mobility[children[i].Key()] < mobility[children[j].Key()]
	})
	return children
}

// RandomMove picks a uniformly random legal move.
func (r *Rules) RandomMove(s State, rng *rand.Rand) (Mask, bool) {
	if r.IsTerminal(s) {
		return Mask{}, false
	}
	moves := r.LegalMoves(s)
	if len(moves) == 0 {
		return Mask{}, false
	}
	return moves[rng.Intn(len(moves))], true
}

// RandomChild plays a uniformly random legal move.
func (r *Rules) RandomChild(s State, rng *rand.Rand) (State, bool) {
	m, ok := r.RandomMove(s, rng)
	if !ok {
		return s, false
	}
	return s.Play(m), true
}
