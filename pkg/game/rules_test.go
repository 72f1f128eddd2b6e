package game_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/tables"
)

func newRules(t *testing.T) *game.Rules {
	t.Helper()
	r, err := game.NewRules(tables.Default(), 0)
	require.NoError(t, err)
	return r
}

func cell(r, c int) int { return game.CellIndex(r, c) }

func TestNewRules(t *testing.T) {
	_, err := game.NewRules(nil, 0)
	assert.Error(t, err)
	_, err = game.NewRules(tables.Default(), 2)
	assert.Error(t, err)

	r := newRules(t)
	assert.Equal(t, game.DefaultTurnCap, r.TurnCap())
}

func TestOpeningMovesAreUnconstrained(t *testing.T) {
	r := newRules(t)
	s := game.NewState()

	moves := r.LegalMoves(s)
	assert.Len(t, moves, r.Tables().Placements())
	assert.Equal(t, 2299, len(moves))
	assert.Equal(t, len(moves), r.LegalMoveCount(s))
	assert.False(t, r.IsTerminal(s))

	// blue's first piece need not touch red's
	s, err := r.ApplyMove(s, game.MaskOf(cell(3, 3), cell(3, 4), cell(4, 3), cell(4, 4)))
	require.NoError(t, err)
	_, err = r.ApplyMove(s, game.MaskOf(cell(8, 0), cell(8, 1), cell(8, 2), cell(8, 3)))
	require.NoError(t, err)
}

func TestLegalMovesAreDistinctDisjointAndAnchored(t *testing.T) {
	r := newRules(t)
	rng := rand.New(rand.NewSource(7))
	s := game.NewState()
	for i := 0; i < 10 && !r.IsTerminal(s); i++ {
		s, _ = r.RandomChild(s, rng)
	}
	require.Greater(t, s.TurnCount, game.OpeningTurns)

	own := r.Tables().Neighbours(s.Owners[s.Turn])
	seen := map[game.Mask]bool{}
	for _, m := range r.LegalMoves(s) {
		assert.False(t, seen[m], "duplicate move %s", m)
		seen[m] = true
		assert.Equal(t, game.PieceCells, m.Count())
		assert.False(t, m.Intersects(s.Occupied()))
		assert.True(t, m.Intersects(own))
		assert.NoError(t, r.ValidateMove(s, m))
	}
}

func TestApplyMoveRejects(t *testing.T) {
	r := newRules(t)
	s := game.State{
		Owners:    [2]game.Mask{game.MaskOf(cell(0, 0)), game.MaskOf(cell(5, 5))},
		Turn:      game.Red,
		TurnCount: 3,
	}
	tests := []struct {
		name string
		move game.Mask
	}{
		{"three cells", game.MaskOf(cell(0, 1), cell(0, 2), cell(0, 3))},
		{"not a piece", game.MaskOf(cell(0, 1), cell(0, 3), cell(0, 5), cell(0, 7))},
		{"overlap", game.MaskOf(cell(0, 0), cell(0, 1), cell(0, 2), cell(0, 3))},
		{"not adjacent", game.MaskOf(cell(8, 0), cell(8, 1), cell(8, 2), cell(8, 3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := r.ApplyMove(s, tt.move)
			var invalid *game.InvalidMoveError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, game.Red, invalid.Player)
			assert.Equal(t, s, next)
		})
	}

	// wraps across the left edge onto red's cell (0,0)
	next, err := r.ApplyMove(s, game.MaskOf(cell(0, 10), cell(0, 9), cell(0, 8), cell(0, 7)))
	require.NoError(t, err)
	assert.Equal(t, game.Blue, next.Turn)
	assert.Equal(t, 4, next.TurnCount)
	assert.Equal(t, 5, next.Count(game.Red))
}

func TestApplyMoveDoesNotMutateInput(t *testing.T) {
	r := newRules(t)
	s := game.NewState()
	before := s
	m := r.LegalMoves(s)[0]
	next, err := r.ApplyMove(s, m)
	require.NoError(t, err)
	assert.Equal(t, before, s)
	assert.Equal(t, m, next.LastMove)
	assert.True(t, next.HasLastMove())
	assert.False(t, s.HasLastMove())
}

func TestRowClearsRegardlessOfOwner(t *testing.T) {
	r := newRules(t)
	red := game.MaskOf(cell(0, 4), cell(0, 5), cell(0, 6), cell(5, 5))
	blue := game.MaskOf(cell(0, 0), cell(0, 1), cell(0, 2), cell(0, 3), cell(7, 7))
	s := game.State{Owners: [2]game.Mask{red, blue}, Turn: game.Red, TurnCount: 5}

	row := game.MaskOf(cell(0, 7), cell(0, 8), cell(0, 9), cell(0, 10))
	next, err := r.ApplyMove(s, row)
	require.NoError(t, err)

	assert.Equal(t, game.MaskOf(cell(5, 5)), next.Owners[game.Red])
	assert.Equal(t, game.MaskOf(cell(7, 7)), next.Owners[game.Blue])
	assert.Equal(t, row, next.LastMove)
}

func TestSimultaneousLinesClearTogether(t *testing.T) {
	lines := game.Lines()
	// row 2 owned by red, column 4 owned by blue except their crossing
	red := lines[2]
	blue := lines[game.Size+4].AndNot(red)
	got := game.ClearLines([2]game.Mask{red, blue})
	assert.True(t, got[game.Red].IsZero())
	assert.True(t, got[game.Blue].IsZero())

	// with (2,0) empty only column 4 is saturated
	partial := [2]game.Mask{red.AndNot(game.Bit(cell(2, 0))), blue}
	got = game.ClearLines(partial)
	assert.True(t, got[game.Blue].IsZero())
	assert.Equal(t, partial[game.Red].AndNot(game.Bit(cell(2, 4))), got[game.Red])
}

func TestStuckPlayerLoses(t *testing.T) {
	r := newRules(t)
	// red owns (0,0); its only empty neighbour (0,1) has no room for a
	// piece. The I-shaped hole at row 5 is out of red's reach.
	hole := game.MaskOf(cell(5, 5), cell(5, 6), cell(5, 7), cell(5, 8))
	red := game.MaskOf(cell(0, 0))
	blue := game.Full().AndNot(red).AndNot(hole).AndNot(game.Bit(cell(0, 1)))
	s := game.State{Owners: [2]game.Mask{red, blue}, Turn: game.Red, TurnCount: 40}

	assert.Empty(t, r.LegalMoves(s))
	assert.False(t, r.HasLegalMove(s))
	assert.True(t, r.IsTerminal(s))

	o, err := r.Outcome(s)
	require.NoError(t, err)
	assert.Equal(t, game.Outcome{Winner: game.Blue, Reason: game.EndNoMoves}, o)
	reward, err := r.Reward(s)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reward)
	assert.Empty(t, r.Children(s))

	// blue could still play into the hole
	s.Turn = game.Blue
	assert.Equal(t, []game.Mask{hole}, r.LegalMoves(s))
	assert.False(t, r.IsTerminal(s))
}

func TestTurnCap(t *testing.T) {
	r := newRules(t)
	even := game.State{
		Owners:    [2]game.Mask{game.MaskOf(0, 1, 2, 3), game.MaskOf(50, 51, 52, 53)},
		Turn:      game.Red,
		TurnCount: game.DefaultTurnCap,
	}
	assert.True(t, r.IsTerminal(even))
	assert.True(t, r.HasLegalMove(even), "cap ends the game even with moves left")

	o, err := r.Outcome(even)
	require.NoError(t, err)
	assert.True(t, o.Draw)
	assert.Equal(t, game.EndTurnCap, o.Reason)
	assert.Equal(t, "draw", o.String())
	reward, err := r.Reward(even)
	require.NoError(t, err)
	assert.Equal(t, 0.5, reward)

	ahead := even
	ahead.Owners[game.Blue] = ahead.Owners[game.Blue].With(90)
	o, err = r.Outcome(ahead)
	require.NoError(t, err)
	assert.Equal(t, game.Outcome{Winner: game.Blue, Reason: game.EndTurnCap}, o)

	// reward is symmetric: it follows whoever is to move
	reward, _ = r.Reward(ahead)
	assert.Equal(t, 0.0, reward)
	ahead.Turn = game.Blue
	reward, _ = r.Reward(ahead)
	assert.Equal(t, 1.0, reward)

	_, err = r.ApplyMove(even, game.MaskOf(4, 5, 6, 7))
	assert.Error(t, err)
}

func TestCustomTurnCap(t *testing.T) {
	r, err := game.NewRules(tables.Default(), 10)
	require.NoError(t, err)
	s := game.State{Owners: [2]game.Mask{game.MaskOf(0, 1, 2, 3), {}}, TurnCount: 10}
	assert.True(t, r.IsTerminal(s))
}

func TestOutcomeOnGameInProgress(t *testing.T) {
	r := newRules(t)
	for _, s := range []game.State{game.NewState(), {Owners: [2]game.Mask{game.MaskOf(0, 1, 2, 3), {}}, TurnCount: 2}} {
		_, err := r.Outcome(s)
		var nt *game.NotTerminalError
		assert.True(t, errors.As(err, &nt))
		_, err = r.Reward(s)
		assert.True(t, errors.As(err, &nt))
	}
}

// TestRandomGameInvariants plays seeded random games and checks the state
// invariants after every move.
func TestRandomGameInvariants(t *testing.T) {
	r := newRules(t)
	for seed := int64(1); seed <= 3; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s := game.NewState()
		n := 0
		for !r.IsTerminal(s) {
			moves := r.LegalMoves(s)
			require.NotEmpty(t, moves)
			require.True(t, r.HasLegalMove(s))
			for _, m := range moves {
				a, err := game.ActionFromMove(m)
				require.NoError(t, err)
				require.Equal(t, m, game.MoveFromAction(a))
			}
			var err error
			s, err = r.ApplyMove(s, moves[rng.Intn(len(moves))])
			require.NoError(t, err)
			n++

			require.False(t, s.Owners[game.Red].Intersects(s.Owners[game.Blue]))
			require.Equal(t, 1+n, s.TurnCount)
			require.Equal(t, s.Owners, game.ClearLines(s.Owners))
			require.Equal(t, s.ClearLines(), s.ClearLines().ClearLines())
		}
		o, err := r.Outcome(s)
		require.NoError(t, err)
		if o.Reason == game.EndNoMoves {
			assert.False(t, r.HasLegalMove(s))
			assert.Equal(t, s.Turn.Opponent(), o.Winner)
		} else {
			assert.Equal(t, r.TurnCap(), s.TurnCount)
		}
	}
}

func TestOrderedChildren(t *testing.T) {
	r := newRules(t)
	rng := rand.New(rand.NewSource(3))
	s := game.NewState()
	for i := 0; i < 6; i++ {
		s, _ = r.RandomChild(s, rng)
	}
	children := r.OrderedChildren(s)
	require.NotEmpty(t, children)
	plain := r.Children(s)
	require.Len(t, children, len(plain))
	keys := map[game.Key]bool{}
	for _, c := range plain {
		keys[c.Key()] = true
	}
	for _, c := range children {
		assert.True(t, keys[c.Key()])
	}
	for i := 1; i < len(children); i++ {
		assert.LessOrEqual(t, r.LegalMoveCount(children[i-1]), r.LegalMoveCount(children[i]))
	}
	for _, c := range children {
		assert.Equal(t, s.TurnCount+1, c.TurnCount)
		assert.Equal(t, s.Turn.Opponent(), c.Turn)
	}
}

func TestStateKeyIgnoresLastMove(t *testing.T) {
	a := game.State{Owners: [2]game.Mask{game.MaskOf(1, 2, 3, 4), {}}, Turn: game.Blue, TurnCount: 2, LastMove: game.MaskOf(1, 2, 3, 4)}
	b := a
	b.LastMove = game.Mask{}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a, b)
}

func TestStateString(t *testing.T) {
	s := game.State{Owners: [2]game.Mask{game.Bit(0), game.Bit(1)}}
	lines := s.String()
	assert.Equal(t, "r b - - - - - - - - -\n", lines[:22])

	p, ok := s.CellOwner(0, 1)
	assert.True(t, ok)
	assert.Equal(t, game.Blue, p)
	_, ok = s.CellOwner(1, 1)
	assert.False(t, ok)
}
