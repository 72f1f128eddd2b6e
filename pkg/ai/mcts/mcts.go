// Package mcts implements UCT Monte Carlo Tree Search over game states.
package mcts

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/montplusa/tetress/pkg/game"
)

// Game is the capability the search needs from the rules engine.
type Game interface {
	Children(s game.State) []game.State
	RandomChild(s game.State, rng *rand.Rand) (game.State, bool)
	IsTerminal(s game.State) bool
	Reward(s game.State) (float64, error)
}

// OrderedGame can return children in a preferred exploration order.
type OrderedGame interface {
	Game
	OrderedChildren(s game.State) []game.State
}

// ErrTerminalRoot is returned when searching from a finished game.
var ErrTerminalRoot = errors.New("mcts: root state is terminal")

// EmptyChildSetError means a non-terminal node produced no children, which
// contradicts the terminal test.
type EmptyChildSetError struct {
	TurnCount int
}

func (e *EmptyChildSetError) Error() string {
	return fmt.Sprintf("mcts: non-terminal state at turn %d has no children", e.TurnCount)
}

// Config configures a Tree.
type Config struct {
	// ExplorationConstant is C in UCB1. Zero or less selects sqrt(2).
	ExplorationConstant float64
	// OrderChildren explores children fewest-opponent-replies first when
	// the game supports it.
	OrderChildren bool
	// Seed drives the rollout policy. Zero seeds from the clock.
	Seed int64
	// Logger receives debug output. Nil uses slog.Default().
	Logger *slog.Logger
}

// NodeState is the expansion state of a node.
type NodeState int

const (
	Unexpanded NodeState = iota
	PartiallyExpanded
	FullyExpanded
)

func (s NodeState) String() string {
	switch s {
	case PartiallyExpanded:
		return "partially_expanded"
	case FullyExpanded:
		return "fully_expanded"
	}
	return "unexpanded"
}

// node holds the statistics of one position. reward is the sum of rollout
// results from the point of view of the player who moved into the position.
type node struct {
	visits   int
	reward   float64
	children []game.State
	expanded bool
}

// Tree is a search tree for one decision. Nodes are keyed by position, so
// transpositions share statistics. A Tree is not safe for concurrent use.
type Tree struct {
	game   Game
	c      float64
	order  bool
	rng    *rand.Rand
	nodes  map[game.Key]*node
	logger *slog.Logger
}

// New returns an empty tree searching g.
func New(g Game, cfg Config) *Tree {
	c := cfg.ExplorationConstant
	if c <= 0 {
		c = math.Sqrt2
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	_, ordered := g.(OrderedGame)
	return &Tree{
		game:   g,
		c:      c,
		order:  cfg.OrderChildren && ordered,
		rng:    rand.New(rand.NewSource(seed)),
		nodes:  make(map[game.Key]*node),
		logger: logger,
	}
}

func (t *Tree) lookup(s game.State) *node {
	n, ok := t.nodes[s.Key()]
	if !ok {
		n = &node{}
		t.nodes[s.Key()] = n
	}
	return n
}

// Size returns the number of positions with statistics.
func (t *Tree) Size() int { return len(t.nodes) }

// Stats returns the visit count and accumulated reward of s.
func (t *Tree) Stats(s game.State) (visits int, reward float64) {
	if n, ok := t.nodes[s.Key()]; ok {
		return n.visits, n.reward
	}
	return 0, 0
}

// NodeState reports how far s has been expanded.
func (t *Tree) NodeState(s game.State) NodeState {
	n, ok := t.nodes[s.Key()]
	if !ok || !n.expanded {
		return Unexpanded
	}
	if _, unvisited := t.firstUnvisited(n.children); unvisited {
		return PartiallyExpanded
	}
	return FullyExpanded
}

// RunRollout performs one selection, expansion, simulation and
// backpropagation pass from root, reusing statistics of earlier passes.
func (t *Tree) RunRollout(root game.State) error {
	if t.game.IsTerminal(root) {
		return ErrTerminalRoot
	}
	path, err := t.selectPath(root)
	if err != nil {
		return err
	}
	leaf := path[len(path)-1]
	if !t.game.IsTerminal(leaf) {
		children, err := t.expand(leaf)
		if err != nil {
			return err
		}
		child, ok := t.firstUnvisited(children)
		if !ok {
			// every child was already reached through a transposition
			child = t.uctSelect(t.nodes[leaf.Key()])
		}
		path = append(path, child)
	}
	reward, err := t.simulate(path[len(path)-1])
	if err != nil {
		return err
	}
	t.backpropagate(path, reward)
	return nil
}

// Search runs n rollouts from root.
func (t *Tree) Search(root game.State, n int) error {
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := t.RunRollout(root); err != nil {
			return fmt.Errorf("rollout %d: %w", i, err)
		}
	}
	t.logger.Debug("search finished",
		"rollouts", n,
		"nodes", t.Size(),
		"turn", root.TurnCount,
		"elapsed", time.Since(start))
	return nil
}

// ChooseMove returns the visited child of root with the highest average reward.
func (t *Tree) ChooseMove(root game.State) (game.State, error) {
	if t.game.IsTerminal(root) {
		return game.State{}, ErrTerminalRoot
	}
	n, ok := t.nodes[root.Key()]
	if !ok || len(n.children) == 0 {
		return game.State{}, &EmptyChildSetError{TurnCount: root.TurnCount}
	}
	var (
		best      game.State
		bestScore = math.Inf(-1)
		found     bool
	)
	for _, child := range n.children {
		visits, reward := t.Stats(child)
		if visits == 0 {
			continue
		}
		if score := reward / float64(visits); !found || score > bestScore {
			best, bestScore, found = child, score, true
		}
	}
	if !found {
		return game.State{}, &EmptyChildSetError{TurnCount: root.TurnCount}
	}
	return best, nil
}

// selectPath descends from root while the current node is fully expanded
// and non-terminal, returning every node visited.
func (t *Tree) selectPath(root game.State) ([]game.State, error) {
	path := []game.State{root}
	cur := root
	for {
		n, ok := t.nodes[cur.Key()]
		if !ok || !n.expanded || t.game.IsTerminal(cur) {
			return path, nil
		}
		if len(n.children) == 0 {
			return nil, &EmptyChildSetError{TurnCount: cur.TurnCount}
		}
		if _, unvisited := t.firstUnvisited(n.children); unvisited {
			return path, nil
		}
		cur = t.uctSelect(n)
		path = append(path, cur)
	}
}

// expand discovers the children of s once.
func (t *Tree) expand(s game.State) ([]game.State, error) {
	n := t.lookup(s)
	if n.expanded {
		return n.children, nil
	}
	var children []game.State
	if t.order {
		children = t.game.(OrderedGame).OrderedChildren(s)
	} else {
		children = t.game.Children(s)
	}
	if len(children) == 0 {
		return nil, &EmptyChildSetError{TurnCount: s.TurnCount}
	}
	n.children = children
	n.expanded = true
	return children, nil
}

func (t *Tree) firstUnvisited(children []game.State) (game.State, bool) {
	for _, c := range children {
		if visits, _ := t.Stats(c); visits == 0 {
			return c, true
		}
	}
	return game.State{}, false
}

// uctSelect picks the child maximising UCB1. Every child has been visited.
// A parent without visits of its own scores on average reward alone.
func (t *Tree) uctSelect(parent *node) game.State {
	logN := math.Log(float64(max(parent.visits, 1)))
	var (
		best      game.State
		bestScore = math.Inf(-1)
	)
	for _, c := range parent.children {
		visits, reward := t.Stats(c)
		score := reward/float64(visits) + t.c*math.Sqrt(logN/float64(visits))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// simulate plays random moves from s to the end and returns the result from
// the point of view of the player who moved into s.
func (t *Tree) simulate(s game.State) (float64, error) {
	invert := true
	for !t.game.IsTerminal(s) {
		next, ok := t.game.RandomChild(s, t.rng)
		if !ok {
			return 0, &EmptyChildSetError{TurnCount: s.TurnCount}
		}
		s = next
		invert = !invert
	}
	reward, err := t.game.Reward(s)
	if err != nil {
		return 0, err
	}
	if invert {
		return 1 - reward, nil
	}
	return reward, nil
}

// backpropagate credits the path leaf first, flipping the perspective at
// every ply.
func (t *Tree) backpropagate(path []game.State, reward float64) {
	for i := len(path) - 1; i >= 0; i-- {
		n := t.lookup(path[i])
		n.visits++
		n.reward += reward
		reward = 1 - reward
	}
}
