// Package tetress is the engine's decision policy: a fixed opening book,
// random play through the early turns, then MCTS.
package tetress

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/montplusa/tetress/pkg/ai/mcts"
	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/metrics"
)

// Config configures an Agent.
type Config struct {
	Rollouts            int
	RandomUntilTurn     int
	ExplorationConstant float64
	OrderChildren       bool
	Seed                int64
	Logger              *slog.Logger
}

// DefaultConfig は既定の探索設定 (200 ロールアウト、7 手目までランダム)
func DefaultConfig() Config {
	return Config{
		Rollouts:        200,
		RandomUntilTurn: 7,
	}
}

func cells(coords ...[2]int) game.Mask {
	var m game.Mask
	for _, c := range coords {
		m = m.With(game.CellIndex(c[0], c[1]))
	}
	return m
}

var (
	redOpening   = cells([2]int{3, 3}, [2]int{3, 4}, [2]int{4, 3}, [2]int{4, 4})
	blueOpening  = cells([2]int{2, 3}, [2]int{2, 4}, [2]int{2, 5}, [2]int{2, 6})
	blueFallback = cells([2]int{6, 4}, [2]int{6, 5}, [2]int{7, 3}, [2]int{7, 4})
)

// Agent picks moves for whichever player is to move.
type Agent struct {
	rules  *game.Rules
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
}

// New returns an agent over rules. Zero Rollouts selects the default.
func New(rules *game.Rules, cfg Config) *Agent {
	if cfg.Rollouts <= 0 {
		cfg.Rollouts = DefaultConfig().Rollouts
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{rules: rules, cfg: cfg, rng: rand.New(rand.NewSource(seed)), logger: logger}
}

func (a *Agent) Name() string { return "tetress" }

// SelectMove returns the move for s.Turn. It fails with
// mcts.ErrTerminalRoot when the game is over.
func (a *Agent) SelectMove(s game.State) (game.Mask, error) {
	if a.rules.IsTerminal(s) {
		return game.Mask{}, mcts.ErrTerminalRoot
	}
	start := time.Now()
	m, kind, err := a.decide(s)
	if err != nil {
		return game.Mask{}, err
	}
	elapsed := time.Since(start)
	metrics.Decisions.WithLabelValues(kind).Inc()
	metrics.DecisionDuration.WithLabelValues(kind).Observe(elapsed.Seconds())

	a.logger.Debug("move selected",
		"kind", kind,
		"player", s.Turn.String(),
		"turn", s.TurnCount,
		"move", m.String(),
		"elapsed", elapsed)
	return m, nil
}

func (a *Agent) decide(s game.State) (game.Mask, string, error) {
	if s.TurnCount <= game.OpeningTurns {
		if m, ok := a.book(s); ok {
			return m, metrics.KindBook, nil
		}
	}
	if s.TurnCount <= a.cfg.RandomUntilTurn || s.TurnCount <= game.OpeningTurns {
		m, ok := a.rules.RandomMove(s, a.rng)
		if !ok {
			return game.Mask{}, "", mcts.ErrTerminalRoot
		}
		return m, metrics.KindRandom, nil
	}
	m, err := a.search(s)
	if err != nil {
		return game.Mask{}, "", err
	}
	return m, metrics.KindSearch, nil
}

// book は序盤の定石。置けなければ false
func (a *Agent) book(s game.State) (game.Mask, bool) {
	candidates := []game.Mask{redOpening}
	if s.Turn == game.Blue {
		candidates = []game.Mask{blueOpening, blueFallback}
	}
	for _, m := range candidates {
		if a.rules.ValidateMove(s, m) == nil {
			return m, true
		}
	}
	return game.Mask{}, false
}

func (a *Agent) search(s game.State) (game.Mask, error) {
	tree := mcts.New(a.rules, mcts.Config{
		ExplorationConstant: a.cfg.ExplorationConstant,
		OrderChildren:       a.cfg.OrderChildren,
		Seed:                a.rng.Int63() | 1,
		Logger:              a.logger,
	})
	if err := tree.Search(s, a.cfg.Rollouts); err != nil {
		return game.Mask{}, fmt.Errorf("search turn %d: %w", s.TurnCount, err)
	}
	metrics.Rollouts.Add(float64(a.cfg.Rollouts))

	best, err := tree.ChooseMove(s)
	if err != nil {
		return game.Mask{}, fmt.Errorf("choose move turn %d: %w", s.TurnCount, err)
	}
	return best.LastMove, nil
}
