package random

import (
	"math/rand"
	"time"

	"github.com/montplusa/tetress/pkg/ai/mcts"
	"github.com/montplusa/tetress/pkg/game"
)

// RandomAI はランダムに合法手を選ぶ実装
type RandomAI struct {
	rules *game.Rules
	rng   *rand.Rand
}

// New は RandomAI を生成する。seed が 0 なら時刻から決める
func New(rules *game.Rules, seed int64) *RandomAI {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomAI{rules: rules, rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomAI) Name() string { return "random" }

func (r *RandomAI) SelectMove(s game.State) (game.Mask, error) {
	m, ok := r.rules.RandomMove(s, r.rng)
	if !ok {
		return game.Mask{}, mcts.ErrTerminalRoot
	}
	return m, nil
}
