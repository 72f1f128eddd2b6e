package trivial

import (
	"github.com/montplusa/tetress/pkg/ai/mcts"
	"github.com/montplusa/tetress/pkg/game"
)

// TrivialAI は常に最初の合法手 (最小アンカー) を選ぶ決定的な実装
type TrivialAI struct {
	rules *game.Rules
}

func New(rules *game.Rules) *TrivialAI {
	return &TrivialAI{rules: rules}
}

func (ai *TrivialAI) Name() string {
	return "trivial"
}

// SelectMove は LegalMoves の先頭を返します
func (ai *TrivialAI) SelectMove(s game.State) (game.Mask, error) {
	if ai.rules.IsTerminal(s) {
		return game.Mask{}, mcts.ErrTerminalRoot
	}
	moves := ai.rules.LegalMoves(s)
	if len(moves) == 0 {
		return game.Mask{}, mcts.ErrTerminalRoot
	}
	return moves[0], nil
}
