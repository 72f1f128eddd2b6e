package game

import (
	"context"
	"fmt"
	"log/slog"
)

// BattleResult は対戦結果の記録
type BattleResult struct {
	Moves      []PlaceAction `json:"moves"`       // 手の履歴
	FinalState State         `json:"final_state"` // 終局盤面
	Outcome    Outcome       `json:"-"`
	Winner     string        `json:"winner"` // "red", "blue" or "draw"
	Reason     string        `json:"reason"`
	RedCount   int           `json:"red_count"`
	BlueCount  int           `json:"blue_count"`
}

// GameRunner は対戦を管理
type GameRunner struct {
	agents [2]AI
	rules  *Rules
	logger *slog.Logger
}

// NewGameRunner は AI エージェントをセットして返す。a0 が赤 (先手)
func NewGameRunner(a0, a1 AI, rules *Rules) *GameRunner {
	return &GameRunner{agents: [2]AI{a0, a1}, rules: rules, logger: slog.Default()}
}

// WithLogger sets the logger used for per-turn debug output.
func (gr *GameRunner) WithLogger(l *slog.Logger) *GameRunner {
	if l != nil {
		gr.logger = l
	}
	return gr
}

// Run は終局まで対戦を実行して BattleResult を返す
func (gr *GameRunner) Run(ctx context.Context) (BattleResult, error) {
	state := NewState()
	result := BattleResult{Moves: make([]PlaceAction, 0, gr.rules.TurnCap())}

	for !gr.rules.IsTerminal(state) {
		if err := ctx.Err(); err != nil {
			result.FinalState = state
			return result, err
		}
		player := state.Turn
		m, err := gr.agents[player].SelectMove(state)
		if err != nil {
			result.FinalState = state
			return result, fmt.Errorf("%s agent at turn %d: %w", player, state.TurnCount, err)
		}
		next, err := gr.rules.ApplyMove(state, m)
		if err != nil {
			result.FinalState = state
			return result, fmt.Errorf("%s agent at turn %d: %w", player, state.TurnCount, err)
		}
		a, err := ActionFromMove(m)
		if err != nil {
			return result, err
		}
		gr.logger.Debug("move played",
			"turn", state.TurnCount,
			"player", player.String(),
			"action", a.String(),
			"red", next.Count(Red),
			"blue", next.Count(Blue))
		result.Moves = append(result.Moves, a)
		state = next
	}

	o, err := gr.rules.Outcome(state)
	if err != nil {
		return result, err
	}
	result.FinalState = state
	result.Outcome = o
	result.Winner = o.String()
	result.Reason = o.Reason.String()
	result.RedCount = state.Count(Red)
	result.BlueCount = state.Count(Blue)
	return result, nil
}
