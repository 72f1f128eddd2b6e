//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/montplusa/tetress/pkg/ai/random"
	"github.com/montplusa/tetress/pkg/ai/tetress"
	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/game/debug"
	"github.com/montplusa/tetress/pkg/tables"
)

type aiMoveResult struct {
	State game.State       `json:"state"`
	Move  game.PlaceAction `json:"move"`
	Error string           `json:"error,omitempty"`
}

var rules *game.Rules

func encode(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"error":"` + err.Error() + `"}`
	}
	return string(b)
}

// aiMove(stateJSON) は手番側のエンジンの手を返す
func aiMove(this js.Value, args []js.Value) interface{} {
	var s game.State
	if len(args) < 1 {
		return encode(aiMoveResult{Error: "missing state"})
	}
	if err := json.Unmarshal([]byte(args[0].String()), &s); err != nil {
		return encode(aiMoveResult{Error: err.Error()})
	}
	agent := tetress.New(rules, tetress.DefaultConfig())
	m, err := agent.SelectMove(s)
	if err != nil {
		return encode(aiMoveResult{State: s, Error: err.Error()})
	}
	next, err := rules.ApplyMove(s, m)
	if err != nil {
		return encode(aiMoveResult{State: s, Error: err.Error()})
	}
	a, err := game.ActionFromMove(m)
	if err != nil {
		return encode(aiMoveResult{State: next, Error: err.Error()})
	}
	debug.Log("engine move", "turn", s.TurnCount, "action", a.String())
	return encode(aiMoveResult{State: next, Move: a})
}

// runBattle はエンジン対ランダムの一局を実行して BattleResult を返す
func runBattle(this js.Value, args []js.Value) interface{} {
	seed := time.Now().UnixNano()
	gr := game.NewGameRunner(
		tetress.New(rules, tetress.Config{Seed: seed}),
		random.New(rules, seed+1),
		rules,
	)
	result, err := gr.Run(context.Background())
	if err != nil {
		debug.Log("battle failed", "error", err)
	}
	return encode(result)
}

func main() {
	var err error
	rules, err = game.NewRules(tables.Default(), 0)
	if err != nil {
		panic(err)
	}
	js.Global().Set("tetressAIMove", js.FuncOf(aiMove))
	js.Global().Set("runBattle", js.FuncOf(runBattle))
	select {} // ブロック
}
