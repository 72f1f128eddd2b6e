package game

// AI はゲーム用エージェントのインターフェース
type AI interface {
	// 手番側 (s.Turn) の一手を選ぶ。返す手は s で合法でなければならない
	SelectMove(s State) (Mask, error)
}

// AIFunc adapts a function to AI.
type AIFunc func(s State) (Mask, error)

func (f AIFunc) SelectMove(s State) (Mask, error) { return f(s) }
