package game

import "fmt"

// InvalidMoveError is returned when a placement cannot be played.
type InvalidMoveError struct {
	Move   Mask
	Player Player
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move %s for %s: %s", e.Move, e.Player, e.Reason)
}

// NotTerminalError is returned when a result is requested for a game in progress.
type NotTerminalError struct {
	TurnCount int
}

func (e *NotTerminalError) Error() string {
	return fmt.Sprintf("state at turn %d is not terminal", e.TurnCount)
}
