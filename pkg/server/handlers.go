package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/metrics"
	"github.com/montplusa/tetress/pkg/tables"
)

const (
	msgInvalidMove = "Invalid move: piece cannot be placed there"
	msgNotYourTurn = "Invalid move: it is not your turn"
	msgEngineTurn  = "The engine is not to move"
)

// MoveRequest is a human placement.
type MoveRequest struct {
	GameID   string `json:"game_id" binding:"required"`
	Piece    string `json:"piece" binding:"required"`
	R        int    `json:"r"`
	C        int    `json:"c"`
	Rotation int    `json:"rotation"`
}

// AIMoveRequest asks the engine to play.
type AIMoveRequest struct {
	GameID string `json:"game_id" binding:"required"`
}

// Board maps "r,c" to "red", "blue" or null.
type Board map[string]*string

// GameStateResponse describes a session after a request.
type GameStateResponse struct {
	Board         Board   `json:"board"`
	CurrentPlayer string  `json:"current_player"`
	GameOver      bool    `json:"game_over"`
	Winner        *string `json:"winner"`
	RedCount      int     `json:"red_count"`
	BlueCount     int     `json:"blue_count"`
	TurnCount     int     `json:"turn_count"`
	Valid         bool    `json:"valid"`
	Message       *string `json:"message"`
}

// NewGameResponse is returned by POST /new-game.
type NewGameResponse struct {
	GameID        string `json:"game_id"`
	Board         Board  `json:"board"`
	CurrentPlayer string `json:"current_player"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ActiveGames int    `json:"active_games"`
}

func boardOf(s game.State) Board {
	b := make(Board, game.Cells)
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			key := fmt.Sprintf("%d,%d", r, c)
			if p, ok := s.CellOwner(r, c); ok {
				name := p.String()
				b[key] = &name
			} else {
				b[key] = nil
			}
		}
	}
	return b
}

func (s *Server) stateResponse(st game.State) GameStateResponse {
	resp := GameStateResponse{
		Board:         boardOf(st),
		CurrentPlayer: st.Turn.String(),
		GameOver:      s.rules.IsTerminal(st),
		RedCount:      st.Count(game.Red),
		BlueCount:     st.Count(game.Blue),
		TurnCount:     st.TurnCount,
		Valid:         true,
	}
	if resp.GameOver {
		if o, err := s.rules.Outcome(st); err == nil {
			w := o.String()
			resp.Winner = &w
		}
	}
	return resp
}

func (s *Server) rejected(st game.State, msg string) GameStateResponse {
	resp := s.stateResponse(st)
	resp.Winner = nil
	resp.Valid = false
	resp.Message = &msg
	return resp
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "Game not found", Code: "GAME_NOT_FOUND"})
}

func (s *Server) finished(before, after game.State) {
	if !s.rules.IsTerminal(before) && s.rules.IsTerminal(after) {
		if o, err := s.rules.Outcome(after); err == nil {
			metrics.GamesFinished.WithLabelValues(o.String()).Inc()
		}
	}
}

func (s *Server) handleNewGame(c *gin.Context) {
	agent, err := s.newAgent()
	if err != nil {
		s.logger.Error("engine unavailable", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "ENGINE_FAILED"})
		return
	}
	sess := s.store.create(agent)
	s.logger.Info("game created", "game_id", sess.id)
	c.JSON(http.StatusOK, NewGameResponse{
		GameID:        sess.id,
		Board:         boardOf(sess.state),
		CurrentPlayer: sess.state.Turn.String(),
	})
}

func (s *Server) handlePlayerMove(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	logger := s.logger.With("game_id", req.GameID, "handler", "player-move")

	sess, ok := s.store.get(req.GameID, true)
	if !ok {
		notFound(c)
		return
	}
	action, err := tables.Place(req.Piece, req.R, req.C, req.Rotation)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_PIECE"})
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Turn != game.Red && !s.rules.IsTerminal(sess.state) {
		c.JSON(http.StatusOK, s.rejected(sess.state, msgNotYourTurn))
		return
	}
	next, err := s.rules.ApplyAction(sess.state, action)
	if err != nil {
		var invalid *game.InvalidMoveError
		if errors.As(err, &invalid) {
			logger.Debug("move rejected", "action", action.String(), "reason", invalid.Reason)
			c.JSON(http.StatusOK, s.rejected(sess.state, msgInvalidMove))
			return
		}
		logger.Error("apply move failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "MOVE_FAILED"})
		return
	}
	metrics.Moves.WithLabelValues(metrics.SourceHuman).Inc()
	s.finished(sess.state, next)
	sess.state = next
	logger.Debug("move played", "action", action.String(), "turn", next.TurnCount)
	c.JSON(http.StatusOK, s.stateResponse(next))
}

func (s *Server) handleAIMove(c *gin.Context) {
	var req AIMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		notFound(c)
		return
	}
	logger := s.logger.With("game_id", req.GameID, "handler", "ai-move")

	sess, ok := s.store.get(req.GameID, true)
	if !ok {
		notFound(c)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if s.rules.IsTerminal(sess.state) {
		c.JSON(http.StatusOK, s.stateResponse(sess.state))
		return
	}
	if sess.state.Turn != game.Blue {
		c.JSON(http.StatusOK, s.rejected(sess.state, msgEngineTurn))
		return
	}
	m, err := sess.agent.SelectMove(sess.state)
	if err != nil {
		logger.Error("engine failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "ENGINE_FAILED"})
		return
	}
	next, err := s.rules.ApplyMove(sess.state, m)
	if err != nil {
		logger.Error("engine played an illegal move", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "ENGINE_FAILED"})
		return
	}
	metrics.Moves.WithLabelValues(metrics.SourceEngine).Inc()
	s.finished(sess.state, next)
	sess.state = next
	logger.Debug("engine moved", "move", m.String(), "turn", next.TurnCount)
	c.JSON(http.StatusOK, s.stateResponse(next))
}

func (s *Server) handleGetGame(c *gin.Context) {
	sess, ok := s.store.get(c.Param("id"), false)
	if !ok {
		notFound(c)
		return
	}
	sess.mu.Lock()
	st := sess.state
	sess.mu.Unlock()
	c.JSON(http.StatusOK, s.stateResponse(st))
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	if s.store.delete(c.Param("id")) {
		s.logger.Info("game deleted", "game_id", c.Param("id"))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", ActiveGames: s.store.Len()})
}
