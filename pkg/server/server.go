// Package server exposes human-vs-engine games over HTTP. The human plays
// red and the engine plays blue.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/montplusa/tetress/pkg/game"
)

// AgentFactory returns a fresh engine for a new session.
type AgentFactory func() (game.AI, error)

// Options configures a Server.
type Options struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	Logger          *slog.Logger
}

// Server owns the session store and the HTTP handlers.
type Server struct {
	rules    *game.Rules
	store    *Store
	newAgent AgentFactory
	opts     Options
	logger   *slog.Logger
}

// New returns a server playing rules with engines from newAgent.
func New(rules *game.Rules, newAgent AgentFactory, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{rules: rules, store: NewStore(), newAgent: newAgent, opts: opts, logger: logger}
}

// Store returns the session store.
func (s *Server) Store() *Store { return s.store }

// Router builds the gin engine with the API and /metrics.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r.Group("/api"), s)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// RegisterRoutes registers the game API on rg.
//
//	POST   /new-game
//	POST   /player-move
//	POST   /ai-move
//	GET    /game/:id
//	DELETE /game/:id
//	GET    /health
func RegisterRoutes(rg *gin.RouterGroup, s *Server) {
	rg.POST("/new-game", s.handleNewGame)
	rg.POST("/player-move", s.handlePlayerMove)
	rg.POST("/ai-move", s.handleAIMove)
	rg.GET("/game/:id", s.handleGetGame)
	rg.DELETE("/game/:id", s.handleDeleteGame)
	rg.GET("/health", s.handleHealth)
}

// Cleanup evicts idle sessions once and returns how many were removed.
func (s *Server) Cleanup() int {
	evicted := s.store.Evict(s.opts.SessionTTL)
	for _, id := range evicted {
		s.logger.Info("cleaned up inactive game", "game_id", id)
	}
	return len(evicted)
}

// RunCleanup evicts idle sessions every CleanupInterval until ctx is done.
func (s *Server) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.opts.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.RunCleanup(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
