// Package metrics holds the Prometheus collectors of the engine and the
// game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision kinds.
const (
	KindBook   = "book"
	KindRandom = "random"
	KindSearch = "search"
)

// Move sources.
const (
	SourceHuman  = "human"
	SourceEngine = "engine"
)

var (
	// Rollouts counts completed MCTS rollouts.
	Rollouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tetress_mcts_rollouts_total",
		Help: "Total MCTS rollouts run",
	})

	// DecisionDuration tracks how long the engine takes to pick a move.
	DecisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tetress_decision_duration_seconds",
		Help:    "Engine decision duration in seconds by kind",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
	}, []string{"kind"})

	// Decisions counts engine decisions by kind.
	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tetress_decisions_total",
		Help: "Total engine decisions by kind",
	}, []string{"kind"})

	// Moves counts accepted moves by source.
	Moves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tetress_moves_total",
		Help: "Total accepted moves by source",
	}, []string{"source"})

	// ActiveSessions is the number of live game sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tetress_active_sessions",
		Help: "Number of live game sessions",
	})

	// GamesFinished counts finished games by outcome.
	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tetress_games_finished_total",
		Help: "Total finished games by outcome",
	}, []string{"outcome"})
)
