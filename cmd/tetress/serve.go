package main

import (
	"github.com/spf13/cobra"

	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/server"
)

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := newRules(cfg)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	srv := server.New(rules, func() (game.AI, error) {
		return newAgent("tetress", rules, cfg, cfg.Search.Seed, logger)
	}, server.Options{
		SessionTTL:      cfg.Server.SessionTTL,
		CleanupInterval: cfg.Server.CleanupInterval,
		Logger:          logger,
	})
	logger.Info("starting server",
		"addr", addr,
		"turn_cap", rules.TurnCap(),
		"rollouts", cfg.Search.Rollouts)
	return srv.ListenAndServe(cmd.Context(), addr)
}
