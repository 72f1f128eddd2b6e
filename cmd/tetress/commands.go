package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/montplusa/tetress/pkg/ai/random"
	"github.com/montplusa/tetress/pkg/ai/tetress"
	"github.com/montplusa/tetress/pkg/ai/trivial"
	"github.com/montplusa/tetress/pkg/config"
	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/logging"
	"github.com/montplusa/tetress/pkg/tables"
)

var (
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "tetress",
		Short:         "Tetress rules engine and MCTS player",
		Long:          `Tetress places tetrominoes on an 11x11 torus. This tool serves human-vs-engine games, runs self-play batches and dumps the move tables.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			lc := cfg.Logging()
			if logLevel != "" {
				lc.Level = logLevel
				if err := lc.Validate(); err != nil {
					return err
				}
			}
			lc.Service = "tetress"
			logger = logging.New(lc)
			slog.SetDefault(logger)
			return nil
		},
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the game API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	selfplayCmd = &cobra.Command{
		Use:   "selfplay",
		Short: "Play engine games against each other and record them as JSON",
		Args:  cobra.NoArgs,
		RunE:  runSelfplay,
	}
	tablesCmd = &cobra.Command{
		Use:   "tables",
		Short: "Write the placement and adjacency tables as JSON",
		Args:  cobra.NoArgs,
		RunE:  runTables,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(selfplayCmd)
	selfplayCmd.Flags().StringVar(&selfplayOpts.outputDir, "output", "output", "output directory")
	selfplayCmd.Flags().StringVar(&selfplayOpts.outputPrefix, "output-prefix", "", "output file prefix (required unless --no-output)")
	selfplayCmd.Flags().BoolVar(&selfplayOpts.noOutput, "no-output", false, "do not write game records")
	selfplayCmd.Flags().IntVar(&selfplayOpts.games, "games", 1, "number of games")
	selfplayCmd.Flags().IntVar(&selfplayOpts.workers, "workers", 0, "parallel games (default: number of CPUs)")
	selfplayCmd.Flags().StringVar(&selfplayOpts.red, "red", "tetress", "red agent (tetress, random, trivial)")
	selfplayCmd.Flags().StringVar(&selfplayOpts.blue, "blue", "random", "blue agent (tetress, random, trivial)")

	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}

func newRules(c config.Config) (*game.Rules, error) {
	t, err := tables.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate tables: %w", err)
	}
	return game.NewRules(t, c.Rules.TurnCap)
}

// newAgent builds the named agent. seed 0 seeds from the clock.
func newAgent(name string, rules *game.Rules, c config.Config, seed int64, l *slog.Logger) (game.AI, error) {
	switch name {
	case "tetress":
		return tetress.New(rules, tetress.Config{
			Rollouts:            c.Search.Rollouts,
			RandomUntilTurn:     c.Search.RandomUntilTurn,
			ExplorationConstant: c.Search.ExplorationConstant,
			OrderChildren:       c.Search.OrderChildren,
			Seed:                seed,
			Logger:              l,
		}), nil
	case "random":
		return random.New(rules, seed), nil
	case "trivial":
		return trivial.New(rules), nil
	}
	return nil, fmt.Errorf("unknown agent %q", name)
}
