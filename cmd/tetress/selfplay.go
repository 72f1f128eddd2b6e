package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/montplusa/tetress/pkg/config"
	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/metrics"
)

type selfplayOptions struct {
	outputDir    string
	outputPrefix string
	noOutput     bool
	games        int
	workers      int
	red, blue    string
}

var selfplayOpts selfplayOptions

// 対戦成績の集計
type selfplaySummary struct {
	Red, Blue, Draw int
}

// recordName is the file name of the seq-th game record.
func recordName(prefix string, seq int) string {
	return fmt.Sprintf("%s_%05d.json", prefix, seq)
}

// nextSequence returns the number following the highest record already
// written to dir under prefix. A missing dir starts at 1.
func nextSequence(dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	last := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		digits, ok := strings.CutPrefix(e.Name(), prefix+"_")
		if !ok {
			continue
		}
		if digits, ok = strings.CutSuffix(digits, ".json"); !ok || len(digits) != 5 || strings.Trim(digits, "0123456789") != "" {
			continue
		}
		if n, _ := strconv.Atoi(digits); n > last {
			last = n
		}
	}
	return last + 1, nil
}

func runSelfplay(cmd *cobra.Command, args []string) error {
	summary, err := selfplay(cmd.Context(), selfplayOpts, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "red: %d, blue: %d, draw: %d\n", summary.Red, summary.Blue, summary.Draw)
	return nil
}

func selfplay(ctx context.Context, opts selfplayOptions, c config.Config, l *slog.Logger) (selfplaySummary, error) {
	var summary selfplaySummary
	if !opts.noOutput && opts.outputPrefix == "" {
		return summary, errors.New("--output-prefix is required unless --no-output is set")
	}
	if opts.workers <= 0 {
		opts.workers = runtime.NumCPU()
	}
	rules, err := newRules(c)
	if err != nil {
		return summary, err
	}
	// 名前の検証だけ先に済ませる
	for _, name := range []string{opts.red, opts.blue} {
		if _, err := newAgent(name, rules, c, 1, l); err != nil {
			return summary, err
		}
	}

	startSeq := 1
	if !opts.noOutput {
		if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
			return summary, fmt.Errorf("create output directory: %w", err)
		}
		next, err := nextSequence(opts.outputDir, opts.outputPrefix)
		if err != nil {
			l.Warn("could not scan existing records", "error", err)
			next = 1
		}
		startSeq = next
	}
	l.Info("starting self-play",
		"games", opts.games,
		"workers", opts.workers,
		"red", opts.red,
		"blue", opts.blue,
		"first_seq", startSeq)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i := 0; i < opts.games; i++ {
		g.Go(func() error {
			result, err := playOne(ctx, rules, opts, c, l, int64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			if !opts.noOutput {
				name := filepath.Join(opts.outputDir, recordName(opts.outputPrefix, startSeq+i))
				data, err := json.Marshal(result)
				if err != nil {
					return fmt.Errorf("encode game %d: %w", i, err)
				}
				if err := os.WriteFile(name, data, 0o644); err != nil {
					return fmt.Errorf("write game %d: %w", i, err)
				}
			}
			metrics.GamesFinished.WithLabelValues(result.Winner).Inc()

			mu.Lock()
			switch {
			case result.Outcome.Draw:
				summary.Draw++
			case result.Outcome.Winner == game.Red:
				summary.Red++
			default:
				summary.Blue++
			}
			mu.Unlock()
			l.Info("game finished",
				"game", i,
				"winner", result.Winner,
				"reason", result.Reason,
				"turns", result.FinalState.TurnCount)
			return nil
		})
	}
	err = g.Wait()
	return summary, err
}

// playOne plays one game with fresh agents so that workers share nothing
// but the rules.
func playOne(ctx context.Context, rules *game.Rules, opts selfplayOptions, c config.Config, l *slog.Logger, index int64) (game.BattleResult, error) {
	var redSeed, blueSeed int64
	if c.Search.Seed != 0 {
		redSeed = c.Search.Seed + 2*index
		blueSeed = redSeed + 1
	}
	red, err := newAgent(opts.red, rules, c, redSeed, l)
	if err != nil {
		return game.BattleResult{}, err
	}
	blue, err := newAgent(opts.blue, rules, c, blueSeed, l)
	if err != nil {
		return game.BattleResult{}, err
	}
	return game.NewGameRunner(red, blue, rules).WithLogger(l).Run(ctx)
}
