package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/montplusa/tetress/pkg/tables"
)

func runTables(cmd *cobra.Command, args []string) error {
	t, err := tables.Generate()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	if err := tables.Write(out, t); err != nil {
		return err
	}
	logger.Info("tables written", "placements", t.Placements())
	return nil
}
