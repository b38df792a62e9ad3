// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/digest"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent digest runs from the archive",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 10, "maximum number of runs to show")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := digest.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No digest runs recorded yet.")
		return nil
	}

	fmt.Printf("%-6s %-8s %-20s %-7s %s\n", "ID", "PERIOD", "GENERATED", "PAPERS", "STATUS")
	for _, r := range runs {
		fmt.Printf("%-6d %-8s %-20s %-7d %s\n",
			r.ID, r.Period, r.GeneratedAt.Format("2006-01-02 15:04"), r.PaperCount, r.Status)
	}
	return nil
}
