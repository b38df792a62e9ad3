// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/relevance"
	"github.com/pdiddy/research-digest/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [title]",
	Short: "Score a title and abstract against the keyword profile",
	Long: `Score computes the relevance breakdown for a hypothetical paper, showing
which keywords in each tier matched and the resulting normalized score.
Useful for tuning the keywords file.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().String("abstract", "", "abstract text to score alongside the title")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a paper title to score")
	}
	abstract, _ := cmd.Flags().GetString("abstract")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	keywords, err := loadKeywordProfile(cfg)
	if err != nil {
		return err
	}

	scorer := relevance.NewScorer(keywords, zerolog.Nop())
	b := scorer.Breakdown(types.PaperRecord{
		Title:    strings.Join(args, " "),
		Abstract: abstract,
	})

	fmt.Printf("Raw score:        %.1f\n", b.Raw)
	fmt.Printf("Normalized score: %.1f\n", b.Normalized)
	printTier("Primary", b.Primary)
	printTier("Secondary", b.Secondary)
	printTier("Tertiary", b.Tertiary)
	printTier("Excluded", b.Excluded)

	fmt.Printf("\nDaily threshold:  %.1f (%s)\n", cfg.Scoring.MinScoreDaily,
		passLabel(b.Normalized >= cfg.Scoring.MinScoreDaily))
	fmt.Printf("Weekly threshold: %.1f (%s)\n", cfg.Scoring.MinScoreWeekly,
		passLabel(b.Normalized >= cfg.Scoring.MinScoreWeekly))
	return nil
}

func printTier(label string, matched []string) {
	if len(matched) == 0 {
		return
	}
	fmt.Printf("%-10s %s\n", label+":", strings.Join(matched, ", "))
}

func passLabel(pass bool) string {
	if pass {
		return "pass"
	}
	return "below"
}
