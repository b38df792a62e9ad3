// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/collect"
	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/email"
	"github.com/pdiddy/research-digest/internal/observability"
	"github.com/pdiddy/research-digest/internal/pipeline"
	"github.com/pdiddy/research-digest/internal/relevance"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/internal/validate"
	"github.com/pdiddy/research-digest/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the digest pipeline and deliver the result",
	Long: `Run executes the full pipeline: collect recent papers, validate them,
score them against the keyword profile, summarize the best matches, and
deliver the digest.

The daily period looks back one day with a lenient relevance threshold; the
weekly period looks back seven days with a stricter one. A run that produces
no digest (no papers collected, none valid, or none relevant) exits non-zero
so schedulers notice.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("period", "daily", "digest period: daily or weekly")
	runCmd.Flags().Bool("no-email", false, "skip email delivery, save the digest locally")

	rootCmd.AddCommand(runCmd)
}

// loadConfig merges defaults, the config file, and environment
// variables, then validates the result.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	periodFlag, _ := cmd.Flags().GetString("period")
	noEmail, _ := cmd.Flags().GetBool("no-email")

	var period types.Period
	switch periodFlag {
	case "daily":
		period = types.PeriodDaily
	case "weekly":
		period = types.PeriodWeekly
	default:
		return fmt.Errorf("invalid period %q: must be daily or weekly", periodFlag)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := observability.NewLogger(cfg.Logging)

	keywords, err := loadKeywordProfile(cfg)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Collect.Timeout}
	checkClient := &http.Client{Timeout: cfg.Validation.Timeout}

	collectors := []collect.Collector{
		&collect.ArxivCollector{
			Client:     client,
			Categories: cfg.Collect.ArxivCategories,
			UserAgent:  cfg.Collect.UserAgent,
			Delay:      cfg.Collect.RequestDelay,
			Log:        log,
		},
		&collect.OpenAlexCollector{
			Client:    client,
			UserAgent: cfg.Collect.UserAgent,
			Email:     loadedSecrets.Get("openalex-email", cfg.Collect.OpenAlexEmail),
			Concepts:  cfg.Collect.OpenAlexConcepts,
			Journals:  cfg.Collect.OpenAlexJournals,
			Delay:     cfg.Collect.RequestDelay,
			Log:       log,
		},
		&collect.NBERCollector{
			Client:    client,
			UserAgent: cfg.Collect.UserAgent,
			Log:       log,
		},
	}

	store, err := digest.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	anthropicKey := loadedSecrets.Get("anthropic-api-key", cfg.Summary.APIKey)
	sendgridKey := loadedSecrets.Get("sendgrid-api-key", cfg.Email.APIKey)
	if noEmail {
		sendgridKey = ""
	}

	p := &pipeline.Pipeline{
		Collectors: collectors,
		Validator: &validate.Validator{
			Client:      checkClient,
			UserAgent:   cfg.Validation.UserAgent,
			Concurrency: cfg.Validation.Concurrency,
			Cache:       validate.NewCache(),
			Log:         log,
		},
		Scorer:     relevance.NewScorer(keywords, log),
		Summarizer: summary.NewSummarizer(anthropicKey, cfg.Summary.Model, log),
		Deliverer:  email.NewSender(sendgridKey, cfg.Email, cfg.DataDir, log),
		Store:      store,
		Config:     cfg,
		Log:        log,
	}

	result, err := p.Run(context.Background(), period)
	if err != nil {
		return err
	}
	if result.Status != pipeline.StatusSuccess {
		return fmt.Errorf("digest run ended with status %s", result.Status)
	}

	fmt.Printf("Digest delivered: %d papers (%s)\n", result.PaperCount, result.DigestPath)
	return nil
}

// loadKeywordProfile reads the configured keywords file, or falls back
// to the built-in profile when none is configured.
func loadKeywordProfile(cfg types.PipelineConfig) (relevance.KeywordSet, error) {
	if cfg.Scoring.KeywordsFile == "" {
		return relevance.FallbackKeywords(), nil
	}
	return relevance.LoadKeywords(cfg.Scoring.KeywordsFile)
}
