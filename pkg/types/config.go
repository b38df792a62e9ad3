// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CollectConfig holds settings for the collection stage.
type CollectConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the maximum number of papers fetched per source
	// (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=0"`

	// RequestDelay is the courtesy delay between sequential sub-requests
	// to the same API. Etiquette, not correctness.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// ArxivCategories lists the arXiv categories to poll. Empty means
	// the built-in defaults.
	ArxivCategories []string `json:"arxiv_categories" yaml:"arxiv_categories" mapstructure:"arxiv_categories"`

	// OpenAlexConcepts lists OpenAlex concept IDs to poll.
	OpenAlexConcepts []string `json:"openalex_concepts" yaml:"openalex_concepts" mapstructure:"openalex_concepts"`

	// OpenAlexJournals lists journal display names to poll.
	OpenAlexJournals []string `json:"openalex_journals" yaml:"openalex_journals" mapstructure:"openalex_journals"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email" yaml:"openalex_email" mapstructure:"openalex_email" validate:"omitempty,email"`
}

// ValidationConfig holds settings for the existence validation stage.
type ValidationConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Concurrency is the bounded worker count for parallel checks
	// (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency" validate:"gte=0,lte=64"`
}

// ScoringConfig holds settings for the relevance scoring stage.
type ScoringConfig struct {
	// KeywordsFile is the path to keywords.yaml. Empty falls back to the
	// built-in keyword set.
	KeywordsFile string `json:"keywords_file" yaml:"keywords_file" mapstructure:"keywords_file"`

	// MinScoreDaily is the inclusive relevance threshold for daily runs
	// (default 5.0).
	MinScoreDaily float64 `json:"min_score_daily" yaml:"min_score_daily" mapstructure:"min_score_daily" validate:"gte=0,lte=100"`

	// MinScoreWeekly is the inclusive relevance threshold for weekly runs
	// (default 10.0).
	MinScoreWeekly float64 `json:"min_score_weekly" yaml:"min_score_weekly" mapstructure:"min_score_weekly" validate:"gte=0,lte=100"`
}

// SummaryConfig holds settings for the summarization stage.
type SummaryConfig struct {
	// Model is the text-generation model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the text-generation API. Empty
	// disables the backend; the summarizer degrades to abstract
	// truncation.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxPapersDaily bounds how many papers get generated summaries in a
	// daily run (default 15). Cost control.
	MaxPapersDaily int `json:"max_papers_daily" yaml:"max_papers_daily" mapstructure:"max_papers_daily" validate:"gte=0"`

	// MaxPapersWeekly bounds summaries in a weekly run (default 30).
	MaxPapersWeekly int `json:"max_papers_weekly" yaml:"max_papers_weekly" mapstructure:"max_papers_weekly" validate:"gte=0"`
}

// EmailConfig holds settings for digest delivery.
type EmailConfig struct {
	// APIKey is the SendGrid API key. Empty disables delivery; the
	// digest is saved to the data directory instead.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// From is the sender address.
	From string `json:"from" yaml:"from" mapstructure:"from" validate:"omitempty,email"`

	// FromName is the sender display name.
	FromName string `json:"from_name" yaml:"from_name" mapstructure:"from_name"`

	// To is the recipient address.
	To string `json:"to" yaml:"to" mapstructure:"to" validate:"omitempty,email"`
}

// LoggingConfig holds logger construction settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is the output format: console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations for the digest pipeline.
type PipelineConfig struct {
	Collect    CollectConfig    `json:"collect" yaml:"collect" mapstructure:"collect"`
	Validation ValidationConfig `json:"validation" yaml:"validation" mapstructure:"validation"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary" mapstructure:"summary"`
	Email      EmailConfig      `json:"email" yaml:"email" mapstructure:"email"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`

	// DataDir is where digest JSON, HTML, and the run archive live
	// (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// DefaultPipelineConfig returns a PipelineConfig with the defaults the
// pipeline assumes when a field is unset.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Collect: CollectConfig{
			HTTPConfig:   HTTPConfig{Timeout: 30 * time.Second, UserAgent: "research-digest/0.1"},
			MaxResults:   100,
			RequestDelay: 3 * time.Second,
		},
		Validation: ValidationConfig{
			HTTPConfig:  HTTPConfig{Timeout: 10 * time.Second, UserAgent: "research-digest/0.1 (paper-validator)"},
			Concurrency: 5,
		},
		Scoring: ScoringConfig{
			MinScoreDaily:  5.0,
			MinScoreWeekly: 10.0,
		},
		Summary: SummaryConfig{
			Model:           "claude-sonnet-4-20250514",
			MaxPapersDaily:  15,
			MaxPapersWeekly: 30,
		},
		Email: EmailConfig{
			From:     "digest@research-digest.com",
			FromName: "Research Digest",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		DataDir: "data",
	}
}
