// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the digest stages: collect, validate,
// score, summarize, assemble, deliver.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/internal/collect"
	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/relevance"
	"github.com/pdiddy/research-digest/internal/summary"
	"github.com/pdiddy/research-digest/internal/validate"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Status reports how far a run got. Anything but StatusSuccess means no
// digest was delivered.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusNoPapers         Status = "no_papers"
	StatusNoValidPapers    Status = "no_valid_papers"
	StatusNoRelevantPapers Status = "no_relevant_papers"
)

// RunResult summarizes one pipeline run.
type RunResult struct {
	Status     Status
	PaperCount int
	DigestPath string
}

// Deliverer sends a rendered digest to the reader.
type Deliverer interface {
	SendDigest(d types.Digest, htmlBody, textBody string) error
}

// Pipeline wires the digest stages together. All stage dependencies are
// injected so tests can run the whole flow against fakes.
type Pipeline struct {
	Collectors []collect.Collector
	Validator  *validate.Validator
	Scorer     *relevance.Scorer
	Summarizer *summary.Summarizer
	Deliverer  Deliverer
	// Store archives runs. Optional.
	Store *digest.Store

	Config types.PipelineConfig
	Log    zerolog.Logger
}

// periodParams returns the lookback window, relevance threshold, and
// summary cap for a period.
func (p *Pipeline) periodParams(period types.Period) (time.Duration, float64, int) {
	if period == types.PeriodWeekly {
		return 7 * 24 * time.Hour, p.Config.Scoring.MinScoreWeekly, p.Config.Summary.MaxPapersWeekly
	}
	return 24 * time.Hour, p.Config.Scoring.MinScoreDaily, p.Config.Summary.MaxPapersDaily
}

// Run executes one full digest run. An empty stage short-circuits with a
// non-success status and no error; errors are reserved for mechanical
// failures such as persistence or delivery.
func (p *Pipeline) Run(ctx context.Context, period types.Period) (RunResult, error) {
	window, minScore, maxSummaries := p.periodParams(period)
	p.Log.Info().Str("period", string(period)).Dur("window", window).
		Float64("min_score", minScore).Msg("starting digest run")

	papers := collect.CollectAll(ctx, p.Collectors, window, p.Config.Collect.MaxResults, p.Log)
	if len(papers) == 0 {
		return p.finish(period, nil, StatusNoPapers)
	}

	valid := p.Validator.ValidateBatch(ctx, papers)
	if len(valid) == 0 {
		return p.finish(period, nil, StatusNoValidPapers)
	}

	relevant := p.Scorer.FilterAndScore(valid, minScore)
	if len(relevant) == 0 {
		return p.finish(period, nil, StatusNoRelevantPapers)
	}
	p.logResurfaced(relevant)

	relevant = p.Summarizer.SummarizeBatch(ctx, relevant, maxSummaries)
	intro := p.Summarizer.GenerateIntro(ctx, relevant, period)

	d := digest.Build(period, relevant)

	path, err := digest.SaveJSON(d, p.digestDir())
	if err != nil {
		return RunResult{Status: StatusSuccess, PaperCount: d.PaperCount}, err
	}

	htmlBody, err := digest.FormatHTML(d, intro)
	if err != nil {
		return RunResult{Status: StatusSuccess, PaperCount: d.PaperCount, DigestPath: path}, err
	}
	textBody := digest.FormatText(d, intro)

	if err := p.Deliverer.SendDigest(d, htmlBody, textBody); err != nil {
		return RunResult{Status: StatusSuccess, PaperCount: d.PaperCount, DigestPath: path},
			fmt.Errorf("delivering digest: %w", err)
	}

	p.archive(d, StatusSuccess)
	p.Log.Info().Str("period", string(period)).Int("papers", d.PaperCount).
		Str("digest", path).Msg("digest run complete")

	return RunResult{Status: StatusSuccess, PaperCount: d.PaperCount, DigestPath: path}, nil
}

// finish records a short-circuited run and returns its result.
func (p *Pipeline) finish(period types.Period, papers []types.PaperRecord, status Status) (RunResult, error) {
	p.Log.Warn().Str("period", string(period)).Str("status", string(status)).
		Msg("digest run ended without a digest")
	p.archive(digest.Build(period, papers), status)
	return RunResult{Status: status}, nil
}

// logResurfaced flags papers that already appeared in an archived
// digest. Feeds sometimes re-announce old papers; the log makes that
// visible without changing what ships.
func (p *Pipeline) logResurfaced(papers []types.PaperRecord) {
	if p.Store == nil {
		return
	}
	for _, paper := range papers {
		n, err := p.Store.SeenTitles(paper.SourceID)
		if err != nil || n == 0 {
			continue
		}
		p.Log.Debug().Str("stage", "digest").Str("source", string(paper.Source)).
			Str("source_id", paper.SourceID).Int("prior_runs", n).
			Msg("paper resurfaced from an earlier digest")
	}
}

func (p *Pipeline) archive(d types.Digest, status Status) {
	if p.Store == nil {
		return
	}
	if _, err := p.Store.RecordRun(d, string(status)); err != nil {
		p.Log.Warn().Err(err).Msg("archiving run failed")
	}
}

func (p *Pipeline) digestDir() string {
	return filepath.Join(p.Config.DataDir, "digests")
}
