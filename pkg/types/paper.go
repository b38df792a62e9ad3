// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-digest pipeline.
package types

import "time"

// Source identifies the origin system for a paper record.
type Source string

const (
	SourceArxiv    Source = "arxiv"
	SourceOpenAlex Source = "openalex"
	SourceNBER     Source = "nber"
)

// PaperRecord is the central entity of the pipeline. Source clients create
// records from raw API responses; the scorer sets RelevanceScore and
// MatchedKeywords; the summarizer sets Summary for the top papers.
type PaperRecord struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract. May be empty (e.g. NBER items
	// without a description).
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL is the canonical landing page for the paper.
	URL string `json:"url" yaml:"url"`

	// PDFURL is the direct PDF link, when the source provides one.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Source identifies which client collected this record.
	Source Source `json:"source" yaml:"source"`

	// SourceID is the identifier within the source (arXiv ID, OpenAlex
	// work ID, NBER working paper number). Non-empty and unique per
	// source within one collection run.
	SourceID string `json:"source_id" yaml:"source_id"`

	// PublishedDate is the best-effort publication date as an ISO date
	// string (YYYY-MM-DD).
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// Categories holds source-specific topic labels (arXiv categories,
	// OpenAlex concepts, journal names).
	Categories []string `json:"categories" yaml:"categories"`

	// RelevanceScore is the normalized keyword score in [0, 100].
	// Zero until the scorer runs.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// Summary is the generated synopsis. Only populated for the top-N
	// papers passed to the summarizer; empty otherwise.
	Summary string `json:"summary" yaml:"summary"`

	// MatchedKeywords lists the positive-weight keywords the scorer
	// found in the title or abstract.
	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`
}

// Period selects the digest cadence.
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// Digest is one timestamped snapshot of scored, optionally summarized
// papers. Immutable once written.
type Digest struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Period      Period        `json:"period"`
	PaperCount  int           `json:"paper_count"`
	Papers      []PaperRecord `json:"papers"`
}
