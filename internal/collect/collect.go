// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect fetches recent papers from academic metadata sources
// and merges them into a single deduplicated batch.
package collect

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Collector fetches a bounded set of recent papers from one source.
// Each source (arXiv, OpenAlex, NBER) implements this interface; the
// pipeline depends only on it.
type Collector interface {
	Name() string
	FetchRecent(ctx context.Context, window time.Duration, maxResults int) ([]types.PaperRecord, error)
}

// dedupeTitleLen bounds the normalized-title dedup key. Titles sharing
// the first 100 characters collapse to one record.
const dedupeTitleLen = 100

// CollectAll fans the fetch over all collectors sequentially and returns
// the deduplicated union. A failing collector is logged and skipped; the
// batch never aborts on a single source (third-party endpoints are
// unreliable and partial results beat none).
func CollectAll(ctx context.Context, collectors []Collector, window time.Duration, maxResults int, log zerolog.Logger) []types.PaperRecord {
	var all []types.PaperRecord
	for _, c := range collectors {
		papers, err := c.FetchRecent(ctx, window, maxResults)
		if err != nil {
			log.Warn().Str("stage", "collect").Str("source", c.Name()).Err(err).
				Msg("source fetch failed, continuing without it")
			continue
		}
		log.Info().Str("stage", "collect").Str("source", c.Name()).
			Int("papers", len(papers)).Msg("source fetched")
		all = append(all, papers...)
	}

	unique := Dedupe(all)
	log.Info().Str("stage", "collect").Int("total", len(all)).
		Int("unique", len(unique)).Msg("collection complete")
	return unique
}

// Dedupe removes duplicate papers by normalized title, keeping the first
// occurrence and preserving order. The key is the lowercased,
// whitespace-trimmed title truncated to 100 characters. Cross-source
// papers whose titles differ slightly will not merge, and distinct
// papers sharing a long common prefix will. Idempotent.
func Dedupe(papers []types.PaperRecord) []types.PaperRecord {
	seen := make(map[string]struct{}, len(papers))
	unique := make([]types.PaperRecord, 0, len(papers))

	for _, p := range papers {
		key := titleKey(p.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

func titleKey(title string) string {
	key := strings.ToLower(strings.TrimSpace(title))
	if len(key) > dedupeTitleLen {
		key = key[:dedupeTitleLen]
	}
	return key
}

// collapseSpace normalizes runs of whitespace (including newlines in
// Atom/RSS payloads) to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps s at max bytes. Source abstracts are capped to keep
// digest files and summarizer prompts bounded.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
