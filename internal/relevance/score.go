// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Tier weights. Each keyword contributes at most once regardless of how
// often it appears in the text.
const (
	primaryWeight   = 3.0
	secondaryWeight = 2.0
	tertiaryWeight  = 1.0
	excludeWeight   = -10.0
)

// rawScoreCeiling is the raw score mapped to 100 on the normalized
// scale. Roughly fifteen primary matches.
const rawScoreCeiling = 45.0

// Scorer scores papers against a keyword profile. Matchers are compiled
// once at construction.
type Scorer struct {
	keywords KeywordSet
	matchers map[string]*regexp.Regexp
	log      zerolog.Logger
}

// NewScorer compiles word-boundary matchers for every keyword in ks.
func NewScorer(ks KeywordSet, log zerolog.Logger) *Scorer {
	s := &Scorer{
		keywords: ks,
		matchers: make(map[string]*regexp.Regexp),
		log:      log,
	}
	for _, tier := range [][]string{ks.Primary, ks.Secondary, ks.Tertiary, ks.Exclude} {
		for _, kw := range tier {
			if _, ok := s.matchers[kw]; ok {
				continue
			}
			s.matchers[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return s
}

// ScoreBreakdown itemizes one paper's score for diagnostics.
type ScoreBreakdown struct {
	Raw        float64
	Normalized float64
	Primary    []string
	Secondary  []string
	Tertiary   []string
	Excluded   []string
}

// Score computes a paper's normalized relevance in [0, 100] plus the
// positive keywords that matched. The text searched is the title and
// abstract joined by a space.
func (s *Scorer) Score(p types.PaperRecord) (float64, []string) {
	b := s.Breakdown(p)
	matched := make([]string, 0, len(b.Primary)+len(b.Secondary)+len(b.Tertiary))
	matched = append(matched, b.Primary...)
	matched = append(matched, b.Secondary...)
	matched = append(matched, b.Tertiary...)
	return b.Normalized, matched
}

// Breakdown computes the full per-tier match detail for one paper.
func (s *Scorer) Breakdown(p types.PaperRecord) ScoreBreakdown {
	text := p.Title + " " + p.Abstract

	var b ScoreBreakdown
	b.Primary = s.matchTier(text, s.keywords.Primary)
	b.Secondary = s.matchTier(text, s.keywords.Secondary)
	b.Tertiary = s.matchTier(text, s.keywords.Tertiary)
	b.Excluded = s.matchTier(text, s.keywords.Exclude)

	b.Raw = primaryWeight*float64(len(b.Primary)) +
		secondaryWeight*float64(len(b.Secondary)) +
		tertiaryWeight*float64(len(b.Tertiary)) +
		excludeWeight*float64(len(b.Excluded))

	b.Normalized = b.Raw / rawScoreCeiling * 100
	if b.Normalized < 0 {
		b.Normalized = 0
	}
	if b.Normalized > 100 {
		b.Normalized = 100
	}
	return b
}

func (s *Scorer) matchTier(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if s.matchers[kw].MatchString(text) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// FilterAndScore scores every paper, keeps those at or above minScore,
// and returns them sorted by score descending. The sort is stable so
// equal-scored papers keep their collection order.
func (s *Scorer) FilterAndScore(papers []types.PaperRecord, minScore float64) []types.PaperRecord {
	kept := make([]types.PaperRecord, 0, len(papers))
	for _, p := range papers {
		score, matched := s.Score(p)
		p.RelevanceScore = score
		p.MatchedKeywords = matched
		if score >= minScore {
			kept = append(kept, p)
		} else {
			s.log.Debug().Str("stage", "relevance").Str("title", truncateTitle(p.Title)).
				Float64("score", score).Msg("below threshold")
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})

	s.log.Info().Str("stage", "relevance").Int("scored", len(papers)).
		Int("relevant", len(kept)).Float64("min_score", minScore).Msg("scoring complete")
	return kept
}

func truncateTitle(title string) string {
	if len(title) > 60 {
		return strings.TrimSpace(title[:60]) + "..."
	}
	return title
}
