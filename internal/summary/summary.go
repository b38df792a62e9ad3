// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary produces short paper synopses and a digest
// introduction through the Anthropic API, with a deterministic
// extractive fallback when the API is unconfigured or unavailable.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/pkg/types"
)

const (
	// summaryMaxTokens bounds the model response per paper.
	summaryMaxTokens = 200

	// abstractPromptLimit caps how much abstract goes into the prompt.
	abstractPromptLimit = 1500

	// fallbackMaxLen caps the extractive fallback summary.
	fallbackMaxLen = 300

	// introPaperLimit is how many top papers inform the introduction.
	introPaperLimit = 15
)

// Summarizer generates paper summaries. With no API key it runs in
// fallback-only mode.
type Summarizer struct {
	Model string
	Log   zerolog.Logger

	// create issues one Messages request. Swappable in tests.
	create func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// NewSummarizer builds a Summarizer. An empty apiKey disables the API
// and every summary uses the extractive fallback.
func NewSummarizer(apiKey, model string, log zerolog.Logger) *Summarizer {
	s := &Summarizer{Model: model, Log: log}
	if apiKey == "" {
		log.Warn().Str("stage", "summary").Msg("no API key configured, using extractive summaries")
		return s
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	s.create = func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
		return client.Messages.New(ctx, params)
	}
	return s
}

// Summarize produces a 2-3 sentence synopsis for one paper. API errors
// degrade to the extractive fallback, never to a missing summary.
func (s *Summarizer) Summarize(ctx context.Context, p types.PaperRecord) string {
	if s.create == nil {
		return fallbackSummary(p.Abstract)
	}

	abstract := p.Abstract
	if len(abstract) > abstractPromptLimit {
		abstract = abstract[:abstractPromptLimit]
	}
	prompt := fmt.Sprintf(
		"Summarize this research paper in 2-3 sentences for an economist's daily digest. Focus on the question asked and the main finding.\n\nTitle: %s\n\nAbstract: %s",
		p.Title, abstract)

	text, err := s.complete(ctx, prompt)
	if err != nil {
		s.Log.Warn().Str("stage", "summary").Str("source_id", p.SourceID).Err(err).
			Msg("API summary failed, falling back")
		return fallbackSummary(p.Abstract)
	}
	return text
}

// SummarizeBatch summarizes the first maxPapers papers in place and
// returns the batch. Papers beyond the cap keep an empty summary; the
// digest renders their abstract instead.
func (s *Summarizer) SummarizeBatch(ctx context.Context, papers []types.PaperRecord, maxPapers int) []types.PaperRecord {
	for i := range papers {
		if i >= maxPapers {
			break
		}
		papers[i].Summary = s.Summarize(ctx, papers[i])
	}

	n := len(papers)
	if maxPapers < n {
		n = maxPapers
	}
	s.Log.Info().Str("stage", "summary").Int("summarized", n).
		Int("papers", len(papers)).Msg("summarization complete")
	return papers
}

// GenerateIntro writes a short introduction for the digest from the top
// papers' topics. Without an API key, or on error, it falls back to a
// one-line count.
func (s *Summarizer) GenerateIntro(ctx context.Context, papers []types.PaperRecord, period types.Period) string {
	topics := groupByTopic(papers)

	if s.create != nil {
		var lines []string
		for topic, titles := range topics {
			lines = append(lines, fmt.Sprintf("- %s: %s", topic, strings.Join(titles, "; ")))
		}
		prompt := fmt.Sprintf(
			"Write a 2-3 sentence introduction for a %s research digest covering these papers, grouped by topic:\n\n%s\n\nBe specific about the themes. Do not list paper titles.",
			period, strings.Join(lines, "\n"))

		text, err := s.complete(ctx, prompt)
		if err == nil {
			return text
		}
		s.Log.Warn().Str("stage", "summary").Err(err).Msg("API intro failed, falling back")
	}

	if len(topics) <= 1 {
		return fmt.Sprintf("Found %d relevant papers.", len(papers))
	}
	return fmt.Sprintf("Found %d relevant papers across %d topic areas.", len(papers), len(topics))
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := s.create(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.Model),
		MaxTokens: summaryMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API request: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("Anthropic API returned empty content")
	}
	return strings.TrimSpace(msg.Content[0].Text), nil
}

// groupByTopic buckets the top papers by their first matched keyword.
// Papers with no matches land in "General".
func groupByTopic(papers []types.PaperRecord) map[string][]string {
	topics := make(map[string][]string)
	for i, p := range papers {
		if i >= introPaperLimit {
			break
		}
		topic := "General"
		if len(p.MatchedKeywords) > 0 {
			topic = p.MatchedKeywords[0]
		}
		topics[topic] = append(topics[topic], p.Title)
	}
	return topics
}

// fallbackSummary extracts the first two sentences of the abstract. Used
// whenever the API is unconfigured or fails.
func fallbackSummary(abstract string) string {
	if strings.TrimSpace(abstract) == "" {
		return "No abstract available."
	}

	sentences := strings.Split(abstract, ". ")
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	out := strings.Join(sentences, ". ")
	if len(out) > fallbackMaxLen {
		out = out[:fallbackMaxLen-3] + "..."
	}
	return out + "."
}
