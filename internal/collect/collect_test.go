// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

type stubCollector struct {
	name   string
	papers []types.PaperRecord
	err    error
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) FetchRecent(ctx context.Context, window time.Duration, maxResults int) ([]types.PaperRecord, error) {
	return s.papers, s.err
}

func TestDedupe_KeepsFirstOccurrence(t *testing.T) {
	papers := []types.PaperRecord{
		{Title: "Capacity Markets and Reliability", Source: types.SourceArxiv, SourceID: "2501.00001"},
		{Title: "  capacity markets AND Reliability  ", Source: types.SourceOpenAlex, SourceID: "W123"},
		{Title: "A Different Paper", Source: types.SourceNBER, SourceID: "w33124"},
	}

	unique := Dedupe(papers)

	require.Len(t, unique, 2)
	assert.Equal(t, types.SourceArxiv, unique[0].Source)
	assert.Equal(t, "A Different Paper", unique[1].Title)
}

func TestDedupe_TruncatesKeyAt100(t *testing.T) {
	prefix := ""
	for len(prefix) < 100 {
		prefix += "x"
	}

	papers := []types.PaperRecord{
		{Title: prefix + " variant one", SourceID: "a"},
		{Title: prefix + " variant two", SourceID: "b"},
	}

	// Both titles share the first 100 characters, so they collapse.
	unique := Dedupe(papers)
	require.Len(t, unique, 1)
	assert.Equal(t, "a", unique[0].SourceID)
}

func TestDedupe_Idempotent(t *testing.T) {
	papers := []types.PaperRecord{
		{Title: "One", SourceID: "1"},
		{Title: "one", SourceID: "2"},
		{Title: "Two", SourceID: "3"},
	}

	once := Dedupe(papers)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupe_PreservesOrder(t *testing.T) {
	papers := []types.PaperRecord{
		{Title: "Gamma", SourceID: "1"},
		{Title: "Alpha", SourceID: "2"},
		{Title: "Beta", SourceID: "3"},
	}

	unique := Dedupe(papers)
	require.Len(t, unique, 3)
	assert.Equal(t, "Gamma", unique[0].Title)
	assert.Equal(t, "Alpha", unique[1].Title)
	assert.Equal(t, "Beta", unique[2].Title)
}

func TestCollectAll_SkipsFailingSource(t *testing.T) {
	good := &stubCollector{
		name: "arxiv",
		papers: []types.PaperRecord{
			{Title: "Paper A", Source: types.SourceArxiv, SourceID: "1"},
		},
	}
	bad := &stubCollector{name: "nber", err: errors.New("connection refused")}

	papers := CollectAll(context.Background(), []Collector{good, bad}, 24*time.Hour, 10, zerolog.Nop())

	require.Len(t, papers, 1)
	assert.Equal(t, "Paper A", papers[0].Title)
}

func TestCollectAll_MergesAndDedupes(t *testing.T) {
	a := &stubCollector{
		name: "arxiv",
		papers: []types.PaperRecord{
			{Title: "Shared Title", Source: types.SourceArxiv, SourceID: "1"},
			{Title: "Only arXiv", Source: types.SourceArxiv, SourceID: "2"},
		},
	}
	b := &stubCollector{
		name: "openalex",
		papers: []types.PaperRecord{
			{Title: "shared title", Source: types.SourceOpenAlex, SourceID: "W9"},
			{Title: "Only OpenAlex", Source: types.SourceOpenAlex, SourceID: "W10"},
		},
	}

	papers := CollectAll(context.Background(), []Collector{a, b}, 24*time.Hour, 10, zerolog.Nop())

	require.Len(t, papers, 3)
	// The arXiv copy arrives first and wins.
	assert.Equal(t, types.SourceArxiv, papers[0].Source)
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", collapseSpace("  a\n b\t\tc "))
	assert.Equal(t, "", collapseSpace("   "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
