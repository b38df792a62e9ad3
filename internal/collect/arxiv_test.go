// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2501.12345v1</id>
    <title>Auction Design for
      Capacity Markets</title>
    <summary>We study auction mechanisms
      for procuring generation capacity.</summary>
    <published>2025-01-20T18:00:00Z</published>
    <author><name>Alice Smith</name></author>
    <author><name>Bob Jones</name></author>
    <link href="http://arxiv.org/abs/2501.12345v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2501.12345v1" rel="related" type="application/pdf"/>
    <category term="econ.TH"/>
    <category term="cs.GT"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2501.99999v1</id>
    <title></title>
    <summary>An entry with no title.</summary>
    <published>2025-01-21T18:00:00Z</published>
  </entry>
</feed>`

func newArxivCollector() *ArxivCollector {
	return &ArxivCollector{
		Client:     &http.Client{Timeout: 5 * time.Second},
		Categories: []string{"econ.TH"},
		UserAgent:  "research-digest-test",
		Log:        zerolog.Nop(),
	}
}

func TestArxivFetchRecent_ParsesFeed(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(arxivFixture))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	c := newArxivCollector()
	papers, err := c.FetchRecent(context.Background(), 24*time.Hour, 10)
	require.NoError(t, err)

	assert.Equal(t, "cat:econ.TH", gotQuery)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Auction Design for Capacity Markets", p.Title)
	assert.Equal(t, "We study auction mechanisms for procuring generation capacity.", p.Abstract)
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, p.Authors)
	assert.Equal(t, "http://arxiv.org/abs/2501.12345v1", p.URL)
	assert.Equal(t, "http://arxiv.org/pdf/2501.12345v1", p.PDFURL)
	assert.Equal(t, types.SourceArxiv, p.Source)
	assert.Equal(t, "2501.12345v1", p.SourceID)
	assert.Equal(t, "2025-01-20", p.PublishedDate)
	assert.Equal(t, []string{"econ.TH", "cs.GT"}, p.Categories)
}

func TestArxivFetchRecent_DedupesAcrossCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivFixture))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	c := newArxivCollector()
	c.Categories = []string{"econ.TH", "cs.GT"}

	papers, err := c.FetchRecent(context.Background(), 24*time.Hour, 10)
	require.NoError(t, err)

	// The same entry comes back for both categories but appears once.
	assert.Len(t, papers, 1)
}

func TestArxivFetchRecent_SkipsFailingCategory(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(arxivFixture))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	c := newArxivCollector()
	c.Categories = []string{"econ.GN", "econ.TH"}

	papers, err := c.FetchRecent(context.Background(), 24*time.Hour, 10)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestArxivFetchRecent_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	c := newArxivCollector()
	papers, err := c.FetchRecent(context.Background(), 24*time.Hour, 10)

	// All categories failed; the collector reports an empty batch, not
	// an error, so siblings in CollectAll still run.
	require.NoError(t, err)
	assert.Empty(t, papers)
}
