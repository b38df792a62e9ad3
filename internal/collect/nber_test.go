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

const nberFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>NBER New Working Papers</title>
    <item>
      <title>Carbon Pricing and Industrial Competitiveness</title>
      <link>https://www.nber.org/papers/w33124</link>
      <description>&lt;p&gt;We examine how carbon &lt;b&gt;pricing&lt;/b&gt; affects trade-exposed industries.&lt;/p&gt;</description>
      <dc:creator>Erin Frank, Grace Hall</dc:creator>
      <pubDate>Mon, 20 Jan 2025 05:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Not a Working Paper</title>
      <link>https://www.nber.org/news/some-announcement</link>
      <description>Announcement text.</description>
      <pubDate>Tue, 21 Jan 2025 05:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestNBERFetchRecent_ParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(nberFixture))
	}))
	defer server.Close()

	oldURL := nberFeedURL
	nberFeedURL = server.URL
	defer func() { nberFeedURL = oldURL }()

	c := &NBERCollector{
		Client:    &http.Client{Timeout: 5 * time.Second},
		UserAgent: "research-digest-test",
		Log:       zerolog.Nop(),
	}

	papers, err := c.FetchRecent(context.Background(), 24*time.Hour, 10)
	require.NoError(t, err)

	// The announcement item has no paper number and is dropped.
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "Carbon Pricing and Industrial Competitiveness", p.Title)
	assert.Equal(t, "We examine how carbon pricing affects trade-exposed industries.", p.Abstract)
	assert.Equal(t, []string{"Erin Frank", "Grace Hall"}, p.Authors)
	assert.Equal(t, "https://www.nber.org/papers/w33124", p.URL)
	assert.Equal(t, "https://www.nber.org/system/files/working_papers/w33124/w33124.pdf", p.PDFURL)
	assert.Equal(t, types.SourceNBER, p.Source)
	assert.Equal(t, "w33124", p.SourceID)
	assert.Equal(t, "2025-01-20", p.PublishedDate)
	assert.Equal(t, []string{"NBER Working Paper"}, p.Categories)
}

func TestNBERFetchRecent_RespectsMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nberFixture))
	}))
	defer server.Close()

	oldURL := nberFeedURL
	nberFeedURL = server.URL
	defer func() { nberFeedURL = oldURL }()

	c := &NBERCollector{Client: server.Client(), Log: zerolog.Nop()}
	papers, err := c.FetchRecent(context.Background(), 24*time.Hour, 1)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

func TestNBERFetchRecent_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	oldURL := nberFeedURL
	nberFeedURL = server.URL
	defer func() { nberFeedURL = oldURL }()

	c := &NBERCollector{Client: server.Client(), Log: zerolog.Nop()}
	_, err := c.FetchRecent(context.Background(), 24*time.Hour, 10)
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("<div><p>plain</p> <em>text</em></div>"))
	assert.Equal(t, "", stripHTML(""))
	assert.Equal(t, "no markup here", stripHTML("no markup here"))
}

func TestNBERPDFURL(t *testing.T) {
	assert.Equal(t,
		"https://www.nber.org/system/files/working_papers/w33124/w33124.pdf",
		nberPDFURL("https://www.nber.org/papers/w33124"))
	assert.Equal(t, "", nberPDFURL("https://www.nber.org/news/x"))
}
