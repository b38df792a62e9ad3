// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// defaultArxivCategories are the categories polled when none are
// configured: economic theory, general economics, game theory, and
// quantitative finance.
var defaultArxivCategories = []string{
	"econ.TH",
	"econ.GN",
	"cs.GT",
	"q-fin.EC",
	"q-fin.GN",
}

// ArxivCollector fetches recent submissions from the arXiv Atom API,
// one query per category.
type ArxivCollector struct {
	Client     *http.Client
	Categories []string
	UserAgent  string
	// Delay is the courtesy pause between category requests.
	Delay time.Duration
	Log   zerolog.Logger
}

// Name returns the source identifier.
func (c *ArxivCollector) Name() string { return string(types.SourceArxiv) }

// FetchRecent queries each configured category sorted by submission date
// and returns the union, deduplicated by arXiv ID (papers cross-listed
// in several categories appear once). A failing category is logged and
// skipped; the remaining categories still contribute.
func (c *ArxivCollector) FetchRecent(ctx context.Context, window time.Duration, maxResults int) ([]types.PaperRecord, error) {
	categories := c.Categories
	if len(categories) == 0 {
		categories = defaultArxivCategories
	}
	if maxResults <= 0 {
		maxResults = 100
	}

	seen := make(map[string]struct{})
	var papers []types.PaperRecord

	for i, category := range categories {
		if i > 0 && c.Delay > 0 {
			time.Sleep(c.Delay)
		}

		batch, err := c.fetchCategory(ctx, category, maxResults)
		if err != nil {
			c.Log.Warn().Str("source", "arxiv").Str("category", category).Err(err).
				Msg("category fetch failed, skipping")
			continue
		}
		for _, p := range batch {
			if _, ok := seen[p.SourceID]; ok {
				continue
			}
			seen[p.SourceID] = struct{}{}
			papers = append(papers, p)
		}
	}

	return papers, nil
}

func (c *ArxivCollector) fetchCategory(ctx context.Context, category string, maxResults int) ([]types.PaperRecord, error) {
	params := url.Values{
		"search_query": {"cat:" + category},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", maxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.PaperRecord
	for _, entry := range feed.Entries {
		p, ok := parseArxivEntry(entry)
		if !ok {
			// Malformed entries are skipped individually; siblings
			// still parse.
			c.Log.Debug().Str("source", "arxiv").Str("entry_id", entry.ID).
				Msg("skipping malformed entry")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// parseArxivEntry maps one Atom entry to a PaperRecord. Entries without
// a title or a resolvable arXiv ID are rejected.
func parseArxivEntry(entry arxivEntry) (types.PaperRecord, bool) {
	p := types.PaperRecord{
		Title:    collapseSpace(entry.Title),
		Abstract: collapseSpace(entry.Summary),
		Source:   types.SourceArxiv,
	}

	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}

	for _, link := range entry.Links {
		switch {
		case strings.Contains(link.Href, "/abs/"):
			p.URL = link.Href
			p.SourceID = link.Href[strings.Index(link.Href, "/abs/")+len("/abs/"):]
		case link.Type == "application/pdf":
			p.PDFURL = link.Href
		}
	}

	if len(entry.Published) >= 10 {
		p.PublishedDate = entry.Published[:10]
	}

	for _, cat := range entry.Categories {
		if cat.Term != "" {
			p.Categories = append(p.Categories, cat.Term)
		}
	}

	if p.Title == "" || p.SourceID == "" {
		return types.PaperRecord{}, false
	}
	return p, true
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Links      []arxivLink     `xml:"link"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}
