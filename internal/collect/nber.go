// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// nberFeedURL is the NBER new-working-papers RSS feed. Declared as a var
// so tests can substitute an httptest server.
var nberFeedURL = "https://www.nber.org/rss/new.xml"

// nberIDPattern extracts the working paper number from a landing URL
// such as https://www.nber.org/papers/w33124.
var nberIDPattern = regexp.MustCompile(`/papers/w(\d+)`)

// NBERCollector fetches new working papers from the NBER RSS feed. The
// feed is a single document; window and maxResults only trim the result.
type NBERCollector struct {
	Client    *http.Client
	UserAgent string
	Log       zerolog.Logger
}

// Name returns the source identifier.
func (c *NBERCollector) Name() string { return string(types.SourceNBER) }

// FetchRecent downloads the feed once and returns its items as
// PaperRecords, capped at maxResults. Items without a title or a paper
// number are skipped.
func (c *NBERCollector) FetchRecent(ctx context.Context, window time.Duration, maxResults int) ([]types.PaperRecord, error) {
	if maxResults <= 0 {
		maxResults = 100
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nberFeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("NBER feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NBER feed returned HTTP %d", resp.StatusCode)
	}

	var feed nberFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing NBER feed: %w", err)
	}

	var papers []types.PaperRecord
	for _, item := range feed.Channel.Items {
		if len(papers) >= maxResults {
			break
		}
		p, ok := parseNBERItem(item)
		if !ok {
			c.Log.Debug().Str("source", "nber").Str("link", item.Link).
				Msg("skipping malformed item")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// parseNBERItem maps one RSS item to a PaperRecord. The paper number is
// taken from the link; items without one are rejected.
func parseNBERItem(item nberItem) (types.PaperRecord, bool) {
	title := collapseSpace(item.Title)
	if title == "" {
		return types.PaperRecord{}, false
	}

	m := nberIDPattern.FindStringSubmatch(item.Link)
	if m == nil {
		return types.PaperRecord{}, false
	}

	p := types.PaperRecord{
		Title:      title,
		Abstract:   stripHTML(item.Description),
		URL:        item.Link,
		PDFURL:     nberPDFURL(item.Link),
		Source:     types.SourceNBER,
		SourceID:   "w" + m[1],
		Categories: []string{"NBER Working Paper"},
	}

	if author := collapseSpace(item.Creator); author != "" {
		p.Authors = strings.Split(author, ", ")
	}

	// RSS pubDate looks like "Mon, 02 Jan 2006 15:04:05 GMT"; the date
	// portion is the first 16 characters.
	if len(item.PubDate) >= 16 {
		if t, err := time.Parse("Mon, 02 Jan 2006", strings.TrimSpace(item.PubDate[:16])); err == nil {
			p.PublishedDate = t.Format("2006-01-02")
		}
	}

	return p, true
}

// nberPDFURL derives the direct PDF location from the landing page URL.
// NBER serves the file at the same path under /system/files/working_papers/.
func nberPDFURL(link string) string {
	m := nberIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://www.nber.org/system/files/working_papers/w%s/w%s.pdf", m[1], m[1])
}

// stripHTML reduces an HTML fragment to its text content. Feed
// descriptions wrap the abstract in markup.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return collapseSpace(doc.Text())
}

// NBER RSS feed XML structures.
type nberFeed struct {
	Channel nberChannel `xml:"channel"`
}

type nberChannel struct {
	Items []nberItem `xml:"item"`
}

type nberItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Creator     string `xml:"creator"`
	PubDate     string `xml:"pubDate"`
}
