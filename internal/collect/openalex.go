// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// openAlexAPIBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

const (
	// openAlexAbstractMax bounds reconstructed abstracts.
	openAlexAbstractMax = 2000

	// openAlexMaxAuthors caps the author list per work.
	openAlexMaxAuthors = 10

	// openAlexMaxConcepts caps topic labels per work.
	openAlexMaxConcepts = 5

	// Only the first few configured concepts and journals are polled per
	// run to keep the request count down.
	openAlexConceptLimit = 3
	openAlexJournalLimit = 10

	// openAlexMinWindow is the lookback floor.
	openAlexMinWindow = 7 * 24 * time.Hour
)

// defaultOpenAlexConcepts are OpenAlex concept IDs for economics,
// mechanism design, auction theory, energy/environmental economics, and
// industrial organization.
var defaultOpenAlexConcepts = []string{
	"C162324750",
	"C10138342",
	"C107457646",
	"C2776384193",
	"C39549134",
	"C175444787",
}

// defaultOpenAlexJournals are the monitored journal display names.
var defaultOpenAlexJournals = []string{
	"American Economic Review",
	"Quarterly Journal of Economics",
	"Econometrica",
	"Review of Economic Studies",
	"Journal of Political Economy",
	"Journal of Economic Theory",
	"Theoretical Economics",
	"Games and Economic Behavior",
	"Economic Theory",
	"RAND Journal of Economics",
	"Journal of Industrial Economics",
	"International Journal of Industrial Organization",
	"Journal of Economics and Management Strategy",
	"Energy Economics",
	"The Energy Journal",
	"Energy Policy",
	"Journal of Environmental Economics and Management",
	"Environmental and Resource Economics",
	"Resource and Energy Economics",
	"Utilities Policy",
}

// OpenAlexCollector fetches recent works from the OpenAlex REST API in
// two passes: by concept ID and by journal name.
type OpenAlexCollector struct {
	Client    *http.Client
	UserAgent string
	// Email is sent as mailto parameter for polite pool access.
	Email    string
	Concepts []string
	Journals []string
	// Delay is the courtesy pause between sub-requests.
	Delay time.Duration
	Log   zerolog.Logger
}

// Name returns the source identifier.
func (c *OpenAlexCollector) Name() string { return string(types.SourceOpenAlex) }

// FetchRecent queries recent works published inside the window, first by
// concept and then by journal, and returns the union deduplicated by
// OpenAlex work ID. Sub-request failures are logged and skipped.
func (c *OpenAlexCollector) FetchRecent(ctx context.Context, window time.Duration, maxResults int) ([]types.PaperRecord, error) {
	if maxResults <= 0 {
		maxResults = 100
	}
	// OpenAlex indexes journal publications days after they appear, so a
	// one-day window would return almost nothing. Look back at least a week.
	if window < openAlexMinWindow {
		window = openAlexMinWindow
	}

	to := time.Now()
	from := to.Add(-window)
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")

	var all []types.PaperRecord
	all = append(all, c.fetchByConcepts(ctx, fromDate, toDate, maxResults/2)...)
	all = append(all, c.fetchFromJournals(ctx, fromDate, toDate, maxResults/2)...)

	seen := make(map[string]struct{}, len(all))
	var papers []types.PaperRecord
	for _, p := range all {
		if _, ok := seen[p.SourceID]; ok {
			continue
		}
		seen[p.SourceID] = struct{}{}
		papers = append(papers, p)
	}
	return papers, nil
}

func (c *OpenAlexCollector) fetchByConcepts(ctx context.Context, fromDate, toDate string, maxResults int) []types.PaperRecord {
	concepts := c.Concepts
	if len(concepts) == 0 {
		concepts = defaultOpenAlexConcepts
	}
	if len(concepts) > openAlexConceptLimit {
		concepts = concepts[:openAlexConceptLimit]
	}

	perPage := maxResults / openAlexConceptLimit
	if perPage > 50 {
		perPage = 50
	}
	if perPage < 1 {
		perPage = 1
	}

	var papers []types.PaperRecord
	for i, conceptID := range concepts {
		if i > 0 && c.Delay > 0 {
			time.Sleep(c.Delay)
		}

		filter := fmt.Sprintf("concepts.id:%s,from_publication_date:%s,to_publication_date:%s",
			conceptID, fromDate, toDate)
		batch, err := c.fetchWorks(ctx, filter, perPage)
		if err != nil {
			c.Log.Warn().Str("source", "openalex").Str("concept", conceptID).Err(err).
				Msg("concept fetch failed, skipping")
			continue
		}
		papers = append(papers, batch...)
	}
	return papers
}

func (c *OpenAlexCollector) fetchFromJournals(ctx context.Context, fromDate, toDate string, maxResults int) []types.PaperRecord {
	journals := c.Journals
	if len(journals) == 0 {
		journals = defaultOpenAlexJournals
	}

	perJournal := maxResults / len(journals)
	if perJournal < 5 {
		perJournal = 5
	}
	if len(journals) > openAlexJournalLimit {
		journals = journals[:openAlexJournalLimit]
	}

	var papers []types.PaperRecord
	for i, journal := range journals {
		if i > 0 && c.Delay > 0 {
			time.Sleep(c.Delay)
		}

		filter := fmt.Sprintf("primary_location.source.display_name.search:%s,from_publication_date:%s,to_publication_date:%s",
			journal, fromDate, toDate)
		batch, err := c.fetchWorks(ctx, filter, perJournal)
		if err != nil {
			c.Log.Warn().Str("source", "openalex").Str("journal", journal).Err(err).
				Msg("journal fetch failed, skipping")
			continue
		}
		papers = append(papers, batch...)
	}
	return papers
}

func (c *OpenAlexCollector) fetchWorks(ctx context.Context, filter string, perPage int) ([]types.PaperRecord, error) {
	params := url.Values{
		"filter":   {filter},
		"sort":     {"publication_date:desc"},
		"per_page": {fmt.Sprintf("%d", perPage)},
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	// DoWithRetry retries timed-out requests; OpenAlex is slow under load.
	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var papers []types.PaperRecord
	for _, work := range oar.Results {
		p, ok := parseOpenAlexWork(work)
		if !ok {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// parseOpenAlexWork maps one OpenAlex work to a PaperRecord. Works
// without a title are rejected.
func parseOpenAlexWork(work openAlexWork) (types.PaperRecord, bool) {
	if work.Title == "" {
		return types.PaperRecord{}, false
	}

	p := types.PaperRecord{
		Title:         work.Title,
		Abstract:      truncate(reconstructAbstract(work.AbstractInvertedIndex), openAlexAbstractMax),
		Source:        types.SourceOpenAlex,
		SourceID:      strings.TrimPrefix(work.ID, "https://openalex.org/"),
		PublishedDate: work.PublicationDate,
		PDFURL:        work.OpenAccess.OAURL,
	}

	// Prefer the DOI URL as the landing page; it survives OpenAlex
	// record churn.
	if work.DOI != "" {
		p.URL = work.DOI
	} else {
		p.URL = work.ID
	}

	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName == "" {
			continue
		}
		p.Authors = append(p.Authors, authorship.Author.DisplayName)
		if len(p.Authors) >= openAlexMaxAuthors {
			break
		}
	}

	for _, concept := range work.Concepts {
		if concept.DisplayName == "" {
			continue
		}
		p.Categories = append(p.Categories, concept.DisplayName)
		if len(p.Categories) >= openAlexMaxConcepts {
			break
		}
	}

	if name := work.PrimaryLocation.Source.DisplayName; name != "" {
		p.Categories = append([]string{"Journal: " + name}, p.Categories...)
	}

	if p.SourceID == "" {
		return types.PaperRecord{}, false
	}
	return p, true
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears; sorting all (position, word) pairs ascending and joining with
// spaces restores the original order.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	Concepts              []openAlexConcept    `json:"concepts"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}
