// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks that collected papers still exist at their
// source before they reach scoring. Feeds occasionally carry withdrawn
// or malformed records; a digest must not link to dead pages.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Endpoint bases for per-source existence checks. Declared as vars so
// tests can substitute httptest servers.
var (
	arxivAbsBase      = "https://arxiv.org/abs"
	openAlexWorksBase = "https://api.openalex.org/works"
	doiBase           = "https://doi.org"
)

// defaultConcurrency bounds the validation worker pool.
const defaultConcurrency = 5

// checkTimeout caps a single existence check.
const checkTimeout = 10 * time.Second

// Validator queries source endpoints to confirm papers exist.
type Validator struct {
	Client    *http.Client
	UserAgent string
	// Concurrency is the worker pool size; zero means the default of 5.
	Concurrency int
	// Cache memoizes results across calls. Optional; nil disables caching.
	Cache *Cache
	Log   zerolog.Logger
}

// ValidateBatch checks every paper concurrently through a bounded worker
// pool and returns the papers that exist, preserving input order. A
// check that errors or times out marks the paper invalid rather than
// failing the batch; the reason is logged alongside the exclusion.
func (v *Validator) ValidateBatch(ctx context.Context, papers []types.PaperRecord) []types.PaperRecord {
	if len(papers) == 0 {
		return nil
	}

	concurrency := v.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	valid := make([]bool, len(papers))
	reasons := make([]string, len(papers))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range papers {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			valid[i], reasons[i] = v.check(ctx, papers[i])
		}(i)
	}
	wg.Wait()

	kept := make([]types.PaperRecord, 0, len(papers))
	for i, p := range papers {
		if valid[i] {
			kept = append(kept, p)
		} else {
			v.Log.Debug().Str("stage", "validate").Str("source", string(p.Source)).
				Str("source_id", p.SourceID).Str("reason", reasons[i]).
				Msg("paper failed validation")
		}
	}

	v.Log.Info().Str("stage", "validate").Int("checked", len(papers)).
		Int("valid", len(kept)).Msg("validation complete")
	return kept
}

// check resolves one paper through the cache.
func (v *Validator) check(ctx context.Context, p types.PaperRecord) (bool, string) {
	if v.Cache == nil {
		return v.resolve(ctx, p)
	}
	key := string(p.Source) + ":" + p.SourceID
	return v.Cache.GetOrCompute(key, func() (bool, string) {
		return v.resolve(ctx, p)
	})
}

// resolve dispatches to the source-appropriate existence check and
// returns the verdict plus a human-readable reason.
func (v *Validator) resolve(ctx context.Context, p types.PaperRecord) (bool, string) {
	switch p.Source {
	case types.SourceArxiv:
		if p.SourceID == "" {
			return false, "no arXiv ID provided"
		}
		return v.head(ctx, fmt.Sprintf("%s/%s", arxivAbsBase, p.SourceID), "arXiv paper")
	case types.SourceOpenAlex:
		if p.SourceID == "" {
			return false, "no OpenAlex ID provided"
		}
		return v.get(ctx, fmt.Sprintf("%s/%s", openAlexWorksBase, p.SourceID), "OpenAlex work")
	case types.SourceNBER:
		if p.URL == "" {
			return false, "no NBER URL provided"
		}
		return v.head(ctx, p.URL, "NBER paper")
	}

	// Unknown source: resolve DOIs through the resolver, otherwise hit
	// the landing URL directly.
	if doi, ok := extractDOI(p.URL); ok {
		return v.head(ctx, fmt.Sprintf("%s/%s", doiBase, doi), "DOI")
	}
	if p.URL != "" {
		return v.head(ctx, p.URL, "URL")
	}
	return false, "no URL to check"
}

func (v *Validator) head(ctx context.Context, url, label string) (bool, string) {
	return v.request(ctx, http.MethodHead, url, label)
}

func (v *Validator) get(ctx context.Context, url, label string) (bool, string) {
	return v.request(ctx, http.MethodGet, url, label)
}

func (v *Validator) request(ctx context.Context, method, url, label string) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false, fmt.Sprintf("%s check error: %v", label, err)
	}
	req.Header.Set("User-Agent", v.UserAgent)

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return false, fmt.Sprintf("%s check timeout", label)
		}
		return false, fmt.Sprintf("%s check error: %v", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return true, fmt.Sprintf("%s validated", label)
	}
	return false, fmt.Sprintf("%s not found (status %d)", label, resp.StatusCode)
}

// extractDOI pulls the DOI suffix from a doi.org URL.
func extractDOI(url string) (string, bool) {
	idx := strings.Index(url, "doi.org/")
	if idx < 0 {
		return "", false
	}
	doi := url[idx+len("doi.org/"):]
	if doi == "" {
		return "", false
	}
	return doi, true
}
