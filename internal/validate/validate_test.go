// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func newValidator(client *http.Client) *Validator {
	return &Validator{
		Client:    client,
		UserAgent: "research-digest-test",
		Cache:     NewCache(),
		Log:       zerolog.Nop(),
	}
}

func TestValidateBatch_FiltersMissingPapers(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		// IDs ending in "bad" do not exist.
		if len(r.URL.Path) > 3 && r.URL.Path[len(r.URL.Path)-3:] == "bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	oldArxiv, oldOpenAlex := arxivAbsBase, openAlexWorksBase
	arxivAbsBase = server.URL + "/abs"
	openAlexWorksBase = server.URL + "/works"
	defer func() { arxivAbsBase, openAlexWorksBase = oldArxiv, oldOpenAlex }()

	var papers []types.PaperRecord
	for i := 0; i < 5; i++ {
		papers = append(papers, types.PaperRecord{
			Title: fmt.Sprintf("arXiv %d", i), Source: types.SourceArxiv,
			SourceID: fmt.Sprintf("2501.%d", i),
		})
	}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("W%d", i)
		if i >= 2 {
			id += "bad"
		}
		papers = append(papers, types.PaperRecord{
			Title: fmt.Sprintf("OpenAlex %d", i), Source: types.SourceOpenAlex, SourceID: id,
		})
	}

	v := newValidator(server.Client())
	kept := v.ValidateBatch(context.Background(), papers)

	require.Len(t, kept, 7)
	assert.Equal(t, int64(10), atomic.LoadInt64(&calls))
	assert.Equal(t, 10, v.Cache.Len())

	// Input order is preserved across the worker pool.
	assert.Equal(t, "arXiv 0", kept[0].Title)
	assert.Equal(t, "OpenAlex 1", kept[6].Title)

	// A second pass over the same batch is served from the cache.
	kept = v.ValidateBatch(context.Background(), papers)
	require.Len(t, kept, 7)
	assert.Equal(t, int64(10), atomic.LoadInt64(&calls))
}

func TestValidateBatch_NBERChecksLandingURL(t *testing.T) {
	var gotPath string
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v := newValidator(server.Client())
	kept := v.ValidateBatch(context.Background(), []types.PaperRecord{
		{Title: "WP", Source: types.SourceNBER, SourceID: "w33124", URL: server.URL + "/papers/w33124"},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "/papers/w33124", gotPath)
	assert.Equal(t, http.MethodHead, gotMethod)
}

func TestValidateBatch_DOIResolution(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	oldDOI := doiBase
	doiBase = server.URL
	defer func() { doiBase = oldDOI }()

	v := newValidator(server.Client())
	kept := v.ValidateBatch(context.Background(), []types.PaperRecord{
		{Title: "Journal Article", Source: "ssrn", URL: "https://doi.org/10.1000/xyz123"},
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "/10.1000/xyz123", gotPath)
}

func TestValidateBatch_UnreachableHostIsInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	v := newValidator(&http.Client{Timeout: time.Second})
	kept := v.ValidateBatch(context.Background(), []types.PaperRecord{
		{Title: "Gone", Source: "web", URL: serverURL + "/paper"},
	})

	assert.Empty(t, kept)
}

func TestValidateBatch_EmptyInput(t *testing.T) {
	v := newValidator(http.DefaultClient)
	assert.Nil(t, v.ValidateBatch(context.Background(), nil))
}

func TestValidateBatch_NoURLNoSourceIsInvalid(t *testing.T) {
	v := newValidator(http.DefaultClient)
	kept := v.ValidateBatch(context.Background(), []types.PaperRecord{
		{Title: "Orphan", Source: "unknown"},
	})
	assert.Empty(t, kept)
}

func TestCache_GetOrCompute(t *testing.T) {
	c := NewCache()
	computed := 0

	valid, reason := c.GetOrCompute("arxiv:1", func() (bool, string) {
		computed++
		return true, "arXiv paper validated"
	})
	assert.True(t, valid)
	assert.Equal(t, "arXiv paper validated", reason)

	valid, reason = c.GetOrCompute("arxiv:1", func() (bool, string) {
		computed++
		return false, "should not run"
	})
	assert.True(t, valid, "cached verdict wins")
	assert.Equal(t, "arXiv paper validated", reason, "cached reason wins")
	assert.Equal(t, 1, computed)
	assert.Equal(t, 1, c.Len())
}

func TestCheck_ReasonSurvivesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	oldArxiv := arxivAbsBase
	arxivAbsBase = server.URL + "/abs"
	defer func() { arxivAbsBase = oldArxiv }()

	v := newValidator(server.Client())
	paper := types.PaperRecord{Title: "Gone", Source: types.SourceArxiv, SourceID: "2501.404"}

	valid, reason := v.check(context.Background(), paper)
	assert.False(t, valid)
	assert.Equal(t, "arXiv paper not found (status 404)", reason)

	// The second check is served from the cache with the same reason.
	server.Close()
	valid, reason = v.check(context.Background(), paper)
	assert.False(t, valid)
	assert.Equal(t, "arXiv paper not found (status 404)", reason)
	assert.Equal(t, 1, v.Cache.Len())
}

func TestResolve_EmptyInputReasons(t *testing.T) {
	v := newValidator(http.DefaultClient)

	_, reason := v.resolve(context.Background(), types.PaperRecord{Source: types.SourceArxiv})
	assert.Equal(t, "no arXiv ID provided", reason)

	_, reason = v.resolve(context.Background(), types.PaperRecord{Source: types.SourceOpenAlex})
	assert.Equal(t, "no OpenAlex ID provided", reason)

	_, reason = v.resolve(context.Background(), types.PaperRecord{Source: types.SourceNBER})
	assert.Equal(t, "no NBER URL provided", reason)

	_, reason = v.resolve(context.Background(), types.PaperRecord{Source: "unknown"})
	assert.Equal(t, "no URL to check", reason)
}

func TestExtractDOI(t *testing.T) {
	doi, ok := extractDOI("https://doi.org/10.1000/xyz")
	require.True(t, ok)
	assert.Equal(t, "10.1000/xyz", doi)

	_, ok = extractDOI("https://example.com/paper")
	assert.False(t, ok)

	_, ok = extractDOI("https://doi.org/")
	assert.False(t, ok)
}
