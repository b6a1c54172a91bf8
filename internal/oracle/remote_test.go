package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/content-optimizer/internal/types"
)

func TestNewRemote_RequiresBaseURL(t *testing.T) {
	_, err := NewRemote(RemoteConfig{})
	require.Error(t, err)
}

func TestRunAnalysis_EmptyKeywordNeverHitsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RunAnalysis(context.Background(), AnalysisRequest{Keyword: "  \t "})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "keyword", verr.Field)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRunAnalysis_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analysis", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "content marketing", req["keyword"])
		assert.Equal(t, "site-1", req["siteId"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"analysisId": "a1",
			"benchmarks": map[string]any{
				"wordCount": map[string]any{"min": 1200, "max": 2400, "average": 1800},
			},
			"competitors": []map[string]any{
				{"position": 1, "url": "https://example.com", "title": "Example", "wordCount": 2100},
			},
			"nlpTerms": map[string]any{
				"topTerms":  []map[string]any{{"term": "editorial calendar", "score": 0.9}},
				"questions": []string{"what is content marketing?"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL, APIKey: "secret", SiteID: "site-1"})
	require.NoError(t, err)

	session, err := client.RunAnalysis(context.Background(), AnalysisRequest{
		Keyword:           "content marketing",
		Location:          "United States",
		Language:          "en",
		SecondaryKeywords: []string{"blog seo"},
	})
	require.NoError(t, err)

	assert.Equal(t, "a1", session.ID)
	assert.Equal(t, "content marketing", session.Keyword)
	assert.Equal(t, 1200, session.Benchmarks.WordCount.Min)
	require.Len(t, session.Competitors, 1)
	assert.Equal(t, "editorial calendar", session.NLPTerms.TopTerms[0].Term)
}

func TestRunAnalysis_MissingAnalysisID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"benchmarks": map[string]any{}})
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RunAnalysis(context.Background(), AnalysisRequest{Keyword: "espresso"})
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
}

func TestScoreContent_RequiresAnalysisID(t *testing.T) {
	client, err := NewRemote(RemoteConfig{BaseURL: "http://localhost:0"})
	require.NoError(t, err)

	_, err = client.ScoreContent(context.Background(), ScoreRequest{})
	var perr *PreconditionError
	require.ErrorAs(t, err, &perr)
}

func TestScoreContent_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/score", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a1", req["analysisId"])
		assert.Equal(t, "<p>short</p>", req["contentHtml"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"seoScore": 37.5,
			"breakdown": map[string]any{
				"total": 37.5,
				"categories": []map[string]any{
					{"id": "terms", "label": "Term coverage", "score": 20, "weight": 0.4, "reasons": []string{"missing core terms"}},
				},
				"missingTerms": []string{"editorial calendar"},
				"metrics":      map[string]any{"wordCount": 2},
			},
		})
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	breakdown, err := client.ScoreContent(context.Background(), ScoreRequest{
		AnalysisID: "a1",
		Document:   types.DocumentState{ContentHTML: "<p>short</p>", PrimaryKeyword: "content marketing"},
	})
	require.NoError(t, err)

	assert.Equal(t, 37.5, breakdown.Total)
	require.Len(t, breakdown.Categories, 1)
	assert.Equal(t, "terms", breakdown.Categories[0].ID)
	assert.Equal(t, []string{"editorial calendar"}, breakdown.MissingTerms)
	assert.Equal(t, 2, breakdown.Metrics.WordCount)
}

func TestRequestSuggestions_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/suggestions", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// missingTerms is always present, even when empty.
		_, ok := req["missingTerms"]
		assert.True(t, ok)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"headings":             []string{"Why it matters"},
			"faqs":                 []string{"How long does it take?"},
			"paragraphSuggestions": []string{"A paragraph."},
			"missingTerms":         []string{"editorial calendar"},
		})
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	bundle, err := client.RequestSuggestions(context.Background(), SuggestionRequest{AnalysisID: "a1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Why it matters"}, bundle.Headings)
	assert.False(t, bundle.IsEmpty())
}

func TestPost_ForwardsOracleErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "serp provider unavailable"})
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RunAnalysis(context.Background(), AnalysisRequest{Keyword: "espresso"})
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, http.StatusBadGateway, oerr.StatusCode)
	assert.Equal(t, "serp provider unavailable", oerr.UserMessage())
}

func TestPost_GenericFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RunAnalysis(context.Background(), AnalysisRequest{Keyword: "espresso"})
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.NotEmpty(t, oerr.UserMessage())
}

func TestPost_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client, err := NewRemote(RemoteConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RunAnalysis(context.Background(), AnalysisRequest{Keyword: "espresso"})
	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
}
