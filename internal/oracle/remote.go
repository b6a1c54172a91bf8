package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jordan/content-optimizer/internal/types"
)

// DefaultTimeout is the default HTTP request timeout for oracle calls.
const DefaultTimeout = 45 * time.Second

// maxErrorBody caps how much of an error response body is read when looking
// for a forwarded oracle message.
const maxErrorBody = 8 << 10

// RemoteConfig configures the HTTP oracle client.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	// SiteID and PostID identify the editing context. They are read-only
	// inputs forwarded with every request.
	SiteID  string
	PostID  string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Remote is the HTTP implementation of Client.
type Remote struct {
	baseURL string
	apiKey  string
	siteID  string
	postID  string
	client  *http.Client
}

// NewRemote creates an HTTP oracle client.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("oracle base URL is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Remote{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		siteID:  cfg.SiteID,
		postID:  cfg.PostID,
		client:  client,
	}, nil
}

type analysisWire struct {
	SiteID            string   `json:"siteId,omitempty"`
	PostID            string   `json:"postId,omitempty"`
	Keyword           string   `json:"keyword"`
	Location          string   `json:"location"`
	Language          string   `json:"language"`
	SecondaryKeywords []string `json:"secondaryKeywords,omitempty"`
}

type scoreWire struct {
	SiteID            string   `json:"siteId,omitempty"`
	PostID            string   `json:"postId,omitempty"`
	AnalysisID        string   `json:"analysisId"`
	ContentHTML       string   `json:"contentHtml"`
	MetaTitle         string   `json:"metaTitle,omitempty"`
	MetaDescription   string   `json:"metaDescription,omitempty"`
	PrimaryKeyword    string   `json:"primaryKeyword,omitempty"`
	SecondaryKeywords []string `json:"secondaryKeywords,omitempty"`
}

type suggestionWire struct {
	SiteID            string   `json:"siteId,omitempty"`
	PostID            string   `json:"postId,omitempty"`
	AnalysisID        string   `json:"analysisId"`
	ContentHTML       string   `json:"contentHtml"`
	PrimaryKeyword    string   `json:"primaryKeyword,omitempty"`
	SecondaryKeywords []string `json:"secondaryKeywords,omitempty"`
	MissingTerms      []string `json:"missingTerms"`
}

// RunAnalysis implements Client.
func (r *Remote) RunAnalysis(ctx context.Context, req AnalysisRequest) (*types.AnalysisSession, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, &ValidationError{Field: "keyword", Message: "a target keyword is required"}
	}

	body := analysisWire{
		SiteID:            r.siteID,
		PostID:            r.postID,
		Keyword:           keyword,
		Location:          req.Location,
		Language:          req.Language,
		SecondaryKeywords: req.SecondaryKeywords,
	}

	var resp struct {
		AnalysisID  string             `json:"analysisId"`
		Benchmarks  types.Benchmarks   `json:"benchmarks"`
		Competitors []types.Competitor `json:"competitors"`
		NLPTerms    types.NLPTerms     `json:"nlpTerms"`
	}
	if err := r.post(ctx, "run analysis", "/v1/analysis", body, &resp); err != nil {
		return nil, err
	}
	if resp.AnalysisID == "" {
		return nil, &OracleError{Op: "run analysis", Message: "response is missing an analysis id"}
	}

	return &types.AnalysisSession{
		ID:                resp.AnalysisID,
		Keyword:           keyword,
		Location:          req.Location,
		Language:          req.Language,
		SecondaryKeywords: append([]string(nil), req.SecondaryKeywords...),
		Benchmarks:        resp.Benchmarks,
		Competitors:       resp.Competitors,
		NLPTerms:          resp.NLPTerms,
	}, nil
}

// ScoreContent implements Client.
func (r *Remote) ScoreContent(ctx context.Context, req ScoreRequest) (*types.ContentBreakdown, error) {
	if req.AnalysisID == "" {
		return nil, &PreconditionError{Message: "scoring requires an active analysis; run an analysis first"}
	}

	body := scoreWire{
		SiteID:            r.siteID,
		PostID:            r.postID,
		AnalysisID:        req.AnalysisID,
		ContentHTML:       req.Document.ContentHTML,
		MetaTitle:         req.Document.MetaTitle,
		MetaDescription:   req.Document.MetaDescription,
		PrimaryKeyword:    req.Document.PrimaryKeyword,
		SecondaryKeywords: req.Document.SecondaryKeywords,
	}

	var resp struct {
		SEOScore  float64                `json:"seoScore"`
		Breakdown types.ContentBreakdown `json:"breakdown"`
	}
	if err := r.post(ctx, "score content", "/v1/score", body, &resp); err != nil {
		return nil, err
	}

	breakdown := resp.Breakdown
	if breakdown.Total == 0 && resp.SEOScore != 0 {
		breakdown.Total = resp.SEOScore
	}
	return &breakdown, nil
}

// RequestSuggestions implements Client.
func (r *Remote) RequestSuggestions(ctx context.Context, req SuggestionRequest) (*types.SuggestionBundle, error) {
	if req.AnalysisID == "" {
		return nil, &PreconditionError{Message: "suggestions require an active analysis; run an analysis first"}
	}

	missing := req.MissingTerms
	if missing == nil {
		missing = []string{}
	}
	body := suggestionWire{
		SiteID:            r.siteID,
		PostID:            r.postID,
		AnalysisID:        req.AnalysisID,
		ContentHTML:       req.Document.ContentHTML,
		PrimaryKeyword:    req.Document.PrimaryKeyword,
		SecondaryKeywords: req.Document.SecondaryKeywords,
		MissingTerms:      missing,
	}

	var bundle types.SuggestionBundle
	if err := r.post(ctx, "request suggestions", "/v1/suggestions", body, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// post sends a JSON request and decodes the JSON response, converting every
// failure mode into an *OracleError.
func (r *Remote) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &OracleError{Op: op, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &OracleError{Op: op, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &OracleError{Op: op, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &OracleError{Op: op, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &OracleError{Op: op, Message: "malformed response", Cause: err}
	}
	return nil
}

// readErrorMessage extracts a human-readable message from an error response
// body. The oracle reports errors as {"error": "..."} or {"message": "..."}.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err == nil {
		if wire.Error != "" {
			return wire.Error
		}
		if wire.Message != "" {
			return wire.Message
		}
	}
	return ""
}
