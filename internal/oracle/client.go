package oracle

import (
	"context"

	"github.com/jordan/content-optimizer/internal/types"
)

// AnalysisRequest asks the oracle to benchmark a keyword against the
// current search results for a location and language.
type AnalysisRequest struct {
	Keyword           string   `json:"keyword"`
	Location          string   `json:"location"`
	Language          string   `json:"language"`
	SecondaryKeywords []string `json:"secondaryKeywords,omitempty"`
}

// ScoreRequest asks the oracle to score a document snapshot against an
// existing analysis session.
type ScoreRequest struct {
	AnalysisID string
	Document   types.DocumentState
}

// SuggestionRequest asks the oracle for AI-authored fixes scoped to an
// analysis session and the current missing-term set.
type SuggestionRequest struct {
	AnalysisID   string
	Document     types.DocumentState
	MissingTerms []string
}

// Client is the boundary to the external scoring/suggestion service. All
// three calls are idempotent from the caller's perspective; deduplication
// and staleness handling belong to the workflow, not to implementations.
type Client interface {
	// RunAnalysis performs a SERP lookup and returns a fresh analysis
	// session. It fails with *ValidationError on an empty keyword before
	// any network round-trip is attempted.
	RunAnalysis(ctx context.Context, req AnalysisRequest) (*types.AnalysisSession, error)

	// ScoreContent scores a document snapshot against the session
	// identified by req.AnalysisID. Callers always pass the current
	// session id explicitly; it fails with *PreconditionError when the id
	// is empty.
	ScoreContent(ctx context.Context, req ScoreRequest) (*types.ContentBreakdown, error)

	// RequestSuggestions returns AI-authored fixes for the document. It is
	// side-effect-free on the document and fails with *PreconditionError
	// when req.AnalysisID is empty.
	RequestSuggestions(ctx context.Context, req SuggestionRequest) (*types.SuggestionBundle, error)
}
