package suggest

import (
	"context"

	"github.com/jordan/content-optimizer/internal/oracle"
	"github.com/jordan/content-optimizer/internal/types"
)

// Client decorates a base oracle client, answering suggestion requests with
// the Gemini generator while delegating analysis and scoring to the remote
// oracle unchanged.
type Client struct {
	oracle.Client
	gen *Generator
}

// WithGenerator wraps base so suggestion requests are served locally.
func WithGenerator(base oracle.Client, gen *Generator) *Client {
	return &Client{Client: base, gen: gen}
}

// RequestSuggestions implements oracle.Client.
func (c *Client) RequestSuggestions(ctx context.Context, req oracle.SuggestionRequest) (*types.SuggestionBundle, error) {
	if req.AnalysisID == "" {
		return nil, &oracle.PreconditionError{Message: "suggestions require an active analysis; run an analysis first"}
	}
	return c.gen.Generate(ctx, req)
}
