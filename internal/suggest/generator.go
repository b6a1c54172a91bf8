// Package suggest provides a Gemini-backed implementation of the suggestion
// contract, for deployments that author heading/FAQ/paragraph fixes locally
// instead of through the remote oracle. Analysis and scoring always stay
// remote.
package suggest

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/option"

	"github.com/jordan/content-optimizer/internal/oracle"
	"github.com/jordan/content-optimizer/internal/types"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

//go:embed suggestion_bundle.schema.json
var bundleSchema string

// Generator authors suggestion bundles with Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Gemini-backed suggestion generator.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Generate authors a suggestion bundle for the document. It is
// side-effect-free on the document.
func (g *Generator) Generate(ctx context.Context, req oracle.SuggestionRequest) (*types.SuggestionBundle, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, &oracle.OracleError{Op: "request suggestions", Message: "suggestion generation failed", Cause: err}
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, &oracle.OracleError{Op: "request suggestions", Message: "empty suggestion response", Cause: err}
	}

	bundle, err := parseBundle(text)
	if err != nil {
		return nil, &oracle.OracleError{Op: "request suggestions", Message: "malformed suggestion response", Cause: err}
	}
	return bundle, nil
}

// buildPrompt assembles the suggestion prompt from the document snapshot and
// the current missing-term set.
func buildPrompt(req oracle.SuggestionRequest) string {
	var b strings.Builder
	b.WriteString("You are an SEO content editor. Given a draft article, suggest additions that close the gap to top-ranking competitors.\n\n")

	if req.Document.PrimaryKeyword != "" {
		fmt.Fprintf(&b, "Primary keyword: %s\n", req.Document.PrimaryKeyword)
	}
	if len(req.Document.SecondaryKeywords) > 0 {
		fmt.Fprintf(&b, "Secondary keywords: %s\n", strings.Join(req.Document.SecondaryKeywords, ", "))
	}
	if len(req.MissingTerms) > 0 {
		fmt.Fprintf(&b, "Terms the draft is missing: %s\n", strings.Join(req.MissingTerms, ", "))
	}

	b.WriteString("\nDraft HTML:\n")
	b.WriteString(req.Document.ContentHTML)

	b.WriteString(`

Respond with JSON only, in this exact shape:
{
  "headings": ["up to 3 new section headings"],
  "faqs": ["up to 4 questions readers ask about this topic"],
  "paragraphSuggestions": ["up to 3 ready-to-use paragraphs"],
  "missingTerms": ["terms from the missing list worth working in"]
}
Do not repeat headings the draft already has. Keep every suggestion specific to the draft's topic.`)

	return b.String()
}

// parseBundle validates the model's JSON against the bundle schema and
// decodes it. Schema validation runs first so shape drift is reported as a
// field-level error rather than a zero-valued bundle.
func parseBundle(text string) (*types.SuggestionBundle, error) {
	cleaned := cleanJSONBlock(text)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(bundleSchema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, fieldErr := range result.Errors() {
			details = append(details, fieldErr.String())
		}
		return nil, fmt.Errorf("suggestion JSON is invalid: %s", strings.Join(details, "; "))
	}

	var bundle types.SuggestionBundle
	if err := json.Unmarshal([]byte(cleaned), &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion JSON: %w", err)
	}
	return &bundle, nil
}

// extractText extracts text from a Gemini API response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
