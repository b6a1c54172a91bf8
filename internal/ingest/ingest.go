// Package ingest loads a draft article into a DocumentState, either from a
// local HTML file or by fetching and extracting a published page.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jordan/content-optimizer/internal/types"
)

// DefaultTimeout is the default HTTP request timeout for draft fetches.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for draft fetches.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ContentOptimizer/1.0)"

// Options configures draft ingestion.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// UseBrowser renders the page in a headless browser when plain HTTP
	// fetching yields too little content (JavaScript-rendered pages).
	UseBrowser bool
	Verbose    bool
}

// Error represents a failure to ingest a draft.
type Error struct {
	Source  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingest error for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("ingest error for %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// FromFile reads a draft from a local HTML file.
func FromFile(path string) (*types.DocumentState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Source: path, Message: "failed to read file", Cause: err}
	}
	return Extract(string(data))
}

// FromURL fetches a published draft and extracts its body and metadata.
// When opts.UseBrowser is set and the plain fetch yields too little text,
// the page is re-rendered in a headless browser before extraction.
func FromURL(ctx context.Context, rawURL string, opts *Options) (*types.DocumentState, error) {
	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{Source: rawURL, Message: "invalid URL", Cause: err}
	}

	html, err := fetchHTML(ctx, rawURL, timeout, userAgent)
	if err != nil {
		return nil, err
	}

	doc, err := Extract(html)
	if err != nil {
		return nil, err
	}

	if opts.UseBrowser && ShouldUseBrowser(doc.ContentHTML) {
		rendered, berr := renderWithBrowser(ctx, rawURL, timeout, opts.Verbose)
		if berr != nil {
			return nil, &Error{Source: rawURL, Message: "browser rendering failed", Cause: berr}
		}
		return Extract(rendered)
	}

	return doc, nil
}

func fetchHTML(ctx context.Context, rawURL string, timeout time.Duration, userAgent string) (string, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Source: rawURL, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}

// Extract pulls the article body, meta title, and meta description out of a
// page. The body is the inner HTML of the first <article>, falling back to
// <main> and then <body>, with scripts, styles, and navigation chrome
// removed.
func Extract(html string) (*types.DocumentState, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Source: "html", Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}

	description := ""
	if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		description = strings.TrimSpace(meta)
	}

	body := ""
	for _, selector := range []string{"article", "main", "body"} {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if inner, err := selection.Html(); err == nil && strings.TrimSpace(inner) != "" {
			body = strings.TrimSpace(inner)
			break
		}
	}

	return &types.DocumentState{
		ContentHTML:     body,
		MetaTitle:       title,
		MetaDescription: description,
	}, nil
}
