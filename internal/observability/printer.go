// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jordan/content-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSession outputs a human-readable summary of an analysis session.
func (p *Printer) PrintSession(session *types.AnalysisSession) {
	if session == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keyword:  %s\n", session.Keyword))
	sb.WriteString(fmt.Sprintf("Scope:    %s / %s\n", session.Location, session.Language))
	sb.WriteString(fmt.Sprintf("Target words: %d-%d\n", session.Benchmarks.WordCount.Min, session.Benchmarks.WordCount.Max))

	if len(session.Competitors) > 0 {
		sb.WriteString("\nCompetitors:\n")
		count := min(len(session.Competitors), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := session.Competitors[i]
			sb.WriteString(fmt.Sprintf("  %d. %s\n", c.Position, c.Title))
		}
	}

	p.printBox(fmt.Sprintf("Analysis %s", session.ID), sb.String())
}

// PrintBreakdown outputs a human-readable summary of a content breakdown.
func (p *Printer) PrintBreakdown(breakdown *types.ContentBreakdown) {
	if breakdown == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %.1f / 100\n\n", breakdown.Total))

	for _, cat := range breakdown.Categories {
		sb.WriteString(fmt.Sprintf("%-24s %5.1f  (weight %.2f)\n", cat.Label, cat.Score, cat.Weight))
	}

	if len(breakdown.MissingTerms) > 0 {
		count := min(len(breakdown.MissingTerms), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("\nMissing terms: %s\n", strings.Join(breakdown.MissingTerms[:count], ", ")))
	}
	if len(breakdown.Actionable) > 0 {
		sb.WriteString("\nNext steps:\n")
		count := min(len(breakdown.Actionable), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", breakdown.Actionable[i]))
		}
	}

	p.printBox("Content Score", sb.String())
}

// PrintBundle outputs a human-readable summary of a suggestion bundle.
func (p *Printer) PrintBundle(bundle *types.SuggestionBundle) {
	if bundle == nil || bundle.IsEmpty() {
		return
	}

	var sb strings.Builder
	if len(bundle.Headings) > 0 {
		sb.WriteString("Headings:\n")
		for _, h := range bundle.Headings {
			sb.WriteString(fmt.Sprintf("  • %s\n", h))
		}
	}
	if len(bundle.FAQs) > 0 {
		sb.WriteString("FAQs:\n")
		for _, q := range bundle.FAQs {
			sb.WriteString(fmt.Sprintf("  • %s\n", q))
		}
	}
	if len(bundle.MissingTerms) > 0 {
		sb.WriteString(fmt.Sprintf("Terms: %s\n", strings.Join(bundle.MissingTerms, ", ")))
	}

	p.printBox("Suggestions", sb.String())
}

// PrintDocumentMeta outputs the document's meta title and description, so
// metadata rewrites are visible alongside the content they accompany.
func (p *Printer) PrintDocumentMeta(doc types.DocumentState) {
	if doc.MetaTitle == "" && doc.MetaDescription == "" {
		return
	}

	var sb strings.Builder
	if doc.MetaTitle != "" {
		sb.WriteString(fmt.Sprintf("Title:       %s\n", doc.MetaTitle))
	}
	if doc.MetaDescription != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", doc.MetaDescription))
	}

	p.printBox("Document Meta", sb.String())
}
