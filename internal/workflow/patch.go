package workflow

import (
	"fmt"
	"strings"

	"github.com/jordan/content-optimizer/internal/types"
)

const (
	maxGuidanceTerms    = 4
	maxHeadings         = 3
	maxParagraphs       = 3
	maxFAQs             = 4
	maxCalloutTerms     = 8
	maxDescriptionTerms = 3

	minDescriptionLength = 110
	maxDescriptionLength = 165

	titleSeparator = " | "
)

// markupArtifacts are extracted-term tokens that come from page markup
// rather than page language. They never qualify as supplementary terms.
var markupArtifacts = map[string]bool{
	"http": true, "https": true, "www": true, "com": true, "html": true,
	"href": true, "src": true, "img": true, "div": true, "span": true,
	"class": true, "style": true, "css": true, "javascript": true,
	"amp": true, "nbsp": true, "quot": true, "lt": true, "gt": true,
	"px": true, "wp": true,
}

// ApplyBundle merges a suggestion bundle into the document, returning the
// new state and the undo snapshot captured before mutation. When the bundle
// is entirely empty no mutation occurs, no snapshot is taken, and applied is
// false; callers treat that as a no-op, not a failure.
//
// The content mutation appends a single structural block to the end of the
// existing content; it never rewrites what the author already wrote.
// extractedTerms are the benchmark's top extracted terms, used only as a
// fallback source for metadata supplementary terms.
func ApplyBundle(doc types.DocumentState, bundle types.SuggestionBundle, extractedTerms []string) (types.DocumentState, types.UndoSnapshot, bool) {
	if bundle.IsEmpty() {
		return doc, types.UndoSnapshot{}, false
	}

	snapshot := types.UndoSnapshot{
		ContentHTML:     doc.ContentHTML,
		MetaTitle:       doc.MetaTitle,
		MetaDescription: doc.MetaDescription,
	}

	next := doc.Clone()
	next.ContentHTML = doc.ContentHTML + buildSuggestionBlock(doc, bundle)

	supplementary := supplementaryTerms(bundle.MissingTerms, extractedTerms, doc.SecondaryKeywords)
	next.MetaTitle = adjustMetaTitle(doc.MetaTitle, doc.PrimaryKeyword, supplementary)
	next.MetaDescription = adjustMetaDescription(doc.MetaDescription, doc.PrimaryKeyword, supplementary)

	return next, snapshot, true
}

// buildSuggestionBlock composes the appended block: keyword guidance,
// heading suggestions, paragraph suggestions, an FAQ section, and a
// missing-terms callout. Steps with no source material are omitted.
func buildSuggestionBlock(doc types.DocumentState, bundle types.SuggestionBundle) string {
	var b strings.Builder
	b.WriteString("\n<div>\n")

	if strings.TrimSpace(doc.PrimaryKeyword) != "" {
		guidance := dedupeTerms(append(append([]string(nil), bundle.MissingTerms...), doc.SecondaryKeywords...), maxGuidanceTerms)
		if len(guidance) > 0 {
			fmt.Fprintf(&b, "<p><em>To strengthen coverage of %q, consider working in: %s.</em></p>\n",
				doc.PrimaryKeyword, strings.Join(guidance, ", "))
		}
	}

	for _, heading := range capList(bundle.Headings, maxHeadings) {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", heading)
		fmt.Fprintf(&b, "<p>Write a section here that covers %q in depth, using your primary keyword naturally.</p>\n", heading)
	}

	for _, para := range capList(bundle.ParagraphSuggestions, maxParagraphs) {
		if strings.HasPrefix(strings.TrimSpace(para), "<") {
			b.WriteString(para)
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "<p>%s</p>\n", para)
		}
	}

	if faqs := capList(bundle.FAQs, maxFAQs); len(faqs) > 0 {
		b.WriteString("<h2>Frequently Asked Questions</h2>\n")
		for _, q := range faqs {
			fmt.Fprintf(&b, "<h3>%s</h3>\n", q)
			fmt.Fprintf(&b, "<p>Answer this question in two or three direct sentences based on your own experience.</p>\n")
		}
	}

	if terms := capList(bundle.MissingTerms, maxCalloutTerms); len(terms) > 0 {
		fmt.Fprintf(&b, "<p><strong>Terms to include:</strong> %s</p>\n", strings.Join(terms, ", "))
	}

	b.WriteString("</div>")
	return b.String()
}

// adjustMetaTitle replaces the title with the primary keyword plus the top
// supplementary term, but only when the title does not already contain the
// keyword (case-insensitive).
func adjustMetaTitle(title, primaryKeyword string, supplementary []string) string {
	keyword := strings.TrimSpace(primaryKeyword)
	if keyword == "" {
		return title
	}
	if strings.Contains(strings.ToLower(title), strings.ToLower(keyword)) {
		return title
	}
	if len(supplementary) > 0 {
		return keyword + titleSeparator + supplementary[0]
	}
	return keyword
}

// adjustMetaDescription regenerates the description when it is too short or
// does not mention the primary keyword. The result is hard-truncated to
// maxDescriptionLength characters.
func adjustMetaDescription(description, primaryKeyword string, supplementary []string) string {
	keyword := strings.TrimSpace(primaryKeyword)
	if keyword == "" {
		return description
	}
	longEnough := len([]rune(description)) >= minDescriptionLength
	hasKeyword := strings.Contains(strings.ToLower(description), strings.ToLower(keyword))
	if longEnough && hasKeyword {
		return description
	}

	terms := capList(supplementary, maxDescriptionTerms)
	var generated string
	if len(terms) > 0 {
		generated = fmt.Sprintf("Learn everything you need to know about %s, including %s. A practical guide with benchmarks from top-ranking pages.",
			keyword, joinNatural(terms))
	} else {
		generated = fmt.Sprintf("Learn everything you need to know about %s. A practical guide with benchmarks from top-ranking pages.", keyword)
	}

	runes := []rune(generated)
	if len(runes) > maxDescriptionLength {
		return string(runes[:maxDescriptionLength])
	}
	return generated
}

// supplementaryTerms ranks candidate metadata terms: oracle-reported missing
// terms first, then benchmark extracted terms with markup artifacts removed,
// then secondary keywords. The result is deduplicated, keyword-distinct
// order preserved.
func supplementaryTerms(missingTerms, extractedTerms, secondaryKeywords []string) []string {
	candidates := make([]string, 0, len(missingTerms)+len(extractedTerms)+len(secondaryKeywords))
	candidates = append(candidates, missingTerms...)
	for _, term := range extractedTerms {
		if !markupArtifacts[strings.ToLower(strings.TrimSpace(term))] {
			candidates = append(candidates, term)
		}
	}
	candidates = append(candidates, secondaryKeywords...)
	return dedupeTerms(candidates, len(candidates))
}

// dedupeTerms drops blank and duplicate terms (case-insensitive) preserving
// first-seen order, capped at limit.
func dedupeTerms(terms []string, limit int) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, limit)
	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func capList(items []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// joinNatural joins terms as "a, b, and c".
func joinNatural(terms []string) string {
	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	case 2:
		return terms[0] + " and " + terms[1]
	default:
		return strings.Join(terms[:len(terms)-1], ", ") + ", and " + terms[len(terms)-1]
	}
}
