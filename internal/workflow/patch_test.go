package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/content-optimizer/internal/types"
)

func TestApplyBundle_EmptyBundleIsNoop(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:     "<p>short</p>",
		MetaTitle:       "Old title",
		MetaDescription: "Old description",
		PrimaryKeyword:  "content marketing",
	}

	next, _, applied := ApplyBundle(doc, types.SuggestionBundle{
		Headings:             []string{},
		FAQs:                 []string{},
		ParagraphSuggestions: []string{},
		MissingTerms:         []string{},
	}, nil)

	assert.False(t, applied)
	assert.Equal(t, doc, next)
}

func TestApplyBundle_AppendsHeadingBlock(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:    "<p>short</p>",
		PrimaryKeyword: "content marketing",
	}
	bundle := types.SuggestionBundle{Headings: []string{"Why it matters"}}

	next, snapshot, applied := ApplyBundle(doc, bundle, nil)

	require.True(t, applied)
	assert.True(t, strings.HasPrefix(next.ContentHTML, "<p>short</p>"), "existing content must be preserved")
	assert.Contains(t, next.ContentHTML, "<h2>Why it matters</h2>")
	assert.True(t, strings.HasSuffix(next.ContentHTML, "</div>"), "suggestions are appended as one trailing block")
	assert.Equal(t, "<p>short</p>", snapshot.ContentHTML)
}

func TestApplyBundle_RespectsSectionLimits(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:       "<p>body</p>",
		PrimaryKeyword:    "espresso",
		SecondaryKeywords: []string{"crema", "grind size"},
	}
	bundle := types.SuggestionBundle{
		Headings:             []string{"H1", "H2", "H3", "H4", "H5"},
		FAQs:                 []string{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6"},
		ParagraphSuggestions: []string{"P1", "P2", "P3", "P4"},
		MissingTerms:         []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10"},
	}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)
	block := strings.TrimPrefix(next.ContentHTML, doc.ContentHTML)

	assert.Equal(t, 3, strings.Count(block, "<h2>H"), "at most 3 heading suggestions")
	assert.Equal(t, 4, strings.Count(block, "<h3>Q"), "at most 4 FAQ questions")
	assert.Contains(t, block, "<p>P3</p>")
	assert.NotContains(t, block, "P4")
	assert.Contains(t, block, "t8")
	assert.NotContains(t, block, "t9", "missing-terms callout lists at most 8 terms")
}

func TestApplyBundle_KeywordGuidanceLine(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:       "<p>body</p>",
		PrimaryKeyword:    "espresso",
		SecondaryKeywords: []string{"crema", "tamping", "portafilter", "dose", "yield"},
	}
	bundle := types.SuggestionBundle{MissingTerms: []string{"pressure", "crema"}}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)

	// Up to 4 terms: missing terms first, then secondary keywords, deduplicated.
	assert.Contains(t, next.ContentHTML, "pressure, crema, tamping, portafilter")
	assert.NotContains(t, next.ContentHTML, "dose")
}

func TestApplyBundle_NoGuidanceWithoutPrimaryKeyword(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:       "<p>body</p>",
		SecondaryKeywords: []string{"crema"},
	}
	bundle := types.SuggestionBundle{Headings: []string{"A heading"}}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)
	assert.NotContains(t, next.ContentHTML, "consider working in")
}

func TestApplyBundle_MetaTitleGuard(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:    "<p>body</p>",
		MetaTitle:      "The Complete Guide to Content Marketing in 2026",
		PrimaryKeyword: "Content Marketing",
	}
	bundle := types.SuggestionBundle{Headings: []string{"A heading"}}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)
	assert.Equal(t, doc.MetaTitle, next.MetaTitle, "a title already containing the keyword is left alone")
}

func TestApplyBundle_MetaTitleReplaced(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:       "<p>body</p>",
		MetaTitle:         "Untitled draft",
		PrimaryKeyword:    "content marketing",
		SecondaryKeywords: []string{"blog seo"},
	}
	bundle := types.SuggestionBundle{
		Headings:     []string{"A heading"},
		MissingTerms: []string{"editorial calendar"},
	}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)
	assert.Equal(t, "content marketing | editorial calendar", next.MetaTitle,
		"missing terms rank ahead of extracted terms and secondary keywords")
}

func TestApplyBundle_MetaTitleFallsBackToExtractedTerms(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:    "<p>body</p>",
		MetaTitle:      "Untitled draft",
		PrimaryKeyword: "content marketing",
	}
	bundle := types.SuggestionBundle{Headings: []string{"A heading"}}

	next, _, applied := ApplyBundle(doc, bundle, []string{"https", "div", "audience research"})
	require.True(t, applied)
	assert.Equal(t, "content marketing | audience research", next.MetaTitle,
		"markup artifacts are skipped when picking the supplementary term")
}

func TestApplyBundle_MetaDescriptionRegenerated(t *testing.T) {
	doc := types.DocumentState{
		ContentHTML:     "<p>body</p>",
		MetaDescription: "too short",
		PrimaryKeyword:  "content marketing",
	}
	bundle := types.SuggestionBundle{
		Headings:     []string{"A heading"},
		MissingTerms: []string{"editorial calendar", "distribution", "briefs", "audits"},
	}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)
	assert.Contains(t, next.MetaDescription, "content marketing")
	assert.Contains(t, next.MetaDescription, "editorial calendar")
	assert.LessOrEqual(t, len([]rune(next.MetaDescription)), 165)
}

func TestApplyBundle_MetaDescriptionKeptWhenAdequate(t *testing.T) {
	adequate := strings.Repeat("Great content marketing advice. ", 5) // >110 chars, contains keyword
	doc := types.DocumentState{
		ContentHTML:     "<p>body</p>",
		MetaDescription: adequate,
		PrimaryKeyword:  "content marketing",
	}
	bundle := types.SuggestionBundle{Headings: []string{"A heading"}}

	next, _, applied := ApplyBundle(doc, bundle, nil)
	require.True(t, applied)
	assert.Equal(t, adequate, next.MetaDescription)
}

func TestSupplementaryTerms_Order(t *testing.T) {
	terms := supplementaryTerms(
		[]string{"missing one"},
		[]string{"http", "extracted one"},
		[]string{"secondary one", "missing one"},
	)
	assert.Equal(t, []string{"missing one", "extracted one", "secondary one"}, terms)
}
