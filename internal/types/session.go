// Package types provides type definitions for structured data used throughout the content-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// AnalysisSession holds the identity and benchmark payload produced by a SERP
// lookup for one (keyword, location, language, secondary keywords) tuple.
// A session is created only by a successful analysis run, is never mutated in
// place, and is replaced wholesale by a later run.
type AnalysisSession struct {
	ID                string       `json:"analysisId"`
	Keyword           string       `json:"keyword"`
	Location          string       `json:"location"`
	Language          string       `json:"language"`
	SecondaryKeywords []string     `json:"secondaryKeywords,omitempty"`
	Benchmarks        Benchmarks   `json:"benchmarks"`
	Competitors       []Competitor `json:"competitors,omitempty"`
	NLPTerms          NLPTerms     `json:"nlpTerms"`
}

// Benchmarks holds the target ranges derived from the top-ranking competitors.
type Benchmarks struct {
	WordCount      BenchmarkRange `json:"wordCount"`
	HeadingCount   BenchmarkRange `json:"headingCount"`
	InternalLinks  BenchmarkRange `json:"internalLinks"`
	ExternalLinks  BenchmarkRange `json:"externalLinks"`
	ImageCount     BenchmarkRange `json:"imageCount"`
	SentenceLength BenchmarkRange `json:"sentenceLength"`
}

// BenchmarkRange is a target range for a single document metric.
type BenchmarkRange struct {
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Average float64 `json:"average,omitempty"`
}

// Competitor is a snapshot of one ranking search result.
type Competitor struct {
	Position  int     `json:"position"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	WordCount int     `json:"wordCount,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// NLPTerms holds term extraction results for the analyzed keyword space.
type NLPTerms struct {
	TopTerms        []TermScore `json:"topTerms,omitempty"`
	SemanticPhrases []TermScore `json:"semanticPhrases,omitempty"`
	Questions       []string    `json:"questions,omitempty"`
}

// TermScore is a term with its relevance score.
type TermScore struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}
