package types

// ContentBreakdown is the categorized score report for the current document
// against an analysis session. Every scoring call produces a complete
// breakdown; it is always replaced wholesale, never partially updated.
type ContentBreakdown struct {
	Total         float64         `json:"total"`
	Categories    []CategoryScore `json:"categories"`
	MissingTerms  []string        `json:"missingTerms,omitempty"`
	OverOptimized []string        `json:"overOptimized,omitempty"`
	Actionable    []string        `json:"actionable,omitempty"`
	Metrics       ContentMetrics  `json:"metrics"`
}

// CategoryScore is one weighted scoring category. The ID is stable across
// re-scoring calls for the same session so a display can animate transitions
// without remounting.
type CategoryScore struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Score   float64  `json:"score"`
	Weight  float64  `json:"weight"`
	Reasons []string `json:"reasons,omitempty"`
}

// ContentMetrics holds the raw counts the oracle derived from the document.
type ContentMetrics struct {
	WordCount         int     `json:"wordCount"`
	HeadingCount      int     `json:"headingCount"`
	ParagraphCount    int     `json:"paragraphCount"`
	InternalLinks     int     `json:"internalLinks"`
	ExternalLinks     int     `json:"externalLinks"`
	ImageCount        int     `json:"imageCount"`
	AvgSentenceLength float64 `json:"avgSentenceLength"`
}
