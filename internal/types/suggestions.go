package types

// SuggestionBundle holds oracle-authored fixes for the current document.
// A bundle is consumed immediately by patch application or discarded; it is
// never persisted.
type SuggestionBundle struct {
	Headings             []string `json:"headings,omitempty"`
	FAQs                 []string `json:"faqs,omitempty"`
	ParagraphSuggestions []string `json:"paragraphSuggestions,omitempty"`
	MissingTerms         []string `json:"missingTerms,omitempty"`
}

// IsEmpty reports whether the bundle carries no suggestions at all.
func (b SuggestionBundle) IsEmpty() bool {
	return len(b.Headings) == 0 &&
		len(b.FAQs) == 0 &&
		len(b.ParagraphSuggestions) == 0 &&
		len(b.MissingTerms) == 0
}
