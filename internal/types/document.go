package types

// DocumentState is the single mutable document the workflow operates on.
// The surrounding editor owns its persistence; the workflow reads consistent
// snapshots of it and writes to it only through the workflow's single setter.
type DocumentState struct {
	ContentHTML       string   `json:"contentHtml"`
	MetaTitle         string   `json:"metaTitle"`
	MetaDescription   string   `json:"metaDescription"`
	PrimaryKeyword    string   `json:"primaryKeyword"`
	SecondaryKeywords []string `json:"secondaryKeywords,omitempty"`
}

// Clone returns a deep copy of the document state.
func (d DocumentState) Clone() DocumentState {
	out := d
	if d.SecondaryKeywords != nil {
		out.SecondaryKeywords = append([]string(nil), d.SecondaryKeywords...)
	}
	return out
}

// Equal reports whether two document states are field-for-field identical.
func (d DocumentState) Equal(other DocumentState) bool {
	if d.ContentHTML != other.ContentHTML ||
		d.MetaTitle != other.MetaTitle ||
		d.MetaDescription != other.MetaDescription ||
		d.PrimaryKeyword != other.PrimaryKeyword ||
		len(d.SecondaryKeywords) != len(other.SecondaryKeywords) {
		return false
	}
	for i, kw := range d.SecondaryKeywords {
		if kw != other.SecondaryKeywords[i] {
			return false
		}
	}
	return true
}

// UndoSnapshot captures the reversible portion of a document immediately
// before a suggestion patch is applied. At most one snapshot exists at a
// time; applying a new patch overwrites it and undoing consumes it.
type UndoSnapshot struct {
	ContentHTML     string `json:"contentHtml"`
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}
