package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jordan/content-optimizer/internal/types"
)

func TestDocument_UpdateSignalsOnChange(t *testing.T) {
	doc := NewDocument(types.DocumentState{ContentHTML: "<p>a</p>"})

	signals := 0
	doc.Subscribe(func() { signals++ })

	doc.Update(func(d *types.DocumentState) { d.ContentHTML = "<p>b</p>" })
	assert.Equal(t, 1, signals)

	// Writing the same value is not an edit.
	doc.Update(func(d *types.DocumentState) { d.ContentHTML = "<p>b</p>" })
	assert.Equal(t, 1, signals)

	doc.Update(func(d *types.DocumentState) { d.MetaTitle = "title" })
	assert.Equal(t, 2, signals)
}

func TestDocument_SnapshotIsIsolated(t *testing.T) {
	doc := NewDocument(types.DocumentState{
		ContentHTML:       "<p>a</p>",
		SecondaryKeywords: []string{"one"},
	})

	snap := doc.Snapshot()
	snap.ContentHTML = "mutated"
	snap.SecondaryKeywords[0] = "mutated"

	current := doc.Snapshot()
	assert.Equal(t, "<p>a</p>", current.ContentHTML)
	assert.Equal(t, []string{"one"}, current.SecondaryKeywords)
}

func TestDocumentState_Equal(t *testing.T) {
	a := types.DocumentState{ContentHTML: "x", SecondaryKeywords: []string{"k"}}
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.SecondaryKeywords = []string{"other"}
	assert.False(t, a.Equal(b))
}
