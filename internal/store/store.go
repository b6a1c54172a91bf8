// Package store persists editing-session documents. The workflow core never
// calls it; the surrounding server decides when to load and save.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/jordan/content-optimizer/internal/types"
)

// Store is the document persistence collaborator: load a post's document
// when an editing session opens, save it when the editor asks to.
type Store interface {
	Load(ctx context.Context, postID uuid.UUID) (*types.DocumentState, error)
	Save(ctx context.Context, postID uuid.UUID, doc types.DocumentState) error
}
