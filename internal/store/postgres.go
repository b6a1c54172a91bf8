package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jordan/content-optimizer/internal/types"
)

// ErrNotFound indicates no document exists for the requested post.
var ErrNotFound = errors.New("post not found")

// Postgres implements Store on a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Load implements Store.
func (s *Postgres) Load(ctx context.Context, postID uuid.UUID) (*types.DocumentState, error) {
	var doc types.DocumentState
	err := s.pool.QueryRow(ctx,
		`SELECT content_html, meta_title, meta_description, primary_keyword, secondary_keywords
		 FROM posts
		 WHERE id = $1`,
		postID,
	).Scan(&doc.ContentHTML, &doc.MetaTitle, &doc.MetaDescription, &doc.PrimaryKeyword, &doc.SecondaryKeywords)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post %s: %w", postID, err)
	}
	return &doc, nil
}

// Save implements Store. It upserts the document under the post id.
func (s *Postgres) Save(ctx context.Context, postID uuid.UUID, doc types.DocumentState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO posts (id, content_html, meta_title, meta_description, primary_keyword, secondary_keywords, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   content_html = $2, meta_title = $3, meta_description = $4,
		   primary_keyword = $5, secondary_keywords = $6, updated_at = NOW()`,
		postID, doc.ContentHTML, doc.MetaTitle, doc.MetaDescription, doc.PrimaryKeyword, doc.SecondaryKeywords,
	)
	if err != nil {
		return fmt.Errorf("failed to save post %s: %w", postID, err)
	}
	return nil
}
