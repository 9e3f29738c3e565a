package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Bookmark pairs a user with an external attraction ID. It is the only
// entity the service persists; the tourism data itself is always
// re-fetched upstream.
type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	ContentID string    `json:"contentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for bookmarks.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// AddBookmark creates a bookmark for (user, content). A duplicate insert
// is idempotent success: the uniqueness constraint swallows the insert
// and the existing row is fetched and returned.
func (r *Repository) AddBookmark(ctx context.Context, userID, contentID string) (*Bookmark, error) {
	const insert = `
		INSERT INTO bookmarks (user_id, content_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, content_id) DO NOTHING
		RETURNING id, user_id, content_id, created_at
	`

	var b Bookmark
	err := r.q.QueryRow(ctx, insert, userID, contentID).Scan(&b.ID, &b.UserID, &b.ContentID, &b.CreatedAt)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("inserting bookmark for user %s: %w", userID, err)
	}

	// Conflict path: RETURNING yields no row, fetch the existing one.
	existing, err := r.GetBookmark(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("bookmark for user %s vanished after conflict", userID)
	}
	return existing, nil
}

// GetBookmark retrieves one bookmark. Returns nil, nil when absent.
func (r *Repository) GetBookmark(ctx context.Context, userID, contentID string) (*Bookmark, error) {
	const q = `
		SELECT id, user_id, content_id, created_at
		FROM bookmarks
		WHERE user_id = $1 AND content_id = $2
	`

	var b Bookmark
	err := r.q.QueryRow(ctx, q, userID, contentID).Scan(&b.ID, &b.UserID, &b.ContentID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying bookmark for user %s: %w", userID, err)
	}
	return &b, nil
}

// ListBookmarks returns a user's bookmarks, newest first.
func (r *Repository) ListBookmarks(ctx context.Context, userID string) ([]Bookmark, error) {
	const q = `
		SELECT id, user_id, content_id, created_at
		FROM bookmarks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.ContentID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bookmark row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookmark rows: %w", err)
	}
	return out, nil
}

// DeleteBookmark removes a bookmark and reports whether a row existed.
func (r *Repository) DeleteBookmark(ctx context.Context, userID, contentID string) (bool, error) {
	const q = `DELETE FROM bookmarks WHERE user_id = $1 AND content_id = $2`

	tag, err := r.q.Exec(ctx, q, userID, contentID)
	if err != nil {
		return false, fmt.Errorf("deleting bookmark for user %s: %w", userID, err)
	}
	return tag.RowsAffected() > 0, nil
}
