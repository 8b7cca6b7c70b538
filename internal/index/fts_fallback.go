//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/codeboost/internal/models"
)

func initFTS(_ *sql.DB) error {
	// Without FTS5, search runs LIKE over the content table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ *models.ContentNode) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// Search matches query case-insensitively against title, category, tags and
// description, newest first.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT path, slug, title, category, substr(excerpt, 1, 200)
		FROM content
		WHERE title LIKE ? OR category LIKE ? OR tags LIKE ? OR description LIKE ?
		ORDER BY date DESC, slug ASC
		LIMIT ?
	`, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Slug, &r.Title, &r.Category, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
