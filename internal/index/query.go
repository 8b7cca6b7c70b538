package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/codeboost/internal/models"
)

// ContentQuery filters and pages a content listing. Zero values mean "no filter".
type ContentQuery struct {
	Kind         models.TemplateKind
	Category     string
	Tag          string
	FeaturedOnly bool
	TrendingOnly bool
	Limit        int
	Skip         int
}

func (q ContentQuery) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.Kind != "" {
		clauses = append(clauses, "template_key = ?")
		args = append(args, string(q.Kind))
	}
	if q.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, q.Category)
	}
	if q.Tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM content_tags t WHERE t.path = content.path AND t.tag = ?)")
		args = append(args, q.Tag)
	}
	if q.FeaturedOnly {
		clauses = append(clauses, "featured = 1")
	}
	if q.TrendingOnly {
		clauses = append(clauses, "trending = 1")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query returns matching nodes ordered by date descending, slug ascending.
func (db *DB) Query(ctx context.Context, q ContentQuery) ([]*models.ContentNode, error) {
	where, args := q.where()
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	args = append(args, limit, skip)

	rows, err := db.conn.QueryContext(ctx, `SELECT `+nodeColumns+` FROM content`+where+
		` ORDER BY date DESC, slug ASC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()

	var out []*models.ContentNode
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("index: query scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: query rows: %w", err)
	}
	return out, nil
}

// Count returns the number of nodes matching q, ignoring Limit and Skip.
func (db *DB) Count(ctx context.Context, q ContentQuery) (int, error) {
	where, args := q.where()
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM content`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
