package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/codeboost/internal/apperr"
	"github.com/starford/codeboost/internal/models"
)

const nodeColumns = `path, slug, title, date, description, category, tags, template_key,
	video_id, featured_image, featured, trending, body, html, excerpt, toc, checksum, updated_at`

// SearchResult represents one search hit.
type SearchResult struct {
	Path     string `json:"path"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
}

// formatDate stores dates as fixed-width UTC text so they sort lexically.
func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// UpsertContent inserts or replaces a node, its tag rows and FTS entry in one transaction.
func (db *DB) UpsertContent(n *models.ContentNode) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	fm := n.Frontmatter
	tagsJSON, _ := json.Marshal(fm.Tags)
	tocJSON, _ := json.Marshal(n.TOC)
	updated := n.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO content (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			slug           = excluded.slug,
			title          = excluded.title,
			date           = excluded.date,
			description    = excluded.description,
			category       = excluded.category,
			tags           = excluded.tags,
			template_key   = excluded.template_key,
			video_id       = excluded.video_id,
			featured_image = excluded.featured_image,
			featured       = excluded.featured,
			trending       = excluded.trending,
			body           = excluded.body,
			html           = excluded.html,
			excerpt        = excluded.excerpt,
			toc            = excluded.toc,
			checksum       = excluded.checksum,
			updated_at     = excluded.updated_at
	`, n.SourcePath, n.Slug, fm.Title, formatDate(fm.Date), fm.Description, fm.Category,
		string(tagsJSON), string(fm.TemplateKey), fm.VideoID, fm.FeaturedImage, fm.Featured,
		fm.Trending, n.Body, n.RenderedBody, n.Excerpt, string(tocJSON), n.Checksum, updated)
	if err != nil {
		return fmt.Errorf("index: upsert content: %w", err)
	}

	if err := ftsUpsert(tx, n); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM content_tags WHERE path = ?`, n.SourcePath); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(fm.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO content_tags (path, tag, position) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for i, tag := range fm.Tags {
			if _, err := stmt.Exec(n.SourcePath, tag, i); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteContent removes a node, its tags and FTS entry.
func (db *DB) DeleteContent(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM content_tags WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM content WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete content: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a path, or "" if it is not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM content WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed node.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM content`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// GetBySlug returns the node with the given slug.
func (db *DB) GetBySlug(ctx context.Context, slug string) (*models.ContentNode, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM content WHERE slug = ? LIMIT 1`, slug)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return n, err
}

// GetByPath returns the node indexed from the given source path.
func (db *DB) GetByPath(ctx context.Context, path string) (*models.ContentNode, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM content WHERE path = ?`, path)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(s rowScanner) (*models.ContentNode, error) {
	var (
		n                    models.ContentNode
		date, tags, kind, toc string
	)
	err := s.Scan(&n.SourcePath, &n.Slug, &n.Frontmatter.Title, &date, &n.Frontmatter.Description,
		&n.Frontmatter.Category, &tags, &kind, &n.Frontmatter.VideoID, &n.Frontmatter.FeaturedImage,
		&n.Frontmatter.Featured, &n.Frontmatter.Trending, &n.Body, &n.RenderedBody, &n.Excerpt,
		&toc, &n.Checksum, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("index: decode date %q: %w", date, err)
		}
		n.Frontmatter.Date = t
	}
	n.Frontmatter.TemplateKey = models.ParseTemplateKind(kind)
	n.Frontmatter.Tags = []string{}
	if err := json.Unmarshal([]byte(tags), &n.Frontmatter.Tags); err != nil {
		return nil, fmt.Errorf("index: decode tags: %w", err)
	}
	if n.Frontmatter.Tags == nil {
		n.Frontmatter.Tags = []string{}
	}
	if err := json.Unmarshal([]byte(toc), &n.TOC); err != nil {
		return nil, fmt.Errorf("index: decode toc: %w", err)
	}
	return &n, nil
}
