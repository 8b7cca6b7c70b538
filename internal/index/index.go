package index

import (
	"context"

	"github.com/starford/codeboost/internal/models"
)

// ContentIndex is the query surface the site builder, API and MCP tools rely on.
type ContentIndex interface {
	UpsertContent(n *models.ContentNode) error
	DeleteContent(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	GetBySlug(ctx context.Context, slug string) (*models.ContentNode, error)
	GetByPath(ctx context.Context, path string) (*models.ContentNode, error)
	Query(ctx context.Context, q ContentQuery) ([]*models.ContentNode, error)
	Count(ctx context.Context, q ContentQuery) (int, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ ContentIndex = (*DB)(nil)
