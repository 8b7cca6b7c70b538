package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/storage"
)

// SyncStats summarises one reconciliation pass.
type SyncStats struct {
	Indexed int
	Skipped int
	Removed int
	Failed  []string
}

// Sync walks the content root and brings the index up to date:
//   - new or changed files are loaded and upserted
//   - files removed from disk are deleted from the index
//
// Files that fail to load are logged, counted in Failed and left out.
func Sync(db ContentIndex, store storage.Provider, loader *content.Loader, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats

	metas, err := store.List("")
	if err != nil {
		return stats, fmt.Errorf("index: sync list: %w", err)
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			stats.Skipped++
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Failed = append(stats.Failed, m.Path)
			continue
		}
		if err := indexFile(db, loader, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			stats.Failed = append(stats.Failed, m.Path)
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteContent(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return stats, nil
}

// indexFile loads data into a ContentNode and upserts it.
func indexFile(db ContentIndex, loader *content.Loader, path string, data []byte, updated time.Time) error {
	n, err := loader.Load(path, data, updated)
	if err != nil {
		return err
	}
	return db.UpsertContent(n)
}
