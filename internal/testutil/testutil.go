// Package testutil provides shared test helpers for content roots and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "codeboost-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContentRoot creates a temporary content directory with a storage.Provider.
func TestContentRoot(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Post returns a markdown document with the given frontmatter fields.
func Post(title, date, category string, tags ...string) string {
	fm := "---\ntitle: " + title + "\ndate: " + date + "\ncategory: " + category + "\ntags:\n"
	for _, tag := range tags {
		fm += "  - " + tag + "\n"
	}
	return fm + "---\n\n## Intro\n\nBody of " + title + ".\n"
}
