// Package storage defines the file-system abstraction shared by the content
// root and the build output directory.
package storage

import "github.com/starford/codeboost/internal/models"

// Provider is the interface for file operations relative to a root directory.
type Provider interface {
	// Root returns the absolute root directory.
	Root() string
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.SourceMetadata, error)
	// ListAll returns the relative path of every regular file under dir.
	ListAll(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

var _ Provider = (*FS)(nil)
