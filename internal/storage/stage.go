package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stage creates an empty directory next to target. A build writes the whole
// tree there and then promotes it over target, so target is never seen half
// written.
func Stage(target string) (*FS, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve stage target: %w", err)
	}
	parent := filepath.Dir(abs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create stage parent: %w", err)
	}
	dir, err := os.MkdirTemp(parent, "."+filepath.Base(abs)+".stage-*")
	if err != nil {
		return nil, fmt.Errorf("storage: create stage: %w", err)
	}
	if err := os.Chmod(dir, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("storage: chmod stage: %w", err)
	}
	return NewFS(dir)
}

// Promote moves the tree rooted at f into target's place. An existing target
// is renamed aside first and restored if the swap fails; it is removed once
// the new tree is in place.
func (f *FS) Promote(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("storage: resolve promote target: %w", err)
	}
	if filepath.Dir(abs) != filepath.Dir(f.root) {
		return fmt.Errorf("storage: promote %s: not a sibling of %s", f.root, abs)
	}

	previous := ""
	switch info, err := os.Stat(abs); {
	case err == nil && !info.IsDir():
		return fmt.Errorf("storage: promote: %s is not a directory", abs)
	case err == nil:
		previous = strings.TrimSuffix(f.root, string(os.PathSeparator)) + ".old"
		if err := os.Rename(abs, previous); err != nil {
			return fmt.Errorf("storage: promote: set aside: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("storage: promote: %w", err)
	}

	if err := os.Rename(f.root, abs); err != nil {
		if previous != "" {
			_ = os.Rename(previous, abs)
		}
		return fmt.Errorf("storage: promote: %w", err)
	}
	f.root = abs
	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			return fmt.Errorf("storage: promote: remove previous tree: %w", err)
		}
	}
	return nil
}

// Discard removes a staged tree that will not be promoted.
func (f *FS) Discard() error {
	if err := os.RemoveAll(f.root); err != nil {
		return fmt.Errorf("storage: discard %s: %w", f.root, err)
	}
	return nil
}
