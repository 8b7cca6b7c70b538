package site

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafeOutput is returned when the output directory would swallow a build
// input. A clean build replaces the whole output tree.
var ErrUnsafeOutput = errors.New("site: output directory overlaps a build input")

// outputPath maps a page path to the file that serves it.
//
//	/            -> index.html
//	/go-maps/    -> go-maps/index.html
//	/archive/2   -> archive/2/index.html
//	/404         -> 404.html
func outputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	switch clean {
	case "":
		return "index.html"
	case "404":
		return "404.html"
	}
	return path.Join(clean, "index.html")
}

// CheckOutputDir fails when out is, or is an ancestor of, any of the
// protected paths. Empty entries are ignored.
func CheckOutputDir(out string, protected ...string) error {
	absOut, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("site: resolve output dir: %w", err)
	}
	for _, p := range protected {
		if p == "" {
			continue
		}
		absP, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("site: resolve %s: %w", p, err)
		}
		if within(absOut, absP) {
			return fmt.Errorf("%w: %s contains %s", ErrUnsafeOutput, out, p)
		}
	}
	return nil
}

// within reports whether p is dir or lies below it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
