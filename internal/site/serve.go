package site

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Handler serves a built output directory. Unknown paths get 404.html with
// a 404 status when the build produced one.
func Handler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exists(dir, r.URL.Path) {
			files.ServeHTTP(w, r)
			return
		}
		body, err := os.ReadFile(filepath.Join(dir, "404.html"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(body)
	})
}

// exists reports whether urlPath names a file, or a directory holding an
// index.html, under dir.
func exists(dir, urlPath string) bool {
	clean := path.Clean("/" + urlPath)
	abs := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	info, err := os.Stat(abs)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	_, err = os.Stat(filepath.Join(abs, "index.html"))
	return err == nil
}
