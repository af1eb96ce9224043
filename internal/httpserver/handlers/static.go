package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// Static serves the built front end from dir. Paths that do not name a file
// fall back to index.html so client-side routes survive a reload. An empty
// dir serves plain 404s.
func Static(dir string) http.Handler {
	if dir == "" {
		return http.HandlerFunc(http.NotFound)
	}
	root := os.DirFS(dir)
	files := http.FileServerFS(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "."
		}
		if info, err := fs.Stat(root, name); err == nil && (!info.IsDir() || hasIndex(root, name)) {
			files.ServeHTTP(w, r)
			return
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !hasIndex(root, ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, r, root, "index.html")
	})
}

func hasIndex(root fs.FS, dir string) bool {
	_, err := fs.Stat(root, path.Join(dir, "index.html"))
	return err == nil
}
