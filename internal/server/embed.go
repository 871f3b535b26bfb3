package server

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed ui
var uiFS embed.FS

// handleStatic serves the embedded status page. Unknown paths outside /api/
// get the page itself.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "no such endpoint")
		return
	}

	subFS, err := fs.Sub(uiFS, "ui")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load UI files")
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	if stat, err := fs.Stat(subFS, name); err != nil || stat.IsDir() {
		name = "index.html"
	}

	http.ServeFileFS(w, r, subFS, name)
}
