package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// spaFileServer serves the embedded board client, falling back to index.html
// for any path that doesn't match a real file. Unknown /api paths still 404
// so API clients never receive HTML.
func spaFileServer(assets fs.FS) http.Handler {
	fileServer := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasPrefix(path, "api/") {
			http.NotFound(w, r)
			return
		}
		if path == "" {
			path = "index.html"
		}

		if _, err := fs.Stat(assets, path); err != nil {
			r.URL.Path = "/"
		}

		fileServer.ServeHTTP(w, r)
	})
}
