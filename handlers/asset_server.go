package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AssetServer creates a handler serving processed media files from the
// storage root. It expects the request path to carry the path relative to
// that root, e.g. /media/figures/<uuid>.jpg.
func AssetServer(storageRoot, routePrefix string) http.HandlerFunc {
	cleanRoot := filepath.Clean(storageRoot)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)

		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		requestedPath := filepath.Clean(filepath.Join(cleanRoot, relativePath))
		if !strings.HasPrefix(requestedPath, cleanRoot+string(os.PathSeparator)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			log.Printf("SECURITY: asset access outside storage root: Request='%s', Resolved='%s', Allowed Base='%s'",
				r.URL.Path, requestedPath, cleanRoot)
			return
		}

		if _, err := os.Stat(requestedPath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Printf("Error stating asset file %s: %v", requestedPath, err)
			return
		}

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, requestedPath)
	}
}
