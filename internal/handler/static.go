package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// contentType maps a file extension to a MIME type, falling back to the
// system table and then to application/octet-stream.
func contentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := mimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// StaticHandler serves files under root. "/" maps to index.html. Missing
// files and directories are 404, any other stat or read failure is 500.
// Paths that would leave root are treated as missing.
func StaticHandler(root string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "405 Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		name, ok := resolve(r.URL.Path)
		if !ok {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}

		full := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(full)
		if err == nil && info.IsDir() {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}
		var data []byte
		if err == nil {
			data, err = os.ReadFile(full)
		}
		if err != nil {
			if notFound(err) {
				http.Error(w, "404 Not Found", http.StatusNotFound)
				return
			}
			slog.Error("read static file", "path", full, "error", err)
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType(name))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(data)
	})
}

// notFound reports whether err means the file is absent. A path running
// through a regular file counts as absent too.
func notFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// resolve turns a request path into a slash-separated path relative to the
// content root.
func resolve(p string) (string, bool) {
	if strings.Contains(p, "\x00") || strings.Contains(p, "\\") {
		return "", false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", false
		}
	}
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "index.html", true
	}
	return strings.TrimPrefix(clean, "/"), true
}
