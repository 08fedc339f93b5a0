package handler

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const adminRealm = `Basic realm="spacequiz admin"`

// requireAdmin checks HTTP basic credentials against the stored admin accounts.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username == "" {
			h.unauthorized(w)
			return
		}

		hash, err := h.store.AdminPasswordHash(username)
		if err != nil {
			slog.Error("failed to get admin", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if hash == "" {
			slog.Warn("unknown admin", "username", username)
			h.unauthorized(w)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			slog.Warn("admin password mismatch", "username", username)
			h.unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", adminRealm)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
