package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// CreateAdmin inserts an admin account with an already hashed password.
func (s *Store) CreateAdmin(username, passwordHash string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create admin", "username", username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created admin", "id", id, "username", username)
	return id, nil
}

// AdminPasswordHash returns the stored hash for username.
// Returns empty string and nil error if the admin does not exist.
func (s *Store) AdminPasswordHash(username string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM admins WHERE username = ?`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

// AdminCount returns the number of admin accounts.
func (s *Store) AdminCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&count)
	return count, err
}
