package store

import (
	"database/sql"
	"errors"
)

const (
	importKeyPrefix = "import:"
	uploadKeyPrefix = "upload:"
)

// SetMetadata upserts a key-value pair in the app_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// DeleteMetadata removes a key. Missing keys are not an error.
func (s *Store) DeleteMetadata(key string) error {
	_, err := s.db.Exec(`DELETE FROM app_metadata WHERE key = ?`, key)
	return err
}

// GetImportedFileHash returns the content hash recorded for a bank file, or "".
func (s *Store) GetImportedFileHash(path string) (string, error) {
	return s.GetMetadata(importKeyPrefix + path)
}

// SetImportedFileHash records the content hash of an imported bank file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	return s.SetMetadata(importKeyPrefix+path, hash)
}

// UploadHash returns the content hash of the last upload stored under bank
// id, or "".
func (s *Store) UploadHash(id string) (string, error) {
	return s.GetMetadata(uploadKeyPrefix + id)
}

// SetUploadHash records the content hash of an uploaded bank.
func (s *Store) SetUploadHash(id, hash string) error {
	return s.SetMetadata(uploadKeyPrefix+id, hash)
}

// ClearUploadHash forgets the upload record of bank id.
func (s *Store) ClearUploadHash(id string) error {
	return s.DeleteMetadata(uploadKeyPrefix + id)
}
