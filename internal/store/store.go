package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pavelanni/spacequiz/internal/model"

	_ "modernc.org/sqlite"
)

const (
	sectionChoice    = "choice"
	sectionTrueFalse = "true_false"
)

// Store is the SQLite-backed bank repository.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS banks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bank_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bank_id TEXT NOT NULL,
		section TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		data TEXT NOT NULL,
		FOREIGN KEY (bank_id) REFERENCES banks(id)
	);

	CREATE INDEX IF NOT EXISTS idx_bank_questions_bank ON bank_questions(bank_id, section, position);

	CREATE TABLE IF NOT EXISTS app_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertBank stores a bank, replacing any questions previously stored under its ID.
func (s *Store) UpsertBank(ctx context.Context, b model.Bank) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO banks (id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
		   description = excluded.description, updated_at = excluded.updated_at`,
		b.ID, b.Name, b.Description, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert bank %s: %w", b.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bank_questions WHERE bank_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clear questions of %s: %w", b.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bank_questions (bank_id, section, position, kind, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	sections := []struct {
		name      string
		questions []model.Question
	}{
		{sectionChoice, b.Choice},
		{sectionTrueFalse, b.TrueFalse},
	}
	for _, sec := range sections {
		for i, q := range sec.questions {
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %d of %s: %w", i, b.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, b.ID, sec.name, i, q.Kind(), string(data)); err != nil {
				return fmt.Errorf("insert question %d of %s: %w", i, b.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bank %s: %w", b.ID, err)
	}
	slog.Info("stored bank", "id", b.ID, "choice", len(b.Choice), "true_false", len(b.TrueFalse))
	return nil
}

// ListBanks returns every stored bank with its question count, ordered by name.
func (s *Store) ListBanks(ctx context.Context) ([]model.BankInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.description, COUNT(q.id)
		 FROM banks b LEFT JOIN bank_questions q ON q.bank_id = b.id
		 GROUP BY b.id
		 ORDER BY b.name, b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	banks := []model.BankInfo{}
	for rows.Next() {
		var info model.BankInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Description, &info.Count); err != nil {
			return nil, err
		}
		banks = append(banks, info)
	}
	return banks, rows.Err()
}

// LoadBank returns a bank with its questions in stored order.
// Unknown IDs yield an error wrapping model.ErrBankNotFound.
func (s *Store) LoadBank(ctx context.Context, id string) (model.Bank, error) {
	b := model.Bank{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description FROM banks WHERE id = ?`, id,
	).Scan(&b.Name, &b.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bank{}, fmt.Errorf("bank %s: %w", id, model.ErrBankNotFound)
	}
	if err != nil {
		return model.Bank{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT section, data FROM bank_questions WHERE bank_id = ? ORDER BY section, position`, id)
	if err != nil {
		return model.Bank{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var section, data string
		if err := rows.Scan(&section, &data); err != nil {
			return model.Bank{}, err
		}
		var q model.Question
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			return model.Bank{}, fmt.Errorf("decode question of %s: %w", id, err)
		}
		if section == sectionTrueFalse {
			b.TrueFalse = append(b.TrueFalse, q)
		} else {
			b.Choice = append(b.Choice, q)
		}
	}
	return b, rows.Err()
}

// DeleteBank removes a bank and its questions. It reports whether the bank existed.
func (s *Store) DeleteBank(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bank_questions WHERE bank_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM banks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	if n > 0 {
		slog.Info("deleted bank", "id", id)
	}
	return n > 0, nil
}

// BankCount returns the number of stored banks.
func (s *Store) BankCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM banks`).Scan(&count)
	return count, err
}
