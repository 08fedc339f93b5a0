package model

import (
	"errors"
	"strings"
)

var (
	// ErrNotConfigured is returned when sampling or starting a session before a bank is selected.
	ErrNotConfigured = errors.New("no question bank selected")
	// ErrBankLoadFailed wraps I/O and parse failures while loading a bank.
	ErrBankLoadFailed = errors.New("question bank load failed")
	// ErrBankNotFound is returned by bank sources for unknown bank IDs.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrInvariant marks a broken internal invariant detected during a tick.
	ErrInvariant = errors.New("game invariant violated")
)

// Difficulty controls enemy speed and the shield escalation policy.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyAdvanced Difficulty = "advanced"
	DifficultyExpert   Difficulty = "expert"
)

// ParseDifficulty maps user input to a Difficulty, falling back to easy.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyAdvanced:
		return DifficultyAdvanced
	case DifficultyExpert:
		return DifficultyExpert
	default:
		return DifficultyEasy
	}
}

// Outcome is the per-question result recorded during a session.
type Outcome string

const (
	OutcomeUnanswered Outcome = "unanswered"
	OutcomeCorrect    Outcome = "correct"
	OutcomeWrong      Outcome = "wrong"
)

// Bank is a named question collection, split into choice and true/false items.
type Bank struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Choice      []Question `json:"choice"`
	TrueFalse   []Question `json:"true_false"`
}

// Count returns the total number of questions in the bank.
func (b Bank) Count() int {
	return len(b.Choice) + len(b.TrueFalse)
}

// Info returns the listing metadata for the bank.
func (b Bank) Info() BankInfo {
	return BankInfo{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Count:       b.Count(),
	}
}

// BankInfo describes a bank without its questions.
type BankInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}
