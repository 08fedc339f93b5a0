package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/spacequiz/internal/model"
	"github.com/pavelanni/spacequiz/internal/sampler"
)

// BankSource lists and loads question banks. It is only consulted while
// setting up a session, never during a tick.
type BankSource interface {
	ListBanks(ctx context.Context) ([]model.BankInfo, error)
	LoadBank(ctx context.Context, id string) (model.Bank, error)
}

// Lobby is the idle phase: it holds the bank selection and settings and
// turns them into a running Game.
type Lobby struct {
	source     BankSource
	sampler    *sampler.Sampler
	cfg        Config
	bankID     string
	sampleSize int
	game       *Game
}

// NewLobby returns a lobby drawing banks from source.
func NewLobby(source BankSource, cfg Config) *Lobby {
	cfg = cfg.withDefaults()
	return &Lobby{
		source:  source,
		sampler: sampler.New(cfg.Rand),
		cfg:     cfg,
	}
}

// Banks lists the available banks.
func (l *Lobby) Banks(ctx context.Context) ([]model.BankInfo, error) {
	banks, err := l.source.ListBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	return banks, nil
}

// SelectBank records the bank and sample size for the next Start.
// A sample size <= 0 plays the whole bank.
func (l *Lobby) SelectBank(id string, sampleSize int) {
	id = strings.TrimSpace(id)
	if id != l.bankID {
		l.sampler = sampler.New(l.cfg.Rand)
	}
	l.bankID = id
	l.sampleSize = sampleSize
}

// SetDifficulty applies to the next Start or Restart.
func (l *Lobby) SetDifficulty(d model.Difficulty) {
	l.cfg.Difficulty = d
}

func (l *Lobby) Difficulty() model.Difficulty { return l.cfg.Difficulty }
func (l *Lobby) BankID() string { return l.bankID }
func (l *Lobby) SampleSize() int { return l.sampleSize }

// Game returns the most recently started game, if any.
func (l *Lobby) Game() *Game { return l.game }

// Start loads the selected bank, samples it and returns an active game.
// On failure the lobby is left unchanged.
func (l *Lobby) Start(ctx context.Context) (*Game, error) {
	if l.bankID == "" {
		return nil, model.ErrNotConfigured
	}
	b, err := l.source.LoadBank(ctx, l.bankID)
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w: %w", l.bankID, model.ErrBankLoadFailed, err)
	}
	s := sampler.New(l.cfg.Rand)
	s.SetBank(b)
	questions, err := s.Sample(l.sampleSize)
	if err != nil {
		return nil, err
	}
	l.sampler = s
	l.game = New(questions, l.cfg)
	l.cfg.Logger.Info("game started",
		slog.String("bank", b.ID),
		slog.Int("sampled", len(questions)),
		slog.Int("bank_size", b.Count()),
	)
	return l.game, nil
}

// Restart samples the cached bank again and resets the current game in
// place, so a stale timer from the previous round cannot fire.
// The caller must not be ticking the game concurrently.
func (l *Lobby) Restart() (*Game, error) {
	questions, err := l.sampler.Sample(l.sampleSize)
	if err != nil {
		return nil, err
	}
	if l.game == nil || l.game.cfg.Difficulty != l.cfg.Difficulty {
		l.game = New(questions, l.cfg)
		return l.game, nil
	}
	l.game.Reset(questions)
	return l.game, nil
}
