// Package game implements the tick loop, answer resolution and scoring
// state machine of the quiz shooter.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pavelanni/spacequiz/internal/model"
)

const (
	DefaultTickRate = 60
	// TickStep is the game time one tick covers. Speeds are per tick, so a
	// TickRate above DefaultTickRate plays the whole game faster.
	TickStep = time.Second / DefaultTickRate

	SpawnInterval         = time.Second
	InvincibilityDuration = 5 * time.Second
	ComboBannerDuration   = 3 * time.Second
	WinBonusPerHealth     = 500

	nearMissLimit = 3
)

// Phase is the state machine position. Idle is reported by the lobby
// before a session starts.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
	PhasePaused Phase = "paused"
	PhaseEnded  Phase = "ended"
)

// Result is set when the phase is PhaseEnded.
type Result string

const (
	ResultNone Result = ""
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Config tunes a game. Zero values fall back to the defaults.
type Config struct {
	Difficulty model.Difficulty
	MaxHealth  int
	TickRate   int
	Rand       *rand.Rand
	Logger     *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Difficulty == "" {
		c.Difficulty = model.DifficultyEasy
	}
	if c.MaxHealth <= 0 {
		c.MaxHealth = DefaultMaxHealth
	}
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// TickInterval is the wall-clock period between ticks. It does not change
// TickStep.
func (c Config) TickInterval() time.Duration {
	c = c.withDefaults()
	return time.Second / time.Duration(c.TickRate)
}

// Game owns all mutable session state. It is not safe for concurrent use;
// a Runner drives it from a single goroutine.
type Game struct {
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger

	phase   Phase
	result  Result
	session *Session

	player      Player
	enemies     []*Enemy
	projectiles []Projectile
	cursor      int
	nextEnemyID int

	nearMiss   int
	invincible bool
	combo      comboTracker
	timers     scheduler

	ticks  uint64
	events []Event
}

// New starts an active session over questions.
func New(questions []model.Question, cfg Config) *Game {
	cfg = cfg.withDefaults()
	g := &Game{
		cfg: cfg,
		rng: cfg.Rand,
	}
	g.Reset(questions)
	return g
}

// Reset discards the current session and starts a new one with the same
// settings. Timers armed by the previous session never fire.
func (g *Game) Reset(questions []model.Question) {
	g.timers.reset()
	g.session = newSession(questions, g.cfg.Difficulty, g.cfg.MaxHealth)
	g.logger = g.cfg.Logger.With("session", g.session.ID)
	g.phase = PhaseActive
	g.result = ResultNone
	g.player = newPlayer()
	g.enemies = nil
	g.projectiles = nil
	g.cursor = 0
	g.nextEnemyID = 0
	g.nearMiss = 0
	g.invincible = false
	g.combo = comboTracker{}
	g.ticks = 0
	g.events = nil

	g.logger.Info("session started",
		"questions", len(questions),
		"difficulty", g.cfg.Difficulty,
		"generation", g.timers.gen,
	)
	g.emit(Event{Type: EventStarted, Question: -1})
	g.poll()
}

// Tick advances the game by one step. It does nothing unless the game is
// active. A returned error wraps model.ErrInvariant and is fatal.
func (g *Game) Tick() error {
	if g.phase != PhaseActive {
		return nil
	}
	g.ticks++
	g.player.Update()

	live := g.projectiles[:0]
	for _, p := range g.projectiles {
		p.Update()
		if !p.OffScreen() {
			live = append(live, p)
		}
	}
	g.projectiles = live

	remaining := make([]*Enemy, 0, len(g.enemies))
	for _, e := range g.enemies {
		e.Update()
		q, ok := g.session.Question(e.Question)
		if !ok {
			return fmt.Errorf("enemy %d: question index %d out of range: %w", e.ID, e.Question, model.ErrInvariant)
		}
		destroyed, err := g.resolveHits(e, q)
		if err != nil {
			return fmt.Errorf("enemy %d: %w", e.ID, err)
		}
		if destroyed {
			continue
		}
		if e.OffScreen() {
			g.escape(e)
			if g.phase == PhaseEnded {
				g.enemies = nil
				return nil
			}
			continue
		}
		remaining = append(remaining, e)
	}
	g.enemies = remaining

	for _, kind := range g.timers.advance(TickStep) {
		g.fire(kind)
		if g.phase == PhaseEnded {
			break
		}
	}
	return nil
}

// poll is the spawner. It runs on a fixed interval of game time and only
// spawns when the field is empty.
func (g *Game) poll() {
	if g.phase == PhaseEnded {
		return
	}
	if len(g.enemies) == 0 {
		switch {
		case g.cursor < len(g.session.Questions):
			g.spawn()
		case !g.session.Unanswered() && g.session.Health > 0:
			g.win()
			return
		}
	}
	g.timers.schedule(timerSpawn, SpawnInterval)
}

func (g *Game) spawn() {
	e := newEnemy(g.nextEnemyID, g.cursor, g.session.Difficulty, g.rng)
	g.nextEnemyID++
	g.cursor++
	g.enemies = append(g.enemies, e)
	g.emit(Event{Type: EventSpawned, Question: e.Question})
	g.logger.Debug("enemy spawned", "enemy", e.ID, "question", e.Question)
}

func (g *Game) escape(e *Enemy) {
	g.emit(Event{Type: EventEscaped, Question: e.Question})
	if !g.invincible {
		g.session.Health--
		g.emit(Event{Type: EventDamaged, Question: e.Question, Health: g.session.Health})
	}
	g.record(e.Question, model.OutcomeWrong)
	if g.session.Health <= 0 {
		g.lose()
	}
}

func (g *Game) fire(kind timerKind) {
	switch kind {
	case timerSpawn:
		g.poll()
	case timerInvincibility:
		g.invincible = false
		g.nearMiss = 0
		g.emit(Event{Type: EventInvincibleEnded, Question: -1})
	case timerComboBanner:
		g.combo.visible = false
		g.emit(Event{Type: EventComboBannerEnded, Question: -1, Combo: g.combo.count})
	}
}

// record stores an outcome and refreshes the combo derived from it.
func (g *Game) record(question int, o model.Outcome) {
	if !g.session.Record(question, o) {
		return
	}
	prev := g.combo.update(g.session.Outcomes)
	cur := g.combo.count
	switch {
	case cur > prev && cur > 1:
		typ := EventCombo
		if IsMilestone(cur) {
			typ = EventComboMilestone
		}
		g.emit(Event{Type: typ, Question: question, Combo: cur})
		g.combo.visible = true
		g.timers.schedule(timerComboBanner, ComboBannerDuration)
	case cur < prev:
		g.combo.visible = false
		g.timers.cancel(timerComboBanner)
	}
}

func (g *Game) win() {
	bonus := g.session.Health * WinBonusPerHealth
	g.session.Score += bonus
	g.end(ResultWin)
	g.emit(Event{Type: EventWon, Question: -1, Points: bonus, Health: g.session.Health})
}

func (g *Game) lose() {
	g.end(ResultLoss)
	g.emit(Event{Type: EventLost, Question: -1})
}

func (g *Game) end(result Result) {
	g.phase = PhaseEnded
	g.result = result
	g.timers.pending = nil
	correct, wrong, unanswered := g.session.Counts()
	g.logger.Info("session ended",
		"result", result,
		"score", g.session.Score,
		"health", g.session.Health,
		"correct", correct,
		"wrong", wrong,
		"unanswered", unanswered,
	)
}

// Pause freezes the game. Game time, and with it every timer, stops.
func (g *Game) Pause() bool {
	if g.phase != PhaseActive {
		return false
	}
	g.phase = PhasePaused
	g.emit(Event{Type: EventPaused, Question: -1})
	return true
}

// Resume continues a paused game exactly where it stopped.
func (g *Game) Resume() bool {
	if g.phase != PhasePaused {
		return false
	}
	g.phase = PhaseActive
	g.emit(Event{Type: EventResumed, Question: -1})
	return true
}

// TogglePause flips between active and paused.
func (g *Game) TogglePause() bool {
	if g.phase == PhasePaused {
		return g.Resume()
	}
	return g.Pause()
}

// Fire shoots a projectile with label. It is a no-op unless active.
func (g *Game) Fire(label model.Label) bool {
	if g.phase != PhaseActive {
		return false
	}
	if _, err := model.ParseLabel(string(label)); err != nil {
		return false
	}
	g.projectiles = append(g.projectiles, g.player.Fire(label))
	return true
}

// SetIntent sets or clears a movement intent. While paused only clearing
// is accepted, so a key released during the pause does not stick.
func (g *Game) SetIntent(dir Direction, on bool) bool {
	switch g.phase {
	case PhaseActive:
	case PhasePaused:
		if on {
			return false
		}
	default:
		return false
	}
	switch dir {
	case DirLeft:
		g.player.MoveLeft = on
	case DirRight:
		g.player.MoveRight = on
	default:
		return false
	}
	return true
}

func (g *Game) emit(e Event) {
	g.events = append(g.events, e)
}

// DrainEvents returns and clears the pending events.
func (g *Game) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}

func (g *Game) Phase() Phase { return g.phase }
func (g *Game) Result() Result { return g.result }
func (g *Game) SessionID() string { return g.session.ID }
func (g *Game) Score() int { return g.session.Score }
func (g *Game) Health() int { return g.session.Health }
func (g *Game) Combo() int { return g.combo.count }
func (g *Game) ComboVisible() bool { return g.combo.visible }
func (g *Game) Invincible() bool { return g.invincible }
func (g *Game) Generation() uint64 { return g.timers.gen }
func (g *Game) Now() time.Duration { return g.timers.now }
func (g *Game) Difficulty() model.Difficulty { return g.session.Difficulty }

// Outcomes returns a copy of the outcome record.
func (g *Game) Outcomes() []model.Outcome {
	out := make([]model.Outcome, len(g.session.Outcomes))
	copy(out, g.session.Outcomes)
	return out
}
