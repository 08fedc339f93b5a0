package game

import (
	"slices"

	"github.com/pavelanni/spacequiz/internal/model"
)

// Snapshot is a read-only view of the game for rendering.
type Snapshot struct {
	Session      string           `json:"session"`
	Generation   uint64           `json:"generation"`
	Tick         uint64           `json:"tick"`
	Phase        Phase            `json:"phase"`
	Result       Result           `json:"result,omitempty"`
	Difficulty   model.Difficulty `json:"difficulty"`
	Score        int              `json:"score"`
	Health       int              `json:"health"`
	MaxHealth    int              `json:"max_health"`
	Combo        int              `json:"combo"`
	ComboVisible bool             `json:"combo_visible"`
	Invincible   bool             `json:"invincible"`
	Outcomes     []model.Outcome  `json:"outcomes"`
	Stats        Stats            `json:"stats"`
	Player       Rect             `json:"player"`
	Enemies      []EnemyView      `json:"enemies"`
	Projectiles  []ProjectileView `json:"projectiles"`
	Events       []Event          `json:"events,omitempty"`
}

// Stats summarizes the outcome record.
type Stats struct {
	Total      int `json:"total"`
	Correct    int `json:"correct"`
	Wrong      int `json:"wrong"`
	Unanswered int `json:"unanswered"`
}

// EnemyView carries everything needed to draw an enemy and its question panel.
type EnemyView struct {
	ID        int            `json:"id"`
	Question  int            `json:"question"`
	Prompt    string         `json:"prompt"`
	Kind      model.Kind     `json:"kind"`
	Options   []string       `json:"options,omitempty"`
	Shields   int            `json:"shields"`
	Selection model.LabelSet `json:"selection"`
	Bounds    Rect           `json:"bounds"`
	Panel     Rect           `json:"panel"`
	Hitbox    Rect           `json:"hitbox"`
}

type ProjectileView struct {
	Label  model.Label `json:"label"`
	Bounds Rect        `json:"bounds"`
}

// Snapshot builds a view of the current state, including events not yet
// drained. It does not modify the game.
func (g *Game) Snapshot() Snapshot {
	correct, wrong, unanswered := g.session.Counts()
	s := Snapshot{
		Session:      g.session.ID,
		Generation:   g.timers.gen,
		Tick:         g.ticks,
		Phase:        g.phase,
		Result:       g.result,
		Difficulty:   g.session.Difficulty,
		Score:        g.session.Score,
		Health:       g.session.Health,
		MaxHealth:    g.session.MaxHealth,
		Combo:        g.combo.count,
		ComboVisible: g.combo.visible,
		Invincible:   g.invincible,
		Outcomes:     g.Outcomes(),
		Stats: Stats{
			Total:      len(g.session.Outcomes),
			Correct:    correct,
			Wrong:      wrong,
			Unanswered: unanswered,
		},
		Player:      g.player.Bounds(),
		Enemies:     make([]EnemyView, 0, len(g.enemies)),
		Projectiles: make([]ProjectileView, 0, len(g.projectiles)),
		Events:      slices.Clone(g.events),
	}
	for _, e := range g.enemies {
		q, _ := g.session.Question(e.Question)
		s.Enemies = append(s.Enemies, EnemyView{
			ID:        e.ID,
			Question:  e.Question,
			Prompt:    q.Prompt,
			Kind:      q.Kind(),
			Options:   q.Options,
			Shields:   e.Shields,
			Selection: e.Selection,
			Bounds:    e.Bounds(),
			Panel:     e.Panel(),
			Hitbox:    e.Hitbox(),
		})
	}
	for _, p := range g.projectiles {
		s.Projectiles = append(s.Projectiles, ProjectileView{Label: p.Label, Bounds: p.Bounds()})
	}
	return s
}
