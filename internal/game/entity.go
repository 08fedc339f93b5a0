package game

import (
	"math/rand/v2"

	"github.com/pavelanni/spacequiz/internal/model"
)

// Field and entity geometry in pixels; speeds are pixels per tick.
const (
	FieldWidth  = 800
	FieldHeight = 600

	PlayerWidth  = 40
	PlayerHeight = 40
	PlayerSpeed  = 5

	ProjectileWidth  = 20
	ProjectileHeight = 20
	ProjectileSpeed  = 3

	EnemyWidth  = 40
	EnemyHeight = 40
	EnemySpeed  = 0.75

	PanelWidth  = 350
	PanelHeight = 150
	panelMargin = 5
	panelGap    = 10

	HitboxWidth  = PanelWidth / 6.0
	HitboxHeight = 20

	MaxShields = 3
)

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Overlaps reports strict AABB overlap; touching edges do not collide.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

// Player is the ship at the bottom of the field.
type Player struct {
	X         float64
	Y         float64
	MoveLeft  bool
	MoveRight bool
}

func newPlayer() Player {
	return Player{
		X: FieldWidth/2 - PlayerWidth/2,
		Y: FieldHeight - PlayerHeight - 10,
	}
}

// Update applies one step per set intent and keeps the ship on the field.
func (p *Player) Update() {
	if p.MoveLeft {
		p.X = max(0, p.X-PlayerSpeed)
	}
	if p.MoveRight {
		p.X = min(FieldWidth-PlayerWidth, p.X+PlayerSpeed)
	}
}

// Bounds returns the player's box.
func (p Player) Bounds() Rect {
	return Rect{X: p.X, Y: p.Y, W: PlayerWidth, H: PlayerHeight}
}

// Projectile is a labelled shot travelling upward.
type Projectile struct {
	Label model.Label
	X     float64
	Y     float64
}

// Fire spawns a projectile centred on the player.
func (p Player) Fire(label model.Label) Projectile {
	return Projectile{
		Label: label,
		X:     p.X + PlayerWidth/2 - ProjectileWidth/2,
		Y:     p.Y,
	}
}

func (pr *Projectile) Update() {
	pr.Y -= ProjectileSpeed
}

// OffScreen is true once the projectile passes the top of the field.
func (pr Projectile) OffScreen() bool {
	return pr.Y < 0
}

func (pr Projectile) Bounds() Rect {
	return Rect{X: pr.X, Y: pr.Y, W: ProjectileWidth, H: ProjectileHeight}
}

// CollidesWith tests the projectile against the enemy hitbox, not its sprite.
func (pr Projectile) CollidesWith(e *Enemy) bool {
	return pr.Bounds().Overlaps(e.Hitbox())
}

// Enemy is bound to one question by index into the session.
type Enemy struct {
	ID        int
	Question  int
	Shields   int
	X         float64
	Y         float64
	Speed     float64
	Selection model.LabelSet
}

func newEnemy(id, question int, difficulty model.Difficulty, rng *rand.Rand) *Enemy {
	speed := EnemySpeed
	if difficulty == model.DifficultyExpert {
		speed *= 2
	}
	return &Enemy{
		ID:       id,
		Question: question,
		X:        rng.Float64() * (FieldWidth - EnemyWidth),
		Y:        -EnemyHeight,
		Speed:    speed,
	}
}

func (e *Enemy) Update() {
	e.Y += e.Speed
}

// OffScreen is true once the question panel has scrolled past the bottom.
func (e *Enemy) OffScreen() bool {
	return e.Y > FieldHeight+PanelHeight
}

// AddShield raises the defense level by one, up to MaxShields.
func (e *Enemy) AddShield() {
	if e.Shields < MaxShields {
		e.Shields++
	}
}

// Invulnerable reports whether correct answers can no longer destroy the enemy.
func (e *Enemy) Invulnerable() bool {
	return e.Shields >= MaxShields
}

func (e *Enemy) Bounds() Rect {
	return Rect{X: e.X, Y: e.Y, W: EnemyWidth, H: EnemyHeight}
}

// Panel is the question box hovering above the enemy, kept inside the field.
func (e *Enemy) Panel() Rect {
	x := e.X + EnemyWidth/2 - PanelWidth/2
	x = max(panelMargin, min(FieldWidth-PanelWidth-panelMargin, x))
	y := max(panelMargin, e.Y-PanelHeight-panelGap)
	return Rect{X: x, Y: y, W: PanelWidth, H: PanelHeight}
}

// Hitbox is a narrow band centred on the bottom edge of the panel.
func (e *Enemy) Hitbox() Rect {
	panel := e.Panel()
	return Rect{
		X: panel.X + (panel.W-HitboxWidth)/2,
		Y: panel.Y + panel.H - HitboxHeight/2,
		W: HitboxWidth,
		H: HitboxHeight,
	}
}
