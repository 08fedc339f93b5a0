package game

import (
	"fmt"

	"github.com/pavelanni/spacequiz/internal/model"
)

// Verdict is the result of checking a projectile against an enemy's question.
type Verdict int

const (
	VerdictWrong Verdict = iota
	VerdictCorrect
	// VerdictToggled means a multi-select option was flipped; neither scored nor punished.
	VerdictToggled
)

func verdictOf(ok bool) Verdict {
	if ok {
		return VerdictCorrect
	}
	return VerdictWrong
}

// Evaluate checks label against q. Option letters fired at a multi-select
// question toggle the enemy's selection; SUBMIT is only correct when the
// selection equals the answer set exactly.
func (e *Enemy) Evaluate(q model.Question, label model.Label) (Verdict, error) {
	switch a := q.Answer.(type) {
	case model.MultiSelect:
		if label == model.LabelSubmit {
			return verdictOf(e.Selection == a.Correct), nil
		}
		if label.IsOption() {
			e.Selection = e.Selection.Toggle(label)
			return VerdictToggled, nil
		}
		return VerdictWrong, nil
	case model.SingleChoice:
		return verdictOf(label == a.Correct), nil
	case model.TrueFalse:
		return verdictOf(label == model.BoolLabel(a.Correct)), nil
	default:
		return VerdictWrong, fmt.Errorf("question %q: unknown answer variant %T: %w", q.Prompt, q.Answer, model.ErrInvariant)
	}
}

// resolveHits runs every live projectile, most recent first, against e.
// It reports whether the enemy was destroyed.
func (g *Game) resolveHits(e *Enemy, q model.Question) (bool, error) {
	for i := len(g.projectiles) - 1; i >= 0; i-- {
		p := g.projectiles[i]
		if !p.CollidesWith(e) {
			continue
		}
		verdict, err := e.Evaluate(q, p.Label)
		if err != nil {
			return false, err
		}
		g.projectiles = append(g.projectiles[:i], g.projectiles[i+1:]...)

		switch {
		case verdict == VerdictToggled:
			g.emit(Event{Type: EventToggled, Question: e.Question, Label: p.Label})
		case verdict == VerdictCorrect && !e.Invulnerable():
			g.destroy(e, p.Label)
			return true, nil
		default:
			g.miss(e, p.Label)
		}
	}
	return false, nil
}

func (g *Game) destroy(e *Enemy, label model.Label) {
	points := 100 * (e.Shields + 1)
	g.session.Score += points
	g.emit(Event{Type: EventDestroyed, Question: e.Question, Label: label, Points: points})
	g.record(e.Question, model.OutcomeCorrect)
}

// miss handles a non-destructive wrong hit, including correct answers
// against a fully shielded enemy.
func (g *Game) miss(e *Enemy, label model.Label) {
	if !e.Invulnerable() {
		if g.session.Difficulty == model.DifficultyEasy {
			e.AddShield()
		} else {
			e.Shields = MaxShields
		}
	}
	g.emit(Event{Type: EventWrong, Question: e.Question, Label: label, Shields: e.Shields})
	g.record(e.Question, model.OutcomeWrong)

	g.nearMiss++
	if g.nearMiss >= nearMissLimit && !g.invincible {
		g.invincible = true
		g.timers.schedule(timerInvincibility, InvincibilityDuration)
		g.emit(Event{Type: EventInvincible, Question: e.Question})
	}
}
