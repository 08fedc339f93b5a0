package game

import (
	"github.com/google/uuid"

	"github.com/pavelanni/spacequiz/internal/model"
)

// DefaultMaxHealth is the starting health of a session.
const DefaultMaxHealth = 10

// Session is one play-through: the sampled questions and the running tally.
type Session struct {
	ID         string
	Questions  []model.Question
	Outcomes   []model.Outcome
	Health     int
	MaxHealth  int
	Score      int
	Difficulty model.Difficulty
}

func newSession(questions []model.Question, difficulty model.Difficulty, maxHealth int) *Session {
	outcomes := make([]model.Outcome, len(questions))
	for i := range outcomes {
		outcomes[i] = model.OutcomeUnanswered
	}
	return &Session{
		ID:         uuid.NewString(),
		Questions:  questions,
		Outcomes:   outcomes,
		Health:     maxHealth,
		MaxHealth:  maxHealth,
		Difficulty: difficulty,
	}
}

// Question returns the question at index i.
func (s *Session) Question(i int) (model.Question, bool) {
	if i < 0 || i >= len(s.Questions) {
		return model.Question{}, false
	}
	return s.Questions[i], true
}

// Record sets the outcome for question i if it is still unanswered.
// The first resolution of a question is final.
func (s *Session) Record(i int, o model.Outcome) bool {
	if i < 0 || i >= len(s.Outcomes) || s.Outcomes[i] != model.OutcomeUnanswered {
		return false
	}
	s.Outcomes[i] = o
	return true
}

// Unanswered reports whether any question is still unresolved.
func (s *Session) Unanswered() bool {
	for _, o := range s.Outcomes {
		if o == model.OutcomeUnanswered {
			return true
		}
	}
	return false
}

// Counts tallies the outcome record.
func (s *Session) Counts() (correct, wrong, unanswered int) {
	for _, o := range s.Outcomes {
		switch o {
		case model.OutcomeCorrect:
			correct++
		case model.OutcomeWrong:
			wrong++
		default:
			unanswered++
		}
	}
	return correct, wrong, unanswered
}

// Combo is derived from the outcome record.
func (s *Session) Combo() int {
	return Combo(s.Outcomes)
}
