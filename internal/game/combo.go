package game

import "github.com/pavelanni/spacequiz/internal/model"

// ComboMilestones are the streak lengths that trigger a special banner.
var ComboMilestones = []int{5, 10, 20}

// Combo returns the length of the trailing run of correct outcomes, counted
// back from the last resolved entry.
func Combo(outcomes []model.Outcome) int {
	last := len(outcomes) - 1
	for last >= 0 && outcomes[last] == model.OutcomeUnanswered {
		last--
	}
	n := 0
	for i := last; i >= 0 && outcomes[i] == model.OutcomeCorrect; i-- {
		n++
	}
	return n
}

// IsMilestone reports whether count is exactly one of ComboMilestones.
func IsMilestone(count int) bool {
	for _, m := range ComboMilestones {
		if count == m {
			return true
		}
	}
	return false
}

// Tier is the highest milestone reached by count, or 0.
func Tier(count int) int {
	tier := 0
	for _, m := range ComboMilestones {
		if count >= m {
			tier = m
		}
	}
	return tier
}

// comboTracker holds the last derived combo and whether its banner shows.
type comboTracker struct {
	count   int
	visible bool
}

// update recomputes the combo and returns the previous value.
func (c *comboTracker) update(outcomes []model.Outcome) int {
	prev := c.count
	c.count = Combo(outcomes)
	return prev
}
