// Package sampler draws randomized, type-balanced question subsets from a bank.
package sampler

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/pavelanni/spacequiz/internal/model"
)

// Sampler remembers the selected bank between rounds.
type Sampler struct {
	rng  *rand.Rand
	bank *model.Bank
}

// New returns a sampler drawing from rng. A nil rng uses the global source.
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// SetBank selects the bank subsequent calls to Sample draw from.
func (s *Sampler) SetBank(b model.Bank) {
	s.bank = &b
}

// Bank returns the selected bank and whether one is set.
func (s *Sampler) Bank() (model.Bank, bool) {
	if s.bank == nil {
		return model.Bank{}, false
	}
	return *s.bank, true
}

// Sample draws n questions from the selected bank.
func (s *Sampler) Sample(n int) ([]model.Question, error) {
	if s.bank == nil {
		return nil, model.ErrNotConfigured
	}
	return Sample(s.rng, *s.bank, n), nil
}

// Sample returns min(n, total) distinct questions from b in random order,
// about 80% choice and 20% true/false. n <= 0 selects the whole bank.
func Sample(rng *rand.Rand, b model.Bank, n int) []model.Question {
	total := b.Count()
	if total == 0 {
		return []model.Question{}
	}
	if n <= 0 || n > total {
		n = total
	}

	choice, tf := split(n, len(b.Choice), len(b.TrueFalse))
	out := make([]model.Question, 0, n)
	out = append(out, pick(rng, b.Choice, choice)...)
	out = append(out, pick(rng, b.TrueFalse, tf)...)
	shuffle(rng, len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// split divides n between the two subtypes. Shortfall in one is made up from
// the other, so the result always sums to n when n <= totalChoice+totalTF.
func split(n, totalChoice, totalTF int) (choice, tf int) {
	switch {
	case totalChoice == 0:
		return 0, min(n, totalTF)
	case totalTF == 0:
		return min(n, totalChoice), 0
	}
	target := n * 4 / 5
	choice = min(target, totalChoice)
	tf = min(n-choice, totalTF)
	if tf < n-choice {
		choice = min(n-tf, totalChoice)
	}
	return choice, tf
}

// pick takes the first k elements of a partial Fisher-Yates shuffle over a copy.
func pick(rng *rand.Rand, src []model.Question, k int) []model.Question {
	buf := make([]model.Question, len(src))
	copy(buf, src)
	if k >= len(buf) {
		return buf
	}
	for i := 0; i < k; i++ {
		j := i + intN(rng, len(buf)-i)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf[:k]
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	if rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	rng.Shuffle(n, swap)
}

// ParseSampleSize clamps a user-entered sample size to [1, total].
// Non-numeric and non-positive input selects the whole bank.
func ParseSampleSize(raw string, total int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 || n > total {
		return total
	}
	return n
}
