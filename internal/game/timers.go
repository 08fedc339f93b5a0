package game

import (
	"sort"
	"time"
)

type timerKind int

const (
	timerSpawn timerKind = iota
	timerInvincibility
	timerComboBanner
)

func (k timerKind) String() string {
	switch k {
	case timerSpawn:
		return "spawn"
	case timerInvincibility:
		return "invincibility"
	case timerComboBanner:
		return "combo_banner"
	}
	return "unknown"
}

type timer struct {
	kind timerKind
	at   time.Duration
	gen  uint64
}

// scheduler runs one-shot timers against game time, which only advances
// while ticks run. At most one timer per kind is pending; scheduling a kind
// again re-arms it.
type scheduler struct {
	now     time.Duration
	gen     uint64
	pending []timer
}

// schedule arms kind to fire after d of game time.
func (s *scheduler) schedule(kind timerKind, d time.Duration) {
	s.cancel(kind)
	s.pending = append(s.pending, timer{kind: kind, at: s.now + d, gen: s.gen})
}

func (s *scheduler) cancel(kind timerKind) {
	kept := s.pending[:0]
	for _, t := range s.pending {
		if t.kind != kind {
			kept = append(kept, t)
		}
	}
	s.pending = kept
}

func (s *scheduler) armed(kind timerKind) bool {
	for _, t := range s.pending {
		if t.kind == kind {
			return true
		}
	}
	return false
}

// advance moves game time forward by d and returns the kinds that came due,
// earliest first. Timers from an older generation are discarded.
func (s *scheduler) advance(d time.Duration) []timerKind {
	s.now += d
	var due []timer
	kept := s.pending[:0]
	for _, t := range s.pending {
		switch {
		case t.gen != s.gen:
		case t.at <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	s.pending = kept

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	kinds := make([]timerKind, len(due))
	for i, t := range due {
		kinds[i] = t.kind
	}
	return kinds
}

// reset starts a new generation at game time zero.
func (s *scheduler) reset() {
	s.gen++
	s.now = 0
	s.pending = nil
}
