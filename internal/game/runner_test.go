package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pavelanni/spacequiz/internal/model"
)

type recordingSink struct {
	mu        sync.Mutex
	snapshots []Snapshot
	notify    chan Snapshot
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan Snapshot, 1024)}
}

func (s *recordingSink) Publish(snap Snapshot) {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, snap)
	s.mu.Unlock()
	select {
	case s.notify <- snap:
	default:
	}
}

func (s *recordingSink) last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[len(s.snapshots)-1]
}

func (s *recordingSink) waitFor(t *testing.T, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-s.notify:
			if cond(snap) {
				return snap
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func fastConfig(d model.Difficulty) Config {
	cfg := testConfig(d)
	cfg.TickRate = 500
	return cfg
}

func TestRunnerEndsOnLoss(t *testing.T) {
	cfg := fastConfig(model.DifficultyEasy)
	cfg.MaxHealth = 1
	g := New([]model.Question{tfQuestion("q", true)}, cfg)
	currentEnemy(t, g).Y = FieldHeight + PanelHeight

	sink := newRecordingSink()
	r := NewRunner(g, sink, cfg.Logger)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	last := sink.last()
	if last.Phase != PhaseEnded || last.Result != ResultLoss {
		t.Errorf("expected final loss snapshot, got %s/%q", last.Phase, last.Result)
	}
	if !hasEvent(last.Events, EventLost) {
		t.Error("expected lost event in final snapshot")
	}
}

func TestRunnerPauseStopsTicks(t *testing.T) {
	cfg := fastConfig(model.DifficultyEasy)
	g := New([]model.Question{tfQuestion("q", true)}, cfg)
	sink := newRecordingSink()
	r := NewRunner(g, sink, cfg.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	sink.waitFor(t, func(s Snapshot) bool { return s.Tick >= 3 })
	r.Send(Command{Kind: CommandPause})
	paused := sink.waitFor(t, func(s Snapshot) bool { return s.Phase == PhasePaused })

	time.Sleep(50 * time.Millisecond)
	if got := sink.last(); got.Tick != paused.Tick || got.Phase != PhasePaused {
		t.Errorf("ticks advanced while paused: %d -> %d", paused.Tick, got.Tick)
	}

	r.Send(Command{Kind: CommandPause})
	sink.waitFor(t, func(s Snapshot) bool { return s.Phase == PhaseActive && s.Tick > paused.Tick })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerPublishesEachEventOnce(t *testing.T) {
	cfg := fastConfig(model.DifficultyEasy)
	cfg.MaxHealth = 1
	g := New([]model.Question{tfQuestion("q", true)}, cfg)
	currentEnemy(t, g).Y = FieldHeight + PanelHeight

	sink := newRecordingSink()
	if err := NewRunner(g, sink, cfg.Logger).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	started := 0
	for _, s := range sink.snapshots {
		for _, e := range s.Events {
			if e.Type == EventStarted {
				started++
			}
		}
	}
	if started != 1 {
		t.Errorf("expected the started event in exactly one snapshot, got %d", started)
	}
	if len(g.DrainEvents()) != 0 {
		t.Error("expected the runner to drain published events")
	}
}

func TestRunnerStopsOnInvariant(t *testing.T) {
	cfg := fastConfig(model.DifficultyEasy)
	g := New([]model.Question{tfQuestion("q", true)}, cfg)
	currentEnemy(t, g).Question = 7

	r := NewRunner(g, SinkFunc(func(Snapshot) {}), cfg.Logger)
	err := r.Run(context.Background())
	if !errors.Is(err, model.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestKeyCommand(t *testing.T) {
	tests := []struct {
		key    string
		down   bool
		want   Command
		wantOK bool
	}{
		{"a", true, Command{Kind: CommandFire, Label: model.LabelA}, true},
		{"S", true, Command{Kind: CommandFire, Label: model.LabelB}, true},
		{"d", true, Command{Kind: CommandFire, Label: model.LabelC}, true},
		{"f", true, Command{Kind: CommandFire, Label: model.LabelD}, true},
		{"w", true, Command{Kind: CommandFire, Label: model.LabelTrue}, true},
		{"e", true, Command{Kind: CommandFire, Label: model.LabelFalse}, true},
		{" ", true, Command{Kind: CommandFire, Label: model.LabelSubmit}, true},
		{"p", true, Command{Kind: CommandPause}, true},
		{"ArrowLeft", true, Command{Kind: CommandMove, Direction: DirLeft, On: true}, true},
		{"ArrowRight", false, Command{Kind: CommandMove, Direction: DirRight, On: false}, true},
		{"a", false, Command{}, false},
		{"x", true, Command{}, false},
	}
	for _, tt := range tests {
		got, ok := KeyCommand(tt.key, tt.down)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("KeyCommand(%q, %v) = %+v, %v; want %+v, %v", tt.key, tt.down, got, ok, tt.want, tt.wantOK)
		}
	}
}
