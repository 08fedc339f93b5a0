package game

import (
	"context"
	"log/slog"
	"time"
)

// SnapshotSink receives a snapshot after every tick and accepted command.
type SnapshotSink interface {
	Publish(Snapshot)
}

// SinkFunc adapts a function to SnapshotSink.
type SinkFunc func(Snapshot)

func (f SinkFunc) Publish(s Snapshot) { f(s) }

const commandBuffer = 64

// Runner drives a Game from one goroutine. Input arrives through Send and is
// applied between ticks, so the game itself needs no locking.
type Runner struct {
	game     *Game
	sink     SnapshotSink
	logger   *slog.Logger
	interval time.Duration
	commands chan Command
}

// NewRunner prepares a runner ticking g at its configured rate.
func NewRunner(g *Game, sink SnapshotSink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		game:     g,
		sink:     sink,
		logger:   logger.With("session", g.SessionID()),
		interval: g.cfg.TickInterval(),
		commands: make(chan Command, commandBuffer),
	}
}

// Send queues a command without blocking. It reports false when the queue
// is full and the command was dropped.
func (r *Runner) Send(cmd Command) bool {
	select {
	case r.commands <- cmd:
		return true
	default:
		r.logger.Warn("command dropped", "kind", cmd.Kind)
		return false
	}
}

// Run ticks until the game ends, ctx is cancelled or an invariant breaks.
// The ticker is stopped while paused so no stale tick can run.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	tick := ticker.C

	r.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-r.commands:
			if !r.game.Apply(cmd) {
				continue
			}
			switch r.game.Phase() {
			case PhasePaused:
				ticker.Stop()
				tick = nil
			case PhaseActive:
				if tick == nil {
					ticker.Reset(r.interval)
					tick = ticker.C
				}
			}
			r.publish()

		case <-tick:
			if err := r.game.Tick(); err != nil {
				r.logger.Error("tick failed", "error", err)
				return err
			}
			r.publish()
			if r.game.Phase() == PhaseEnded {
				return nil
			}
		}
	}
}

// publish sends a snapshot and then drops the events it carried, so each
// event reaches the sink once.
func (r *Runner) publish() {
	s := r.game.Snapshot()
	r.game.DrainEvents()
	r.sink.Publish(s)
}
