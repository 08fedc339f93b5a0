package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pavelanni/spacequiz/internal/game"
	appI18n "github.com/pavelanni/spacequiz/internal/i18n"
	"github.com/pavelanni/spacequiz/internal/model"
	"github.com/pavelanni/spacequiz/internal/sampler"
	ws "github.com/pavelanni/spacequiz/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// playSession is one connected player: a lobby plus, while a game runs,
// the runner goroutine ticking it. Only the read loop touches the lobby.
type playSession struct {
	ctx    context.Context
	out    *ws.Writer
	lobby  *game.Lobby
	logger *slog.Logger

	runner *game.Runner
	cancel context.CancelFunc
	done   chan struct{}
}

// handlePlay upgrades to a WebSocket and runs a game session over it.
func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := slog.Default().With("conn", uuid.NewString())
	cfg := h.config.Game
	cfg.Logger = logger

	p := &playSession{
		ctx:    r.Context(),
		out:    ws.NewWriter(conn),
		lobby:  game.NewLobby(h.store, cfg),
		logger: logger,
	}
	defer p.stop()

	logger.Info("player connected")
	p.sendBanks()
	p.sendLobby()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected close", "error", err)
			} else {
				logger.Debug("connection closed")
			}
			return
		}
		p.handle(msg, h.config.SampleSize)
	}
}

func (p *playSession) handle(msg ws.RequestPayload, defaultSize int) {
	switch msg.Action {
	case ws.ActionPing:
		p.write(ws.PongResponse{Event: ws.EventPong})
	case ws.ActionListBanks:
		p.sendBanks()
	case ws.ActionSelectBank:
		p.stop()
		p.lobby.SelectBank(msg.BankID, p.sampleSize(msg.BankID, msg.SampleSize, defaultSize))
		p.sendLobby()
	case ws.ActionSetDifficulty:
		p.lobby.SetDifficulty(model.ParseDifficulty(msg.Difficulty))
		p.sendLobby()
	case ws.ActionChangeBank:
		p.stop()
		p.lobby.SelectBank("", 0)
		p.sendLobby()
		p.sendBanks()
	case ws.ActionStart:
		p.stop()
		g, err := p.lobby.Start(p.ctx)
		if err != nil {
			p.fail(err)
			return
		}
		p.run(g)
	case ws.ActionRestart:
		p.stop()
		g, err := p.lobby.Restart()
		if err != nil {
			p.fail(err)
			return
		}
		p.run(g)
	case ws.ActionKey:
		if cmd, ok := game.KeyCommand(msg.Key, msg.Down); ok {
			p.send(cmd)
		}
	case ws.ActionMove:
		p.send(game.Command{Kind: game.CommandMove, Direction: game.Direction(msg.Direction), On: msg.On})
	case ws.ActionFire:
		label, err := model.ParseLabel(msg.Label)
		if err != nil {
			p.writeError(err.Error())
			return
		}
		p.send(game.Command{Kind: game.CommandFire, Label: label})
	case ws.ActionPause:
		p.send(game.Command{Kind: game.CommandPause})
	default:
		p.logger.Warn("unknown action", "action", msg.Action)
		p.writeError("unknown action: " + string(msg.Action))
	}
}

// sampleSize clamps raw against the bank's size. An unknown bank keeps the
// default; loading it fails later on start.
func (p *playSession) sampleSize(bankID, raw string, defaultSize int) int {
	if strings.TrimSpace(raw) == "" {
		return defaultSize
	}
	banks, err := p.lobby.Banks(p.ctx)
	if err != nil {
		p.logger.Warn("list banks for sample size", "error", err)
		return defaultSize
	}
	for _, b := range banks {
		if b.ID == bankID {
			return sampler.ParseSampleSize(raw, b.Count)
		}
	}
	return defaultSize
}

// run starts a runner for g. The caller must have stopped any previous one.
func (p *playSession) run(g *game.Game) {
	ctx, cancel := context.WithCancel(p.ctx)
	sink := game.SinkFunc(func(s game.Snapshot) {
		p.write(ws.SnapshotResponse{
			Event:    ws.EventSnapshot,
			Snapshot: s,
			Messages: eventMessages(p.ctx, s),
		})
	})
	p.runner = game.NewRunner(g, sink, p.logger)
	p.cancel = cancel
	p.done = make(chan struct{})

	runner, done := p.runner, p.done
	go func() {
		defer close(done)
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Error("game stopped", "error", err)
			p.writeError(err.Error())
		}
	}()
}

// stop cancels the running game, if any, and waits for its goroutine so the
// lobby can safely touch the game again.
func (p *playSession) stop() {
	if p.runner == nil {
		return
	}
	p.cancel()
	<-p.done
	p.runner, p.cancel, p.done = nil, nil, nil
}

func (p *playSession) send(cmd game.Command) {
	if p.runner == nil {
		if p.lobby.Game() == nil {
			p.writeError(appI18n.T(p.ctx, "NoGame"))
		}
		return
	}
	select {
	case <-p.done:
		// game over; input is ignored until a restart
	default:
		p.runner.Send(cmd)
	}
}

func (p *playSession) fail(err error) {
	p.logger.Warn("start failed", "error", err)
	switch {
	case errors.Is(err, model.ErrNotConfigured):
		p.writeError(appI18n.T(p.ctx, "NoBankSelected"))
	case errors.Is(err, model.ErrBankLoadFailed):
		p.writeError(appI18n.T(p.ctx, "BankLoadFailed"))
	default:
		p.writeError(err.Error())
	}
}

func (p *playSession) sendBanks() {
	banks, err := p.lobby.Banks(p.ctx)
	if err != nil {
		p.logger.Error("failed to list banks", "error", err)
		p.writeError(appI18n.T(p.ctx, "BankLoadFailed"))
		return
	}
	p.write(ws.BanksResponse{Event: ws.EventBanks, Banks: banks})
}

func (p *playSession) sendLobby() {
	p.write(ws.LobbyResponse{
		Event:      ws.EventLobby,
		BankID:     p.lobby.BankID(),
		SampleSize: p.lobby.SampleSize(),
		Difficulty: p.lobby.Difficulty(),
	})
}

func (p *playSession) write(v any) {
	if err := p.out.WriteTyped(v); err != nil {
		p.logger.Debug("write failed", "error", err)
	}
}

func (p *playSession) writeError(msg string) {
	if err := p.out.WriteError(msg); err != nil {
		p.logger.Debug("write failed", "error", err)
	}
}

// eventMessages localizes the banners a client shows for a snapshot's events.
func eventMessages(ctx context.Context, s game.Snapshot) []string {
	var msgs []string
	for _, e := range s.Events {
		switch e.Type {
		case game.EventCombo, game.EventComboMilestone:
			msgs = append(msgs, appI18n.Combo(ctx, e.Combo, game.Tier(e.Combo)))
		case game.EventInvincible:
			msgs = append(msgs, appI18n.T(ctx, "ShieldUp"))
		case game.EventPaused:
			msgs = append(msgs, appI18n.T(ctx, "Paused"))
		case game.EventWon:
			msgs = append(msgs, appI18n.Td(ctx, "GameWon", map[string]any{"Score": s.Score}))
		case game.EventLost:
			msgs = append(msgs, appI18n.Td(ctx, "GameLost", map[string]any{"Score": s.Score}))
		}
	}
	return msgs
}
