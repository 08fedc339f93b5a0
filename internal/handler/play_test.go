package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pavelanni/spacequiz/internal/game"
	appI18n "github.com/pavelanni/spacequiz/internal/i18n"
	"github.com/pavelanni/spacequiz/internal/model"
	ws "github.com/pavelanni/spacequiz/internal/websocket"
)

// serverMessage decodes any server event. Only the snapshot fields the
// tests look at are declared.
type serverMessage struct {
	Event      ws.Event         `json:"event"`
	Error      string           `json:"error"`
	Banks      []model.BankInfo `json:"banks"`
	BankID     string           `json:"bank_id"`
	SampleSize int              `json:"sample_size"`
	Difficulty model.Difficulty `json:"difficulty"`
	Messages   []string         `json:"messages"`
	Snapshot   struct {
		Generation uint64          `json:"generation"`
		Tick       uint64          `json:"tick"`
		Phase      game.Phase      `json:"phase"`
		Outcomes   []model.Outcome `json:"outcomes"`
	} `json:"snapshot"`
}

type playClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialPlay(t *testing.T, env *testEnv) *playClient {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/play"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &playClient{t: t, conn: conn}
}

func (c *playClient) send(req ws.RequestPayload) {
	c.t.Helper()
	if err := c.conn.WriteJSON(req); err != nil {
		c.t.Fatalf("WriteJSON: %v", err)
	}
}

// next reads until a message matches cond.
func (c *playClient) next(cond func(serverMessage) bool) serverMessage {
	c.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		c.conn.SetReadDeadline(deadline)
		var msg serverMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.t.Fatalf("ReadJSON: %v", err)
		}
		if cond(msg) {
			return msg
		}
	}
}

func isEvent(e ws.Event) func(serverMessage) bool {
	return func(m serverMessage) bool { return m.Event == e }
}

func TestPlayGreetsWithBanksAndLobby(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "space", 4)
	c := dialPlay(t, env)

	banks := c.next(isEvent(ws.EventBanks))
	if len(banks.Banks) != 1 || banks.Banks[0].Count != 4 {
		t.Errorf("unexpected banks %+v", banks.Banks)
	}
	lobby := c.next(isEvent(ws.EventLobby))
	if lobby.BankID != "" || lobby.Difficulty != model.DifficultyEasy {
		t.Errorf("unexpected lobby %+v", lobby)
	}

	c.send(ws.RequestPayload{Action: ws.ActionPing})
	c.next(isEvent(ws.EventPong))
}

func TestPlayStartWithoutBank(t *testing.T) {
	env := newTestEnv(t)
	c := dialPlay(t, env)

	c.send(ws.RequestPayload{Action: ws.ActionStart})
	msg := c.next(isEvent(ws.EventError))
	if msg.Error != "Please choose a question bank first." {
		t.Errorf("unexpected error %q", msg.Error)
	}

	c.send(ws.RequestPayload{Action: ws.ActionFire, Label: "A"})
	msg = c.next(isEvent(ws.EventError))
	if msg.Error != "Start a game first." {
		t.Errorf("unexpected error %q", msg.Error)
	}
}

func TestPlayUnknownBankFailsToStart(t *testing.T) {
	env := newTestEnv(t)
	c := dialPlay(t, env)

	c.send(ws.RequestPayload{Action: ws.ActionSelectBank, BankID: "missing"})
	c.send(ws.RequestPayload{Action: ws.ActionStart})
	msg := c.next(isEvent(ws.EventError))
	if msg.Error != "Could not load the question bank. Please try again." {
		t.Errorf("unexpected error %q", msg.Error)
	}
}

func TestPlaySession(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "space", 5)
	c := dialPlay(t, env)

	c.send(ws.RequestPayload{Action: ws.ActionSelectBank, BankID: "space", SampleSize: "3"})
	c.send(ws.RequestPayload{Action: ws.ActionSetDifficulty, Difficulty: "advanced"})
	lobby := c.next(func(m serverMessage) bool { return m.Event == ws.EventLobby && m.Difficulty == model.DifficultyAdvanced })
	if lobby.BankID != "space" || lobby.SampleSize != 3 {
		t.Errorf("unexpected lobby %+v", lobby)
	}

	c.send(ws.RequestPayload{Action: ws.ActionStart})
	first := c.next(func(m serverMessage) bool { return m.Event == ws.EventSnapshot && m.Snapshot.Tick > 2 })
	if first.Snapshot.Phase != game.PhaseActive {
		t.Fatalf("expected active game, got %s", first.Snapshot.Phase)
	}
	if len(first.Snapshot.Outcomes) != 3 {
		t.Errorf("expected 3 sampled questions, got %d", len(first.Snapshot.Outcomes))
	}

	c.send(ws.RequestPayload{Action: ws.ActionKey, Key: "p", Down: true})
	paused := c.next(func(m serverMessage) bool { return m.Event == ws.EventSnapshot && m.Snapshot.Phase == game.PhasePaused })
	if len(paused.Messages) != 1 || paused.Messages[0] != "Paused" {
		t.Errorf("expected paused banner, got %v", paused.Messages)
	}

	c.send(ws.RequestPayload{Action: ws.ActionRestart})
	restarted := c.next(func(m serverMessage) bool {
		return m.Event == ws.EventSnapshot && m.Snapshot.Generation > first.Snapshot.Generation
	})
	if restarted.Snapshot.Phase != game.PhaseActive {
		t.Errorf("expected restart to be active, got %s", restarted.Snapshot.Phase)
	}

	c.send(ws.RequestPayload{Action: ws.ActionChangeBank})
	idle := c.next(isEvent(ws.EventLobby))
	if idle.BankID != "" {
		t.Errorf("expected bank cleared, got %q", idle.BankID)
	}
}

func TestEventMessages(t *testing.T) {
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer("en"))

	snap := game.Snapshot{
		Score: 5300,
		Events: []game.Event{
			{Type: game.EventDestroyed},
			{Type: game.EventCombo, Combo: 3},
			{Type: game.EventComboMilestone, Combo: 10},
			{Type: game.EventCombo, Combo: 12},
			{Type: game.EventInvincible},
			{Type: game.EventWon},
		},
	}
	want := []string{
		"3 COMBO!",
		"10 in a row, okay okay, you can stop practising!",
		"10 in a row, okay okay, you can stop practising!",
		"Shield up!",
		"Congratulations! You finished every question. Final score: 5300",
	}
	got := eventMessages(ctx, snap)
	if len(got) != len(want) {
		t.Fatalf("got %d messages %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}
