package websocket

import (
	"github.com/pavelanni/spacequiz/internal/game"
	"github.com/pavelanni/spacequiz/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionListBanks     Action = "list_banks"
	ActionSelectBank    Action = "select_bank"
	ActionSetDifficulty Action = "set_difficulty"
	ActionStart         Action = "start"
	ActionRestart       Action = "restart"
	ActionChangeBank    Action = "change_bank"
	ActionKey           Action = "key"
	ActionMove          Action = "move"
	ActionFire          Action = "fire"
	ActionPause         Action = "pause"
	ActionPing          Action = "ping"
)

// RequestPayload carries every client action. Only the fields relevant to
// Action are read.
type RequestPayload struct {
	Action Action `json:"action"`

	// select_bank
	BankID     string `json:"bank_id,omitempty"`
	SampleSize string `json:"sample_size,omitempty"`

	// set_difficulty
	Difficulty string `json:"difficulty,omitempty"`

	// key: a KeyboardEvent.key value and whether it was pressed or released
	Key  string `json:"key,omitempty"`
	Down bool   `json:"down,omitempty"`

	// move
	Direction string `json:"direction,omitempty"`
	On        bool   `json:"on,omitempty"`

	// fire
	Label string `json:"label,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventBanks    Event = "banks"
	EventLobby    Event = "lobby"
	EventSnapshot Event = "snapshot"
	EventPong     Event = "pong"
)

type BanksResponse struct {
	Event Event            `json:"event"`
	Banks []model.BankInfo `json:"banks"`
}

type LobbyResponse struct {
	Event      Event            `json:"event"`
	BankID     string           `json:"bank_id"`
	SampleSize int              `json:"sample_size"`
	Difficulty model.Difficulty `json:"difficulty"`
}

// SnapshotResponse pairs a game snapshot with localized banner text for
// the events it carries.
type SnapshotResponse struct {
	Event    Event         `json:"event"`
	Snapshot game.Snapshot `json:"snapshot"`
	Messages []string      `json:"messages,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
