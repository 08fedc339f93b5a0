package game

import "github.com/pavelanni/spacequiz/internal/model"

// EventType names something that happened during a tick or command.
type EventType string

const (
	EventStarted          EventType = "started"
	EventSpawned          EventType = "spawned"
	EventDestroyed        EventType = "destroyed"
	EventWrong            EventType = "wrong"
	EventToggled          EventType = "toggled"
	EventEscaped          EventType = "escaped"
	EventDamaged          EventType = "damaged"
	EventInvincible       EventType = "invincible"
	EventInvincibleEnded  EventType = "invincible_ended"
	EventCombo            EventType = "combo"
	EventComboMilestone   EventType = "combo_milestone"
	EventComboBannerEnded EventType = "combo_banner_ended"
	EventPaused           EventType = "paused"
	EventResumed          EventType = "resumed"
	EventWon              EventType = "won"
	EventLost             EventType = "lost"
)

// Event is delivered to the rendering side with the next snapshot.
type Event struct {
	Type     EventType   `json:"type"`
	Question int         `json:"question"`
	Label    model.Label `json:"label,omitempty"`
	Points   int         `json:"points,omitempty"`
	Shields  int         `json:"shields,omitempty"`
	Combo    int         `json:"combo,omitempty"`
	Health   int         `json:"health,omitempty"`
}
