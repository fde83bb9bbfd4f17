package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a notification event relayed through the outbox.
type EventType string

const (
	EventPlayerPromoted EventType = "PlayerPromoted"
	EventSpotOpened     EventType = "SpotOpened"
	EventRosterFull     EventType = "RosterFull"
	EventDraftReady     EventType = "DraftReady"
	EventDraftStarted   EventType = "DraftStarted"
	EventPickMade       EventType = "PickMade"
	EventDraftCompleted EventType = "DraftCompleted"
)

// Event is one outbox row. Rows are inserted in the same transaction as the
// state change that produced them and relayed to the message bus by the
// worker; delivery failures never reach back into the state machine.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	GameID    uuid.UUID       `json:"game_id"`
	EventType EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// Envelope is the wire form of an event on the message bus.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	GameID    string          `json:"game_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// PlayerPromotedPayload is the payload for a PlayerPromoted event.
type PlayerPromotedPayload struct {
	GameID     uuid.UUID  `json:"game_id"`
	EntryID    uuid.UUID  `json:"entry_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	PromotedAt time.Time  `json:"promoted_at"`
}

// SpotOpenedPayload is the payload for a SpotOpened event, emitted when a
// rostered spot opens up inside the confirmation window.
type SpotOpenedPayload struct {
	GameID        uuid.UUID `json:"game_id"`
	OpenedAt      time.Time `json:"opened_at"`
	RosteredCount int       `json:"rostered_count"`
	Capacity      int       `json:"capacity"`
}

// RosterFullPayload is the payload for a RosterFull event, emitted when a
// join or grab fills the last roster spot.
type RosterFullPayload struct {
	GameID   uuid.UUID `json:"game_id"`
	Capacity int       `json:"capacity"`
	FilledAt time.Time `json:"filled_at"`
}

// DraftReadyPayload is the payload for a DraftReady event.
type DraftReadyPayload struct {
	GameID         uuid.UUID   `json:"game_id"`
	CaptainUserIDs []uuid.UUID `json:"captain_user_ids"`
}

// DraftStartedPayload is the payload for a DraftStarted event.
type DraftStartedPayload struct {
	GameID      uuid.UUID `json:"game_id"`
	TeamCount   int       `json:"team_count"`
	FirstTeamID uuid.UUID `json:"first_team_id"`
	StartedAt   time.Time `json:"started_at"`
}

// PickMadePayload is the payload for a PickMade event.
type PickMadePayload struct {
	GameID    uuid.UUID `json:"game_id"`
	TeamID    uuid.UUID `json:"team_id"`
	EntryID   uuid.UUID `json:"entry_id"`
	PickOrder int       `json:"pick_order"`
	MadeAt    time.Time `json:"made_at"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
type DraftCompletedPayload struct {
	GameID      uuid.UUID `json:"game_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
}
