package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DraftEventAction discriminates the draft event log entries.
type DraftEventAction string

const (
	DraftEventStart    DraftEventAction = "START"
	DraftEventPick     DraftEventAction = "PICK"
	DraftEventUndo     DraftEventAction = "UNDO"
	DraftEventReset    DraftEventAction = "RESET"
	DraftEventFinalize DraftEventAction = "FINALIZE"
)

// DraftEvent is one row of the append-only draft log. Payload holds the
// action-specific payload struct (see the draft/events package) serialized
// as JSONB; events are never deleted outside a draft reset.
type DraftEvent struct {
	ID        uuid.UUID        `json:"id"`
	GameID    uuid.UUID        `json:"game_id"`
	Action    DraftEventAction `json:"action"`
	TeamID    *uuid.UUID       `json:"team_id,omitempty"`
	EntryID   *uuid.UUID       `json:"entry_id,omitempty"`
	CreatedBy uuid.UUID        `json:"created_by"`
	CreatedAt time.Time        `json:"created_at"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
}
