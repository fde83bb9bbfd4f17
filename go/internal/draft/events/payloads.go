// Package events defines the typed payloads stored in the draft event log.
// The log is append-only; the only in-place mutation anywhere is flipping a
// pick payload's undone flag, and that is a conditional update keyed by
// event id.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StartPayload is the payload for a start event.
type StartPayload struct {
	TeamCount int         `json:"team_count"`
	TeamIDs   []uuid.UUID `json:"team_ids"`
	StartedAt time.Time   `json:"started_at"`
}

// PickPayload is the payload for a pick event. TurnBefore and
// DirectionBefore snapshot the sequencer state at the moment of the pick;
// undo restores them verbatim, which reverses any number of snake boundary
// flips without recomputing.
type PickPayload struct {
	PickOrder       int        `json:"pick_order"`
	TurnBefore      int        `json:"turn_before"`
	DirectionBefore int        `json:"direction_before"`
	Undone          bool       `json:"undone"`
	UndoneBy        *uuid.UUID `json:"undone_by,omitempty"`
	UndoneAt        *time.Time `json:"undone_at,omitempty"`
}

// UndoPayload is the payload for an undo event, cross-referencing the pick
// it reversed.
type UndoPayload struct {
	UndoneEventID uuid.UUID `json:"undone_event_id"`
	TeamID        uuid.UUID `json:"team_id"`
	EntryID       uuid.UUID `json:"entry_id"`
}

// ResetPayload is the payload for a reset event, the first row of a fresh
// lifecycle after the previous log was cleared.
type ResetPayload struct {
	Reason  string    `json:"reason"`
	ResetAt time.Time `json:"reset_at"`
}

// FinalizePayload is the payload for a finalize event.
type FinalizePayload struct {
	TotalPicks  int       `json:"total_picks"`
	FinalizedAt time.Time `json:"finalized_at"`
}
