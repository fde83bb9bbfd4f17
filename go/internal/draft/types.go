package draft

import (
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// undoLookback bounds how many recent pick events undo scans for the first
// one not already undone. Fifty covers any realistic pickup game several
// times over.
const undoLookback = 50

// Actor identifies who is performing a draft operation. Admin is resolved
// from community membership by the transport layer.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// StartResult reports the teams created when a draft opens, in draft order.
type StartResult struct {
	Teams []models.Team `json:"teams"`
}

// PickResult reports a completed pick and where the turn pointer landed.
type PickResult struct {
	Member        models.TeamMember `json:"member"`
	NextTurn      int               `json:"next_turn"`
	NextDirection int               `json:"next_direction"`
}

// UndoResult reports which pick was reversed and the restored turn state.
type UndoResult struct {
	UndoneEventID     uuid.UUID `json:"undone_event_id"`
	TeamID            uuid.UUID `json:"team_id"`
	EntryID           uuid.UUID `json:"entry_id"`
	RestoredTurn      int       `json:"restored_turn"`
	RestoredDirection int       `json:"restored_direction"`
}

// State is the read view of a game's draft.
type State struct {
	Captains []models.Captain    `json:"captains"`
	Teams    []models.Team       `json:"teams"`
	Members  []models.TeamMember `json:"members"`
	Events   []models.DraftEvent `json:"events"`
}
