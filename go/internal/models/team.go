package models

import (
	"time"

	"github.com/google/uuid"
)

// Captain is a participant chosen to lead a team in a game's draft.
type Captain struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"game_id"`
	Slot      int       `json:"slot"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Team is one side of a drafted game. DraftOrder is the team's position in
// the snake sequence, assigned at creation and immutable afterward.
type Team struct {
	ID             uuid.UUID `json:"id"`
	GameID         uuid.UUID `json:"game_id"`
	Name           string    `json:"name"`
	DraftOrder     int       `json:"draft_order"`
	CaptainUserID  uuid.UUID `json:"captain_user_id"`
	CaptainEntryID uuid.UUID `json:"captain_entry_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// TeamMember assigns a queue entry to a team. PickOrder is a strictly
// increasing counter across all teams in a game; captains are seeded at
// pick order 0 with AssignedBy set to themselves.
type TeamMember struct {
	ID         uuid.UUID `json:"id"`
	TeamID     uuid.UUID `json:"team_id"`
	GameID     uuid.UUID `json:"game_id"`
	EntryID    uuid.UUID `json:"entry_id"`
	PickOrder  int       `json:"pick_order"`
	AssignedAt time.Time `json:"assigned_at"`
	AssignedBy uuid.UUID `json:"assigned_by"`
}
