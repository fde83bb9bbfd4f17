package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus defines the lifecycle status of a game.
type GameStatus string

const (
	GameStatusScheduled GameStatus = "SCHEDULED"
	GameStatusCancelled GameStatus = "CANCELLED"
	GameStatusCompleted GameStatus = "COMPLETED"
)

// DraftStatus defines the status of a game's captain draft.
type DraftStatus string

const (
	DraftStatusPending    DraftStatus = "PENDING"
	DraftStatusReady      DraftStatus = "READY"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// Snake draft directions. Turn/direction are meaningful only while the
// draft is IN_PROGRESS; both are nil otherwise.
const (
	DirectionForward  = 1
	DirectionBackward = -1
)

// Game represents a scheduled pickup game.
type Game struct {
	ID                      uuid.UUID   `json:"id"`
	CommunityID             uuid.UUID   `json:"community_id"`
	Status                  GameStatus  `json:"status"`
	Capacity                int         `json:"capacity"`
	WaitlistCapacity        int         `json:"waitlist_capacity"`
	Kickoff                 *time.Time  `json:"kickoff,omitempty"`
	ConfirmationEnabled     bool        `json:"confirmation_enabled"`
	ConfirmationWindowHours int         `json:"confirmation_window_hours"`
	JoinCutoffOffsetMin     int         `json:"join_cutoff_offset_min"`
	DraftStatus             DraftStatus `json:"draft_status"`
	DraftTurn               *int        `json:"draft_turn,omitempty"`
	DraftDirection          *int        `json:"draft_direction,omitempty"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at"`
}
