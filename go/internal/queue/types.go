package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// InsertEntryParams are the row values for a new queue entry.
type InsertEntryParams struct {
	ID        uuid.UUID
	GameID    uuid.UUID
	UserID    *uuid.UUID
	GuestName *string
	AddedBy   *uuid.UUID
	Status    models.QueueStatus
	JoinedAt  time.Time
}

// JoinResult reports the status a participant landed in after joining.
type JoinResult struct {
	Entry  *models.QueueEntry `json:"entry"`
	Status models.QueueStatus `json:"status"`
}

// LeaveResult reports the outcome of a leave or admin removal. Promoted is
// the waitlisted entry that took the vacated roster spot, if any; callers
// use it to notify the promoted player.
type LeaveResult struct {
	GameID      uuid.UUID          `json:"game_id"`
	WasRostered bool               `json:"was_rostered"`
	Promoted    *models.QueueEntry `json:"promoted,omitempty"`
}
