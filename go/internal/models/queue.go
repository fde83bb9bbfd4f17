package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueStatus defines a participant's standing in a game queue. There is no
// "none" status: a participant who never joined simply has no row.
type QueueStatus string

const (
	QueueStatusRostered   QueueStatus = "ROSTERED"
	QueueStatusWaitlisted QueueStatus = "WAITLISTED"
	QueueStatusDropped    QueueStatus = "DROPPED"
)

// QueueEntry is one participant's relationship to one game. Registered
// participants carry UserID; guests carry GuestName plus the profile that
// added them.
type QueueEntry struct {
	ID          uuid.UUID   `json:"id"`
	GameID      uuid.UUID   `json:"game_id"`
	UserID      *uuid.UUID  `json:"user_id,omitempty"`
	GuestName   *string     `json:"guest_name,omitempty"`
	AddedBy     *uuid.UUID  `json:"added_by,omitempty"`
	Status      QueueStatus `json:"status"`
	JoinedAt    time.Time   `json:"joined_at"`
	PromotedAt  *time.Time  `json:"promoted_at,omitempty"`
	DroppedAt   *time.Time  `json:"dropped_at,omitempty"`
	ConfirmedAt *time.Time  `json:"confirmed_at,omitempty"`
}

// Active reports whether the entry still occupies a roster or waitlist spot.
func (e *QueueEntry) Active() bool {
	return e.Status == QueueStatusRostered || e.Status == QueueStatusWaitlisted
}
