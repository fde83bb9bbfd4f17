package models

import (
	"time"

	"github.com/google/uuid"
)

// Community is a group of players that schedules games together.
type Community struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// CommunityMember links a user profile to a community. Admin members may
// manage queues and run drafts.
type CommunityMember struct {
	CommunityID uuid.UUID `json:"community_id"`
	UserID      uuid.UUID `json:"user_id"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}
