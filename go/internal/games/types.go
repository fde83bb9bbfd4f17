package games

import (
	"time"

	"github.com/google/uuid"
)

// Defaults are community-level settings applied to new games unless the
// request overrides them. Loaded from the community config file.
type Defaults struct {
	ConfirmationWindowHours int      `yaml:"confirmation_window_hours"`
	JoinCutoffOffsetMin     int      `yaml:"join_cutoff_offset_min"`
	ConfirmationEnabled     bool     `yaml:"confirmation_enabled"`
	ReminderTimes           []string `yaml:"reminder_times"`
}

// CreateGameRequest creates a new scheduled game. Nil optionals fall back
// to the community defaults.
type CreateGameRequest struct {
	CommunityID             uuid.UUID  `json:"community_id"`
	Capacity                int        `json:"capacity"`
	WaitlistCapacity        int        `json:"waitlist_capacity"`
	Kickoff                 *time.Time `json:"kickoff,omitempty"`
	ConfirmationEnabled     *bool      `json:"confirmation_enabled,omitempty"`
	ConfirmationWindowHours *int       `json:"confirmation_window_hours,omitempty"`
	JoinCutoffOffsetMin     *int       `json:"join_cutoff_offset_min,omitempty"`
}
