package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAssignCaptains(t *testing.T) {
	kickoff := time.Date(2025, time.June, 14, 19, 0, 0, 0, time.UTC)
	inWindow := kickoff.Add(-24 * time.Hour)

	ready := GateSnapshot{
		DraftPending:   true,
		Capacity:       10,
		RosteredCount:  10,
		ConfirmedCount: 10,
		Kickoff:        &kickoff,
		WindowHours:    48,
	}

	tests := []struct {
		name         string
		mutate       func(*GateSnapshot)
		captainCount int
		now          time.Time
		want         error
	}{
		{"no blocker", nil, 2, inWindow, nil},
		{"five even teams", nil, 5, inWindow, nil},
		{"draft already started", func(s *GateSnapshot) { s.DraftPending = false }, 2, inWindow, ErrDraftAlreadyStarted},
		{"roster short", func(s *GateSnapshot) { s.RosteredCount = 9 }, 2, inWindow, ErrRosterNotConfirmed},
		{"attendance missing", func(s *GateSnapshot) { s.ConfirmedCount = 8 }, 2, inWindow, ErrRosterNotConfirmed},
		{"one captain", nil, 1, inWindow, ErrTooFewCaptains},
		{"uneven split", nil, 3, inWindow, ErrUnevenTeams},
		{"no kickoff", func(s *GateSnapshot) { s.Kickoff = nil }, 2, inWindow, ErrKickoffRequired},
		{"before window", nil, 2, kickoff.Add(-49 * time.Hour), ErrOutsideDraftWindow},
		{"at kickoff", nil, 2, kickoff, ErrOutsideDraftWindow},
		{"just before kickoff", nil, 2, kickoff.Add(-time.Minute), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ready
			if tt.mutate != nil {
				tt.mutate(&snap)
			}
			assert.ErrorIs(t, CheckAssignCaptains(snap, tt.captainCount, tt.now), tt.want)
		})
	}
}

func TestCheckAssignCaptainsBlockerPriority(t *testing.T) {
	// Everything is wrong at once; the draft-status blocker wins.
	kickoff := time.Date(2025, time.June, 14, 19, 0, 0, 0, time.UTC)
	snap := GateSnapshot{
		DraftPending:   false,
		Capacity:       10,
		RosteredCount:  3,
		ConfirmedCount: 0,
		Kickoff:        nil,
		WindowHours:    48,
	}
	assert.ErrorIs(t, CheckAssignCaptains(snap, 1, kickoff), ErrDraftAlreadyStarted)
}
