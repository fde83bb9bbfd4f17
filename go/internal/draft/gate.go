package draft

import (
	"time"

	"github.com/mcdev12/matchday/go/internal/timewindow"
)

// GateSnapshot is the single consistent view the captain gate validates
// against. Callers build it inside the game's row lock so no field can go
// stale mid-check.
type GateSnapshot struct {
	DraftPending   bool
	Capacity       int
	RosteredCount  int
	ConfirmedCount int
	Kickoff        *time.Time
	WindowHours    int
}

// CheckAssignCaptains returns the first blocker preventing captain
// assignment, or nil. Blockers are reported in a fixed priority order so a
// client always sees the most fundamental problem first.
func CheckAssignCaptains(snap GateSnapshot, captainCount int, now time.Time) error {
	if !snap.DraftPending {
		return ErrDraftAlreadyStarted
	}
	if snap.RosteredCount != snap.Capacity || snap.ConfirmedCount != snap.Capacity {
		return ErrRosterNotConfirmed
	}
	if captainCount < 2 {
		return ErrTooFewCaptains
	}
	if snap.RosteredCount%captainCount != 0 {
		return ErrUnevenTeams
	}
	if snap.Kickoff == nil {
		return ErrKickoffRequired
	}
	start := timewindow.ConfirmationWindowStart(*snap.Kickoff, snap.WindowHours)
	if now.Before(start) || !now.Before(*snap.Kickoff) {
		return ErrOutsideDraftWindow
	}
	return nil
}
