package queue

import "errors"

// Precondition violations surfaced to callers. A conditional write that
// loses a race reports the same error as a precondition that was never
// true; both require the caller to refresh and re-render.
var (
	ErrGameNotOpen          = errors.New("game is not open for changes")
	ErrJoinCutoffPassed     = errors.New("join cutoff has passed")
	ErrNotMember            = errors.New("not a member of this community")
	ErrDraftInProgress      = errors.New("draft has already started for this game")
	ErrGameFull             = errors.New("game and waitlist are full")
	ErrAlreadyJoined        = errors.New("already in the queue for this game")
	ErrQueueEntryNotFound   = errors.New("queue entry not found")
	ErrNotWaitlisted        = errors.New("only waitlisted players can grab an open spot")
	ErrNoOpenSpot           = errors.New("no open roster spot")
	ErrConfirmationDisabled = errors.New("attendance confirmation is not enabled for this game")
	ErrConfirmationClosed   = errors.New("confirmation window is not open")
	ErrNotRostered          = errors.New("only rostered players can confirm attendance")
	ErrAlreadyConfirmed     = errors.New("attendance already confirmed")
)
