package draft

import "errors"

var (
	ErrDraftNotInProgress   = errors.New("draft is not in progress")
	ErrDraftNotReady        = errors.New("captains have not been assigned")
	ErrInvalidTeam          = errors.New("team does not belong to this game")
	ErrForbidden            = errors.New("actor may not act in this draft")
	ErrNotYourTurn          = errors.New("not this team's turn to pick")
	ErrPlayerNotOnRoster    = errors.New("player is not on the roster")
	ErrPlayerNotConfirmed   = errors.New("player has not confirmed attendance")
	ErrPlayerAlreadyDrafted = errors.New("player is already on a team")
	ErrNoPicksToUndo        = errors.New("no picks to undo")
	ErrDraftIncomplete      = errors.New("confirmed roster is not fully drafted")

	// CaptainAssignmentGate blockers, in the order the gate checks them.
	ErrDraftAlreadyStarted = errors.New("draft already started")
	ErrRosterNotConfirmed  = errors.New("full roster must be confirmed")
	ErrTooFewCaptains      = errors.New("at least two captains required")
	ErrUnevenTeams         = errors.New("captain count must divide evenly into the confirmed roster")
	ErrKickoffRequired     = errors.New("start time required")
	ErrOutsideDraftWindow  = errors.New("draft only available within the confirmation window")
	ErrCaptainNotOnRoster  = errors.New("captain is not a confirmed rostered player")
	ErrDuplicateCaptain    = errors.New("duplicate captain")
)
