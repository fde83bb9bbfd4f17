package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/matchday/go/internal/draft"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/queue"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var notFoundErrors = []error{
	games.ErrGameNotFound,
	games.ErrCommunityNotFound,
	queue.ErrQueueEntryNotFound,
}

var forbiddenErrors = []error{
	queue.ErrNotMember,
	draft.ErrForbidden,
}

// conflictErrors are preconditions that failed against current state,
// including conditional writes that lost a race.
var conflictErrors = []error{
	queue.ErrGameNotOpen,
	queue.ErrJoinCutoffPassed,
	queue.ErrDraftInProgress,
	queue.ErrGameFull,
	queue.ErrAlreadyJoined,
	queue.ErrNoOpenSpot,
	queue.ErrConfirmationClosed,
	queue.ErrConfirmationDisabled,
	queue.ErrAlreadyConfirmed,
	draft.ErrDraftAlreadyStarted,
	draft.ErrDraftNotReady,
	draft.ErrDraftNotInProgress,
	draft.ErrNotYourTurn,
	draft.ErrPlayerAlreadyDrafted,
	draft.ErrNoPicksToUndo,
	draft.ErrOutsideDraftWindow,
}

var unprocessableErrors = []error{
	games.ErrInvalidCapacity,
	games.ErrInvalidWaitlist,
	queue.ErrNotWaitlisted,
	queue.ErrNotRostered,
	draft.ErrRosterNotConfirmed,
	draft.ErrTooFewCaptains,
	draft.ErrUnevenTeams,
	draft.ErrKickoffRequired,
	draft.ErrCaptainNotOnRoster,
	draft.ErrDuplicateCaptain,
	draft.ErrInvalidTeam,
	draft.ErrPlayerNotOnRoster,
	draft.ErrPlayerNotConfirmed,
	draft.ErrDraftIncomplete,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps domain sentinel errors onto HTTP statuses; anything
// unrecognized is a 500 with the detail kept out of the response body.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case matchesAny(err, notFoundErrors):
		writeError(w, http.StatusNotFound, err.Error())
	case matchesAny(err, forbiddenErrors):
		writeError(w, http.StatusForbidden, err.Error())
	case matchesAny(err, conflictErrors):
		writeError(w, http.StatusConflict, err.Error())
	case matchesAny(err, unprocessableErrors):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
