package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/draft"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRequireIdentity(t *testing.T) {
	userID := uuid.New()
	var got Identity
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = identityFrom(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/games/x/join", nil)
	req.Header.Set("X-User-ID", userID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, got.UserID)
}

func TestRequireIdentityRejectsMissingHeader(t *testing.T) {
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	for _, header := range []string{"", "not-a-uuid"} {
		req := httptest.NewRequest(http.MethodPost, "/games/x/join", nil)
		if header != "" {
			req.Header.Set("X-User-ID", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestRespondErrorStatusMapping(t *testing.T) {
	h := &Handler{logger: zerolog.Nop()}

	tests := []struct {
		err  error
		want int
	}{
		{games.ErrGameNotFound, http.StatusNotFound},
		{queue.ErrQueueEntryNotFound, http.StatusNotFound},
		{queue.ErrNotMember, http.StatusForbidden},
		{draft.ErrForbidden, http.StatusForbidden},
		{queue.ErrGameFull, http.StatusConflict},
		{queue.ErrAlreadyConfirmed, http.StatusConflict},
		{draft.ErrNotYourTurn, http.StatusConflict},
		{draft.ErrUnevenTeams, http.StatusUnprocessableEntity},
		{queue.ErrNotWaitlisted, http.StatusUnprocessableEntity},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			h.respondError(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
