package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/draft"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/queue"
	"github.com/rs/zerolog"
)

// Handler exposes the engine over JSON HTTP plus a per-game websocket feed.
type Handler struct {
	games  *games.App
	queue  *queue.App
	draft  *draft.App
	hub    *Hub
	logger zerolog.Logger
}

func NewHandler(gamesApp *games.App, queueApp *queue.App, draftApp *draft.App, hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		games:  gamesApp,
		queue:  queueApp,
		draft:  draftApp,
		hub:    hub,
		logger: logger,
	}
}

// Routes mounts all engine endpoints. Everything requires an identity;
// admin-only routes additionally verify community admin standing.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequireIdentity)

	r.Post("/games", h.createGame)
	r.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", h.getGame)
		r.Get("/queue", h.getQueue)
		r.Get("/notices", h.getNotices)
		r.Post("/join", h.join)
		r.Post("/leave", h.leave)
		r.Post("/grab", h.grabOpenSpot)
		r.Post("/confirm", h.confirmAttendance)

		r.Post("/participants", h.adminAdd)
		r.Post("/guests", h.adminAddGuest)

		r.Route("/draft", func(r chi.Router) {
			r.Get("/", h.getDraft)
			r.Post("/captains", h.assignCaptains)
			r.Post("/start", h.startDraft)
			r.Post("/picks", h.pickPlayer)
			r.Post("/undo", h.undoPick)
			r.Post("/finalize", h.finalizeDraft)
			r.Post("/reset", h.resetDraft)
		})
	})
	r.Delete("/queue/{queueID}", h.adminRemove)
	r.Get("/ws/games/{gameID}", h.serveWS)

	return r
}

func (h *Handler) gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return uuid.Nil, false
	}
	return id, true
}

// requireAdmin resolves the game and verifies the caller administers its
// community.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) (*models.Game, bool) {
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return nil, false
	}
	admin, err := h.games.RequireAdmin(r.Context(), game, identityFrom(r).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return nil, false
	}
	if !admin {
		writeError(w, http.StatusForbidden, "community admin required")
		return nil, false
	}
	return game, true
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var req games.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.games.CreateGame(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *Handler) getQueue(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	entries, err := h.queue.Roster(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) getNotices(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	times, err := h.games.NoticeTimes(r.Context(), game)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notice_times": times})
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	result, err := h.queue.Join(r.Context(), gameID, identityFrom(r).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	result, err := h.queue.Leave(r.Context(), gameID, identityFrom(r).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) grabOpenSpot(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	entry, err := h.queue.GrabOpenSpot(r.Context(), gameID, identityFrom(r).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) confirmAttendance(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	entry, err := h.queue.ConfirmAttendance(r.Context(), gameID, identityFrom(r).UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) adminAdd(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	if _, ok := h.requireAdmin(w, r, gameID); !ok {
		return
	}

	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := h.queue.AdminAdd(r.Context(), gameID, identityFrom(r).UserID, req.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) adminAddGuest(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	if _, ok := h.requireAdmin(w, r, gameID); !ok {
		return
	}

	var req struct {
		GuestName string `json:"guest_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuestName == "" {
		writeError(w, http.StatusBadRequest, "guest_name is required")
		return
	}

	result, err := h.queue.AdminAddGuest(r.Context(), gameID, identityFrom(r).UserID, req.GuestName)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) adminRemove(w http.ResponseWriter, r *http.Request) {
	queueID, err := uuid.Parse(chi.URLParam(r, "queueID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid queue id")
		return
	}

	entry, err := h.queue.GetEntry(r.Context(), queueID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if _, ok := h.requireAdmin(w, r, entry.GameID); !ok {
		return
	}

	result, err := h.queue.AdminRemove(r.Context(), queueID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	state, err := h.draft.DraftState(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// actor resolves the caller's draft standing. Pick is open to captains, so
// admin resolution failure matters only for admin-gated operations and is
// surfaced there.
func (h *Handler) actor(r *http.Request, game *models.Game) (draft.Actor, error) {
	identity := identityFrom(r)
	admin, err := h.games.RequireAdmin(r.Context(), game, identity.UserID)
	if err != nil {
		return draft.Actor{}, err
	}
	return draft.Actor{UserID: identity.UserID, Admin: admin}, nil
}

func (h *Handler) assignCaptains(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	actor, err := h.actor(r, game)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req struct {
		CaptainUserIDs []uuid.UUID `json:"captain_user_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	captains, err := h.draft.AssignCaptains(r.Context(), gameID, actor, req.CaptainUserIDs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"captains": captains})
}

func (h *Handler) startDraft(w http.ResponseWriter, r *http.Request) {
	h.draftAction(w, r, func(gameID uuid.UUID, actor draft.Actor) (any, error) {
		return h.draft.StartDraft(r.Context(), gameID, actor)
	})
}

func (h *Handler) pickPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID  uuid.UUID `json:"team_id"`
		EntryID uuid.UUID `json:"entry_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.draftAction(w, r, func(gameID uuid.UUID, actor draft.Actor) (any, error) {
		return h.draft.PickPlayer(r.Context(), gameID, actor, req.TeamID, req.EntryID)
	})
}

func (h *Handler) undoPick(w http.ResponseWriter, r *http.Request) {
	h.draftAction(w, r, func(gameID uuid.UUID, actor draft.Actor) (any, error) {
		return h.draft.UndoPick(r.Context(), gameID, actor)
	})
}

func (h *Handler) finalizeDraft(w http.ResponseWriter, r *http.Request) {
	h.draftAction(w, r, func(gameID uuid.UUID, actor draft.Actor) (any, error) {
		return map[string]string{"status": "completed"}, h.draft.FinalizeDraft(r.Context(), gameID, actor)
	})
}

func (h *Handler) resetDraft(w http.ResponseWriter, r *http.Request) {
	h.draftAction(w, r, func(gameID uuid.UUID, actor draft.Actor) (any, error) {
		return map[string]string{"status": "reset"}, h.draft.ResetDraft(r.Context(), gameID, actor)
	})
}

// draftAction factors the shared resolve-game, resolve-actor, respond steps
// of the draft mutations.
func (h *Handler) draftAction(w http.ResponseWriter, r *http.Request, fn func(gameID uuid.UUID, actor draft.Actor) (any, error)) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	actor, err := h.actor(r, game)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := fn(gameID, actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	if _, err := h.games.GetGame(r.Context(), gameID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.hub.ServeWS(w, r, gameID)
}
