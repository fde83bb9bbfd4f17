package queue

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore models the production store in memory. A single mutex stands in
// for the per-game row lock: WithGameTx holds it for the whole callback, so
// operations on one game serialize exactly as they do against Postgres.
type fakeStore struct {
	mu      sync.Mutex
	games   map[uuid.UUID]*models.Game
	entries []*models.QueueEntry
	members map[uuid.UUID]bool
	admins  map[uuid.UUID]bool
	events  []recordedEvent
	resets  int
}

type recordedEvent struct {
	eventType outbox.EventType
	payload   any
}

func newFakeStore(game *models.Game) *fakeStore {
	return &fakeStore{
		games:   map[uuid.UUID]*models.Game{game.ID: game},
		members: map[uuid.UUID]bool{},
		admins:  map[uuid.UUID]bool{},
	}
}

func (s *fakeStore) WithGameTx(ctx context.Context, gameID uuid.UUID, fn func(q Queries, game *models.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return games.ErrGameNotFound
	}
	return fn(&fakeQueries{s: s}, game)
}

func (s *fakeStore) GetEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findEntry(id)
}

func (s *fakeStore) ListActive(ctx context.Context, gameID uuid.UUID) ([]models.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range s.entries {
		if e.GameID == gameID && e.Active() {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *fakeStore) findEntry(id uuid.UUID) (*models.QueueEntry, bool, error) {
	for _, e := range s.entries {
		if e.ID == id {
			copied := *e
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (s *fakeStore) eventTypes() []outbox.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]outbox.EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.eventType
	}
	return types
}

// fakeQueries runs against the store without re-locking; the enclosing
// WithGameTx already holds the lock.
type fakeQueries struct {
	s *fakeStore
}

func (q *fakeQueries) InsertEntry(ctx context.Context, params InsertEntryParams) (*models.QueueEntry, error) {
	if params.UserID != nil {
		for _, e := range q.s.entries {
			if e.GameID == params.GameID && e.UserID != nil && *e.UserID == *params.UserID && e.Active() {
				return nil, ErrAlreadyJoined
			}
		}
	}
	entry := &models.QueueEntry{
		ID:        params.ID,
		GameID:    params.GameID,
		UserID:    params.UserID,
		GuestName: params.GuestName,
		AddedBy:   params.AddedBy,
		Status:    params.Status,
		JoinedAt:  params.JoinedAt,
	}
	q.s.entries = append(q.s.entries, entry)
	copied := *entry
	return &copied, nil
}

func (q *fakeQueries) GetEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, bool, error) {
	return q.s.findEntry(id)
}

func (q *fakeQueries) FindActiveEntry(ctx context.Context, gameID, userID uuid.UUID) (*models.QueueEntry, bool, error) {
	for _, e := range q.s.entries {
		if e.GameID == gameID && e.UserID != nil && *e.UserID == userID && e.Active() {
			copied := *e
			return &copied, true, nil
		}
	}
	return nil, false, nil
}

func (q *fakeQueries) CountByStatus(ctx context.Context, gameID uuid.UUID) (int, int, error) {
	var rostered, waitlisted int
	for _, e := range q.s.entries {
		if e.GameID != gameID {
			continue
		}
		switch e.Status {
		case models.QueueStatusRostered:
			rostered++
		case models.QueueStatusWaitlisted:
			waitlisted++
		}
	}
	return rostered, waitlisted, nil
}

func (q *fakeQueries) NextWaitlisted(ctx context.Context, gameID uuid.UUID) (*models.QueueEntry, bool, error) {
	var next *models.QueueEntry
	for _, e := range q.s.entries {
		if e.GameID != gameID || e.Status != models.QueueStatusWaitlisted {
			continue
		}
		if next == nil || e.JoinedAt.Before(next.JoinedAt) ||
			(e.JoinedAt.Equal(next.JoinedAt) && e.ID.String() < next.ID.String()) {
			next = e
		}
	}
	if next == nil {
		return nil, false, nil
	}
	copied := *next
	return &copied, true, nil
}

func (q *fakeQueries) DropEntry(ctx context.Context, id uuid.UUID, droppedAt time.Time) (bool, error) {
	for _, e := range q.s.entries {
		if e.ID == id && e.Active() {
			e.Status = models.QueueStatusDropped
			e.DroppedAt = &droppedAt
			return true, nil
		}
	}
	return false, nil
}

func (q *fakeQueries) PromoteEntry(ctx context.Context, id uuid.UUID, promotedAt time.Time) (bool, error) {
	for _, e := range q.s.entries {
		if e.ID == id && e.Status == models.QueueStatusWaitlisted {
			e.Status = models.QueueStatusRostered
			e.PromotedAt = &promotedAt
			return true, nil
		}
	}
	return false, nil
}

func (q *fakeQueries) GrabSpot(ctx context.Context, id, gameID uuid.UUID, capacity int, promotedAt time.Time) (bool, error) {
	rostered, _, _ := q.CountByStatus(ctx, gameID)
	if rostered >= capacity {
		return false, nil
	}
	return q.PromoteEntry(ctx, id, promotedAt)
}

func (q *fakeQueries) ConfirmEntry(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	for _, e := range q.s.entries {
		if e.ID == id && e.Status == models.QueueStatusRostered && e.ConfirmedAt == nil {
			e.ConfirmedAt = &confirmedAt
			return true, nil
		}
	}
	return false, nil
}

func (q *fakeQueries) IsCommunityMember(ctx context.Context, communityID, userID uuid.UUID) (bool, bool, error) {
	return q.s.members[userID], q.s.admins[userID], nil
}

func (q *fakeQueries) EmitEvent(ctx context.Context, gameID uuid.UUID, eventType outbox.EventType, payload any) error {
	q.s.events = append(q.s.events, recordedEvent{eventType: eventType, payload: payload})
	return nil
}

func (q *fakeQueries) ResetDraft(ctx context.Context, game *models.Game) error {
	game.DraftStatus = models.DraftStatusPending
	game.DraftTurn = nil
	game.DraftDirection = nil
	q.s.resets++
	return nil
}

var baseKickoff = time.Date(2025, time.June, 14, 19, 0, 0, 0, time.UTC)

func testGame(capacity, waitlist int) *models.Game {
	kickoff := baseKickoff
	return &models.Game{
		ID:                      uuid.New(),
		CommunityID:             uuid.New(),
		Status:                  models.GameStatusScheduled,
		Capacity:                capacity,
		WaitlistCapacity:        waitlist,
		Kickoff:                 &kickoff,
		ConfirmationEnabled:     true,
		ConfirmationWindowHours: 48,
		JoinCutoffOffsetMin:     60,
		DraftStatus:             models.DraftStatusPending,
	}
}

// newTestApp starts the clock a week before kickoff, well outside the
// confirmation window.
func newTestApp(game *models.Game) (*App, *fakeStore, *clockwork.FakeClock) {
	store := newFakeStore(game)
	clock := clockwork.NewFakeClockAt(baseKickoff.Add(-7 * 24 * time.Hour))
	app := NewApp(store, clock, zerolog.Nop())
	return app, store, clock
}

func (s *fakeStore) addMember(userID uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[userID] = true
	return userID
}

func newMember(s *fakeStore) uuid.UUID {
	return s.addMember(uuid.New())
}

func TestJoinFillsRosterThenWaitlist(t *testing.T) {
	game := testGame(2, 1)
	app, store, _ := newTestApp(game)
	ctx := context.Background()

	a, b, c, d := newMember(store), newMember(store), newMember(store), newMember(store)

	res, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusRostered, res.Status)

	res, err = app.Join(ctx, game.ID, b)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusRostered, res.Status)

	res, err = app.Join(ctx, game.ID, c)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusWaitlisted, res.Status)

	_, err = app.Join(ctx, game.ID, d)
	assert.ErrorIs(t, err, ErrGameFull)

	// second join fills the roster
	assert.Equal(t, []outbox.EventType{outbox.EventRosterFull}, store.eventTypes())
}

func TestJoinRejectsNonMember(t *testing.T) {
	game := testGame(4, 2)
	app, _, _ := newTestApp(game)

	_, err := app.Join(context.Background(), game.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestJoinRejectsDuplicate(t *testing.T) {
	game := testGame(4, 2)
	app, store, _ := newTestApp(game)
	ctx := context.Background()
	user := newMember(store)

	_, err := app.Join(ctx, game.ID, user)
	require.NoError(t, err)

	_, err = app.Join(ctx, game.ID, user)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestJoinAfterCutoff(t *testing.T) {
	game := testGame(4, 2)
	app, store, clock := newTestApp(game)
	user := newMember(store)

	// advance to the cutoff instant itself; the window is half-open
	clock.Advance(baseKickoff.Add(-60 * time.Minute).Sub(clock.Now()))

	_, err := app.Join(context.Background(), game.ID, user)
	assert.ErrorIs(t, err, ErrJoinCutoffPassed)
}

func TestJoinBlockedOnceDraftStarted(t *testing.T) {
	game := testGame(4, 2)
	game.DraftStatus = models.DraftStatusReady
	app, store, _ := newTestApp(game)
	user := newMember(store)

	_, err := app.Join(context.Background(), game.ID, user)
	assert.ErrorIs(t, err, ErrDraftInProgress)
}

func TestJoinCancelledGame(t *testing.T) {
	game := testGame(4, 2)
	game.Status = models.GameStatusCancelled
	app, store, _ := newTestApp(game)
	user := newMember(store)

	_, err := app.Join(context.Background(), game.ID, user)
	assert.ErrorIs(t, err, ErrGameNotOpen)
}

func TestLeavePromotesEarliestWaitlisted(t *testing.T) {
	game := testGame(2, 3)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a, b := newMember(store), newMember(store)
	w1, w2 := newMember(store), newMember(store)

	for _, u := range []uuid.UUID{a, b, w1} {
		_, err := app.Join(ctx, game.ID, u)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	_, err := app.Join(ctx, game.ID, w2)
	require.NoError(t, err)

	res, err := app.Leave(ctx, game.ID, a)
	require.NoError(t, err)
	assert.True(t, res.WasRostered)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, w1, *res.Promoted.UserID)
	assert.Equal(t, models.QueueStatusRostered, res.Promoted.Status)
	require.NotNil(t, res.Promoted.PromotedAt)
	assert.Equal(t, clock.Now(), *res.Promoted.PromotedAt)

	// FIFO continues: next vacancy goes to w2
	res, err = app.Leave(ctx, game.ID, b)
	require.NoError(t, err)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, w2, *res.Promoted.UserID)

	assert.Contains(t, store.eventTypes(), outbox.EventPlayerPromoted)
}

func TestLeaveScenarioCapacityTwoWaitlistOne(t *testing.T) {
	game := testGame(2, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a, b, c := newMember(store), newMember(store), newMember(store)
	for _, u := range []uuid.UUID{a, b, c} {
		_, err := app.Join(ctx, game.ID, u)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	res, err := app.Leave(ctx, game.ID, a)
	require.NoError(t, err)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, c, *res.Promoted.UserID)

	roster, err := app.Roster(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	for _, e := range roster {
		assert.Equal(t, models.QueueStatusRostered, e.Status)
	}
}

func TestLeaveWaitlistedDoesNotPromote(t *testing.T) {
	game := testGame(1, 2)
	app, store, _ := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	_, err = app.Join(ctx, game.ID, w)
	require.NoError(t, err)

	res, err := app.Leave(ctx, game.ID, w)
	require.NoError(t, err)
	assert.False(t, res.WasRostered)
	assert.Nil(t, res.Promoted)
}

func TestLeaveWaitlistedKeepsActiveDraft(t *testing.T) {
	game := testGame(1, 2)
	app, store, _ := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	resW, err := app.Join(ctx, game.ID, w)
	require.NoError(t, err)
	require.Equal(t, models.QueueStatusWaitlisted, resW.Status)

	game.DraftStatus = models.DraftStatusInProgress

	// a waitlist departure never changes roster fullness
	res, err := app.Leave(ctx, game.ID, w)
	require.NoError(t, err)
	assert.False(t, res.WasRostered)
	assert.Equal(t, 0, store.resets)
	assert.Equal(t, models.DraftStatusInProgress, game.DraftStatus)

	// nor does admin removal of a waitlisted entry
	resW2, err := app.AdminAddGuest(ctx, game.ID, a, "late guest")
	require.NoError(t, err)
	require.Equal(t, models.QueueStatusWaitlisted, resW2.Status)
	res, err = app.AdminRemove(ctx, resW2.Entry.ID)
	require.NoError(t, err)
	assert.False(t, res.WasRostered)
	assert.Equal(t, 0, store.resets)
	assert.Equal(t, models.DraftStatusInProgress, game.DraftStatus)
}

func TestLeaveCancelledGameDropsWithoutPromotion(t *testing.T) {
	game := testGame(1, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = app.Join(ctx, game.ID, w)
	require.NoError(t, err)

	game.Status = models.GameStatusCancelled

	res, err := app.Leave(ctx, game.ID, a)
	require.NoError(t, err)
	assert.True(t, res.WasRostered)
	assert.Nil(t, res.Promoted)
	assert.NotContains(t, store.eventTypes(), outbox.EventPlayerPromoted)
	assert.NotContains(t, store.eventTypes(), outbox.EventSpotOpened)

	roster, err := app.Roster(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, models.QueueStatusWaitlisted, roster[0].Status)
}

func TestLeaveWithoutEntry(t *testing.T) {
	game := testGame(2, 1)
	app, store, _ := newTestApp(game)

	_, err := app.Leave(context.Background(), game.ID, newMember(store))
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)
}

func TestLeaveInWindowAnnouncesOpenSpot(t *testing.T) {
	game := testGame(2, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a := newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)

	// inside [kickoff-48h, kickoff-60m), waitlist empty
	clock.Advance(baseKickoff.Add(-3 * time.Hour).Sub(clock.Now()))

	_, err = app.Leave(ctx, game.ID, a)
	require.NoError(t, err)
	assert.Equal(t, []outbox.EventType{outbox.EventSpotOpened}, store.eventTypes())
}

func TestGrabOpenSpot(t *testing.T) {
	game := testGame(2, 2)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	rostered, waitlisted := newMember(store), newMember(store)
	_, err := app.Join(ctx, game.ID, rostered)
	require.NoError(t, err)

	// seed a waitlisted entry alongside an open roster spot
	store.mu.Lock()
	wid := waitlisted
	store.entries = append(store.entries, &models.QueueEntry{
		ID:       uuid.New(),
		GameID:   game.ID,
		UserID:   &wid,
		Status:   models.QueueStatusWaitlisted,
		JoinedAt: clock.Now(),
	})
	store.mu.Unlock()

	entry, err := app.GrabOpenSpot(ctx, game.ID, waitlisted)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusRostered, entry.Status)
	require.NotNil(t, entry.PromotedAt)

	// roster is now full
	assert.Contains(t, store.eventTypes(), outbox.EventRosterFull)
}

func TestGrabOpenSpotFullRoster(t *testing.T) {
	game := testGame(1, 2)
	app, store, _ := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	_, err = app.Join(ctx, game.ID, w)
	require.NoError(t, err)

	_, err = app.GrabOpenSpot(ctx, game.ID, w)
	assert.ErrorIs(t, err, ErrNoOpenSpot)
}

func TestGrabOpenSpotRequiresWaitlisted(t *testing.T) {
	game := testGame(2, 1)
	app, store, _ := newTestApp(game)
	ctx := context.Background()

	a := newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)

	_, err = app.GrabOpenSpot(ctx, game.ID, a)
	assert.ErrorIs(t, err, ErrNotWaitlisted)
}

func TestConfirmAttendance(t *testing.T) {
	game := testGame(2, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	user := newMember(store)
	_, err := app.Join(ctx, game.ID, user)
	require.NoError(t, err)

	// before the window opens
	_, err = app.ConfirmAttendance(ctx, game.ID, user)
	assert.ErrorIs(t, err, ErrConfirmationClosed)

	clock.Advance(baseKickoff.Add(-24 * time.Hour).Sub(clock.Now()))

	entry, err := app.ConfirmAttendance(ctx, game.ID, user)
	require.NoError(t, err)
	require.NotNil(t, entry.ConfirmedAt)
	assert.Equal(t, clock.Now(), *entry.ConfirmedAt)

	_, err = app.ConfirmAttendance(ctx, game.ID, user)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestConfirmAttendanceDisabled(t *testing.T) {
	game := testGame(2, 1)
	game.ConfirmationEnabled = false
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	user := newMember(store)
	_, err := app.Join(ctx, game.ID, user)
	require.NoError(t, err)

	clock.Advance(baseKickoff.Add(-24 * time.Hour).Sub(clock.Now()))
	_, err = app.ConfirmAttendance(ctx, game.ID, user)
	assert.ErrorIs(t, err, ErrConfirmationDisabled)
}

func TestConfirmAttendanceRequiresRoster(t *testing.T) {
	game := testGame(1, 2)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	_, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	_, err = app.Join(ctx, game.ID, w)
	require.NoError(t, err)

	clock.Advance(baseKickoff.Add(-24 * time.Hour).Sub(clock.Now()))
	_, err = app.ConfirmAttendance(ctx, game.ID, w)
	assert.ErrorIs(t, err, ErrNotRostered)
}

func TestAdminAddIgnoresCutoff(t *testing.T) {
	game := testGame(2, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	admin := newMember(store)
	user := newMember(store)
	clock.Advance(baseKickoff.Add(-30 * time.Minute).Sub(clock.Now()))

	res, err := app.AdminAdd(ctx, game.ID, admin, user)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusRostered, res.Status)
	assert.Equal(t, admin, *res.Entry.AddedBy)
}

func TestAdminAddGuest(t *testing.T) {
	game := testGame(1, 2)
	app, store, _ := newTestApp(game)
	ctx := context.Background()

	admin := newMember(store)
	_, err := app.Join(ctx, game.ID, admin)
	require.NoError(t, err)

	res, err := app.AdminAddGuest(ctx, game.ID, admin, "ringers cousin")
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusWaitlisted, res.Status)
	assert.Nil(t, res.Entry.UserID)
	assert.Equal(t, "ringers cousin", *res.Entry.GuestName)
}

func TestAdminRemovePromotesAndReports(t *testing.T) {
	game := testGame(1, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	resA, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = app.Join(ctx, game.ID, w)
	require.NoError(t, err)

	res, err := app.AdminRemove(ctx, resA.Entry.ID)
	require.NoError(t, err)
	assert.True(t, res.WasRostered)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, w, *res.Promoted.UserID)
}

func TestAdminRemoveUnknownEntry(t *testing.T) {
	game := testGame(2, 1)
	app, _, _ := newTestApp(game)

	_, err := app.AdminRemove(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)
}

func TestRosterChangeResetsActiveDraft(t *testing.T) {
	game := testGame(2, 1)
	app, store, clock := newTestApp(game)
	ctx := context.Background()

	a, w := newMember(store), newMember(store)
	resA, err := app.Join(ctx, game.ID, a)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = app.Join(ctx, game.ID, w)
	require.NoError(t, err)

	game.DraftStatus = models.DraftStatusInProgress

	res, err := app.AdminRemove(ctx, resA.Entry.ID)
	require.NoError(t, err)
	assert.True(t, res.WasRostered)
	assert.Equal(t, 1, store.resets)
	assert.Equal(t, models.DraftStatusPending, game.DraftStatus)
}
