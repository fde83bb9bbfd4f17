package draft

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/outbox"
)

// Queries is the per-transaction surface the sequencer mutates through.
// Everything inside one WithGameTx invocation runs under the game's row
// lock against a single consistent snapshot.
type Queries interface {
	InsertCaptain(ctx context.Context, captain models.Captain) error
	ListCaptains(ctx context.Context, gameID uuid.UUID) ([]models.Captain, error)
	InsertTeam(ctx context.Context, team models.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, bool, error)
	CountTeams(ctx context.Context, gameID uuid.UUID) (int, error)
	InsertMember(ctx context.Context, member models.TeamMember) error
	DeleteMember(ctx context.Context, gameID, entryID uuid.UUID) (bool, error)
	MaxPickOrder(ctx context.Context, gameID uuid.UUID) (int, error)
	GetRosterEntry(ctx context.Context, gameID, entryID uuid.UUID) (*RosterEntry, bool, error)
	GetRosterEntryByUser(ctx context.Context, gameID, userID uuid.UUID) (*RosterEntry, bool, error)
	CountRoster(ctx context.Context, gameID uuid.UUID) (rostered, confirmed int, err error)
	CountUndraftedConfirmed(ctx context.Context, gameID uuid.UUID) (int, error)
	InsertEvent(ctx context.Context, params InsertEventParams) error
	RecentPicks(ctx context.Context, gameID uuid.UUID, limit int) ([]models.DraftEvent, error)
	MarkPickUndone(ctx context.Context, eventID, undoneBy uuid.UUID, undoneAt time.Time) (bool, error)
	ClearDraft(ctx context.Context, gameID uuid.UUID) error

	UpdateDraftStatus(ctx context.Context, gameID uuid.UUID, from, to models.DraftStatus) (bool, error)
	OpenDraft(ctx context.Context, gameID uuid.UUID) (bool, error)
	AdvanceDraftTurn(ctx context.Context, gameID uuid.UUID, curTurn, curDir, nextTurn, nextDir int) (bool, error)
	RestoreDraftTurn(ctx context.Context, gameID uuid.UUID, turn, dir int) error
	CompleteDraft(ctx context.Context, gameID uuid.UUID) (bool, error)
	ResetDraftState(ctx context.Context, gameID uuid.UUID) error

	EmitEvent(ctx context.Context, gameID uuid.UUID, eventType outbox.EventType, payload any) error
}

// Store opens game-locked transactions and serves draft reads.
type Store interface {
	WithGameTx(ctx context.Context, gameID uuid.UUID, fn func(q Queries, game *models.Game) error) error
	ListTeams(ctx context.Context, gameID uuid.UUID) ([]models.Team, error)
	ListMembers(ctx context.Context, gameID uuid.UUID) ([]models.TeamMember, error)
	ListCaptains(ctx context.Context, gameID uuid.UUID) ([]models.Captain, error)
	ListEvents(ctx context.Context, gameID uuid.UUID) ([]models.DraftEvent, error)
}

type sqlStore struct {
	games *games.Store
}

// NewStore builds the production Store on top of the game-lock transaction
// helper.
func NewStore(gamesStore *games.Store) Store {
	return &sqlStore{games: gamesStore}
}

func (s *sqlStore) WithGameTx(ctx context.Context, gameID uuid.UUID, fn func(q Queries, game *models.Game) error) error {
	return s.games.WithGameTx(ctx, gameID, func(tx *sql.Tx, game *models.Game) error {
		q := &txQueries{
			Repository: NewRepository(tx),
			games:      games.NewRepository(tx),
			outbox:     outbox.NewRepository(tx),
		}
		return fn(q, game)
	})
}

func (s *sqlStore) ListTeams(ctx context.Context, gameID uuid.UUID) ([]models.Team, error) {
	return NewRepository(s.games.DB()).ListTeams(ctx, gameID)
}

func (s *sqlStore) ListMembers(ctx context.Context, gameID uuid.UUID) ([]models.TeamMember, error) {
	return NewRepository(s.games.DB()).ListMembers(ctx, gameID)
}

func (s *sqlStore) ListCaptains(ctx context.Context, gameID uuid.UUID) ([]models.Captain, error) {
	return NewRepository(s.games.DB()).ListCaptains(ctx, gameID)
}

func (s *sqlStore) ListEvents(ctx context.Context, gameID uuid.UUID) ([]models.DraftEvent, error) {
	return NewRepository(s.games.DB()).ListEvents(ctx, gameID)
}

// txQueries bundles the repositories bound to one transaction.
type txQueries struct {
	*Repository
	games  *games.Repository
	outbox *outbox.Repository
}

func (q *txQueries) UpdateDraftStatus(ctx context.Context, gameID uuid.UUID, from, to models.DraftStatus) (bool, error) {
	return q.games.UpdateDraftStatus(ctx, gameID, from, to)
}

func (q *txQueries) OpenDraft(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return q.games.OpenDraft(ctx, gameID)
}

func (q *txQueries) AdvanceDraftTurn(ctx context.Context, gameID uuid.UUID, curTurn, curDir, nextTurn, nextDir int) (bool, error) {
	return q.games.AdvanceDraftTurn(ctx, gameID, curTurn, curDir, nextTurn, nextDir)
}

func (q *txQueries) RestoreDraftTurn(ctx context.Context, gameID uuid.UUID, turn, dir int) error {
	return q.games.RestoreDraftTurn(ctx, gameID, turn, dir)
}

func (q *txQueries) CompleteDraft(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return q.games.CompleteDraft(ctx, gameID)
}

func (q *txQueries) ResetDraftState(ctx context.Context, gameID uuid.UUID) error {
	return q.games.ResetDraftState(ctx, gameID)
}

func (q *txQueries) EmitEvent(ctx context.Context, gameID uuid.UUID, eventType outbox.EventType, payload any) error {
	return q.outbox.InsertEvent(ctx, gameID, eventType, payload)
}
