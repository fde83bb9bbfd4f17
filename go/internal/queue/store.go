package queue

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/outbox"
)

// Queries is the per-transaction surface the state machine mutates through.
// Every call inside one WithGameTx invocation sees and writes a single
// consistent snapshot guarded by the game's row lock.
type Queries interface {
	InsertEntry(ctx context.Context, params InsertEntryParams) (*models.QueueEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, bool, error)
	FindActiveEntry(ctx context.Context, gameID, userID uuid.UUID) (*models.QueueEntry, bool, error)
	CountByStatus(ctx context.Context, gameID uuid.UUID) (rostered, waitlisted int, err error)
	NextWaitlisted(ctx context.Context, gameID uuid.UUID) (*models.QueueEntry, bool, error)
	DropEntry(ctx context.Context, id uuid.UUID, droppedAt time.Time) (bool, error)
	PromoteEntry(ctx context.Context, id uuid.UUID, promotedAt time.Time) (bool, error)
	GrabSpot(ctx context.Context, id, gameID uuid.UUID, capacity int, promotedAt time.Time) (bool, error)
	ConfirmEntry(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error)
	IsCommunityMember(ctx context.Context, communityID, userID uuid.UUID) (member, admin bool, err error)
	EmitEvent(ctx context.Context, gameID uuid.UUID, eventType outbox.EventType, payload any) error
	ResetDraft(ctx context.Context, game *models.Game) error
}

// Store opens game-locked transactions and serves point reads.
type Store interface {
	WithGameTx(ctx context.Context, gameID uuid.UUID, fn func(q Queries, game *models.Game) error) error
	GetEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, bool, error)
	ListActive(ctx context.Context, gameID uuid.UUID) ([]models.QueueEntry, error)
}

// DraftReset tears down draft artifacts for a game inside the caller's
// transaction. Injected so the queue does not depend on the draft package.
type DraftReset func(ctx context.Context, tx *sql.Tx, game *models.Game) error

type sqlStore struct {
	games      *games.Store
	resetDraft DraftReset
}

// NewStore builds the production Store on top of the game-lock transaction
// helper.
func NewStore(gamesStore *games.Store, resetDraft DraftReset) Store {
	return &sqlStore{games: gamesStore, resetDraft: resetDraft}
}

func (s *sqlStore) WithGameTx(ctx context.Context, gameID uuid.UUID, fn func(q Queries, game *models.Game) error) error {
	return s.games.WithGameTx(ctx, gameID, func(tx *sql.Tx, game *models.Game) error {
		q := &txQueries{
			Repository: NewRepository(tx),
			tx:         tx,
			games:      games.NewRepository(tx),
			outbox:     outbox.NewRepository(tx),
			resetDraft: s.resetDraft,
		}
		return fn(q, game)
	})
}

func (s *sqlStore) GetEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, bool, error) {
	return NewRepository(s.games.DB()).GetEntry(ctx, id)
}

func (s *sqlStore) ListActive(ctx context.Context, gameID uuid.UUID) ([]models.QueueEntry, error) {
	return NewRepository(s.games.DB()).ListActive(ctx, gameID)
}

// txQueries bundles the repositories bound to one transaction.
type txQueries struct {
	*Repository
	tx         *sql.Tx
	games      *games.Repository
	outbox     *outbox.Repository
	resetDraft DraftReset
}

func (q *txQueries) IsCommunityMember(ctx context.Context, communityID, userID uuid.UUID) (bool, bool, error) {
	return q.games.IsCommunityMember(ctx, communityID, userID)
}

func (q *txQueries) EmitEvent(ctx context.Context, gameID uuid.UUID, eventType outbox.EventType, payload any) error {
	return q.outbox.InsertEvent(ctx, gameID, eventType, payload)
}

func (q *txQueries) ResetDraft(ctx context.Context, game *models.Game) error {
	if q.resetDraft == nil {
		return nil
	}
	return q.resetDraft(ctx, q.tx, game)
}
