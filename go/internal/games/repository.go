package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/sqlutil"
)

type Repository struct {
	db sqlutil.DBTX
}

func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const gameColumns = `
	id, community_id, status, capacity, waitlist_capacity, kickoff,
	confirmation_enabled, confirmation_window_hours, join_cutoff_offset_min,
	draft_status, draft_turn, draft_direction, created_at, updated_at`

func (r *Repository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, bool, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1`
	return r.scanGame(r.db.QueryRowContext(ctx, query, id))
}

// GetGameForUpdate locks the game row for the duration of the enclosing
// transaction. Every mutation of a game's queue or draft state takes this
// lock first, which serializes writers per game.
func (r *Repository) GetGameForUpdate(ctx context.Context, id uuid.UUID) (*models.Game, bool, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`
	return r.scanGame(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) CreateGame(ctx context.Context, req CreateGameParams) (*models.Game, error) {
	query := `
		INSERT INTO games (
			id, community_id, capacity, waitlist_capacity, kickoff,
			confirmation_enabled, confirmation_window_hours, join_cutoff_offset_min
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING` + gameColumns

	game, _, err := r.scanGame(r.db.QueryRowContext(ctx, query,
		req.ID,
		req.CommunityID,
		req.Capacity,
		req.WaitlistCapacity,
		sqlutil.ToSqlTime(req.Kickoff),
		req.ConfirmationEnabled,
		req.ConfirmationWindowHours,
		req.JoinCutoffOffsetMin,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

// IsCommunityMember reports membership and admin standing of a user within
// the game's community.
func (r *Repository) IsCommunityMember(ctx context.Context, communityID, userID uuid.UUID) (member, admin bool, err error) {
	const query = `
		SELECT is_admin FROM community_members
		WHERE community_id = $1 AND user_id = $2`
	err = r.db.QueryRowContext(ctx, query, communityID, userID).Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to check community membership: %w", err)
	}
	return true, admin, nil
}

// GetCommunity returns the community row for a game's community.
func (r *Repository) GetCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	const query = `SELECT id, name, timezone, created_at FROM communities WHERE id = $1`
	var c models.Community
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Timezone, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return &c, nil
}

// UpdateDraftStatus flips draft_status from one value to another. The old
// status rides in the WHERE clause; zero rows affected means a competing
// request transitioned first.
func (r *Repository) UpdateDraftStatus(ctx context.Context, gameID uuid.UUID, from, to models.DraftStatus) (bool, error) {
	const query = `
		UPDATE games SET draft_status = $3, updated_at = now()
		WHERE id = $1 AND draft_status = $2`
	result, err := r.db.ExecContext(ctx, query, gameID, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("failed to update draft status: %w", err)
	}
	return oneRowAffected(result)
}

// OpenDraft moves a READY draft into IN_PROGRESS with the turn pointer at
// the first team.
func (r *Repository) OpenDraft(ctx context.Context, gameID uuid.UUID) (bool, error) {
	const query = `
		UPDATE games
		SET draft_status = $2, draft_turn = 0, draft_direction = $3, updated_at = now()
		WHERE id = $1 AND draft_status = $4`
	result, err := r.db.ExecContext(ctx, query,
		gameID, string(models.DraftStatusInProgress), models.DirectionForward, string(models.DraftStatusReady))
	if err != nil {
		return false, fmt.Errorf("failed to open draft: %w", err)
	}
	return oneRowAffected(result)
}

// AdvanceDraftTurn moves the turn pointer, guarded by the caller's view of
// the current turn so a racing pick observes zero rows and fails cleanly.
func (r *Repository) AdvanceDraftTurn(ctx context.Context, gameID uuid.UUID, curTurn, curDir, nextTurn, nextDir int) (bool, error) {
	const query = `
		UPDATE games
		SET draft_turn = $4, draft_direction = $5, updated_at = now()
		WHERE id = $1 AND draft_status = $6 AND draft_turn = $2 AND draft_direction = $3`
	result, err := r.db.ExecContext(ctx, query,
		gameID, curTurn, curDir, nextTurn, nextDir, string(models.DraftStatusInProgress))
	if err != nil {
		return false, fmt.Errorf("failed to advance draft turn: %w", err)
	}
	return oneRowAffected(result)
}

// RestoreDraftTurn sets the turn pointer to an explicit value; used by undo,
// which restores the state snapshotted in the undone pick event.
func (r *Repository) RestoreDraftTurn(ctx context.Context, gameID uuid.UUID, turn, dir int) error {
	const query = `
		UPDATE games SET draft_turn = $2, draft_direction = $3, updated_at = now()
		WHERE id = $1 AND draft_status = $4`
	if _, err := r.db.ExecContext(ctx, query, gameID, turn, dir, string(models.DraftStatusInProgress)); err != nil {
		return fmt.Errorf("failed to restore draft turn: %w", err)
	}
	return nil
}

// CompleteDraft finalizes an in-progress draft and clears the turn pointer.
func (r *Repository) CompleteDraft(ctx context.Context, gameID uuid.UUID) (bool, error) {
	const query = `
		UPDATE games
		SET draft_status = $2, draft_turn = NULL, draft_direction = NULL, updated_at = now()
		WHERE id = $1 AND draft_status = $3`
	result, err := r.db.ExecContext(ctx, query,
		gameID, string(models.DraftStatusCompleted), string(models.DraftStatusInProgress))
	if err != nil {
		return false, fmt.Errorf("failed to complete draft: %w", err)
	}
	return oneRowAffected(result)
}

// ResetDraftState returns the game's draft fields to their pristine state.
func (r *Repository) ResetDraftState(ctx context.Context, gameID uuid.UUID) error {
	const query = `
		UPDATE games
		SET draft_status = $2, draft_turn = NULL, draft_direction = NULL, updated_at = now()
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, gameID, string(models.DraftStatusPending)); err != nil {
		return fmt.Errorf("failed to reset draft state: %w", err)
	}
	return nil
}

func (r *Repository) scanGame(row *sql.Row) (*models.Game, bool, error) {
	var g models.Game
	var status, draftStatus string
	var kickoff sql.NullTime
	var turn, direction sql.NullInt32

	err := row.Scan(
		&g.ID, &g.CommunityID, &status, &g.Capacity, &g.WaitlistCapacity, &kickoff,
		&g.ConfirmationEnabled, &g.ConfirmationWindowHours, &g.JoinCutoffOffsetMin,
		&draftStatus, &turn, &direction, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan game: %w", err)
	}

	g.Status = models.GameStatus(status)
	g.DraftStatus = models.DraftStatus(draftStatus)
	g.Kickoff = sqlutil.FromSqlTime(kickoff)
	g.DraftTurn = sqlutil.FromSqlInt32(turn)
	g.DraftDirection = sqlutil.FromSqlInt32(direction)
	return &g, true, nil
}

func oneRowAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected row count: %w", err)
	}
	return n == 1, nil
}

// CreateGameParams are the row values for a new game.
type CreateGameParams struct {
	ID                      uuid.UUID
	CommunityID             uuid.UUID
	Capacity                int
	WaitlistCapacity        int
	Kickoff                 *time.Time
	ConfirmationEnabled     bool
	ConfirmationWindowHours int
	JoinCutoffOffsetMin     int
}
