package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/sqlutil"
)

// Repository handles queue entry persistence. Mutations are conditional
// updates: each statement carries its precondition in the WHERE clause and
// reports whether a row was touched, so a lost race and a stale read look
// the same to the caller.
type Repository struct {
	db sqlutil.DBTX
}

func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const entryColumns = `id, game_id, user_id, guest_name, added_by, status, joined_at, promoted_at, dropped_at, confirmed_at`

const uniqueViolation = "23505"

// InsertEntry adds a participant to the queue. A second active entry for the
// same user in the same game trips the partial unique index and maps to
// ErrAlreadyJoined.
func (r *Repository) InsertEntry(ctx context.Context, params InsertEntryParams) (*models.QueueEntry, error) {
	query := `
		INSERT INTO queue_entries (id, game_id, user_id, guest_name, added_by, status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + entryColumns

	row := r.db.QueryRowContext(ctx, query,
		params.ID,
		params.GameID,
		sqlutil.ToNullUUID(params.UserID),
		sqlutil.ToSqlString(params.GuestName),
		sqlutil.ToNullUUID(params.AddedBy),
		string(params.Status),
		params.JoinedAt,
	)

	entry, err := scanEntry(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrAlreadyJoined
		}
		return nil, fmt.Errorf("failed to insert queue entry: %w", err)
	}
	return entry, nil
}

// GetEntry fetches an entry by ID. The bool reports whether it exists.
func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*models.QueueEntry, bool, error) {
	query := `SELECT ` + entryColumns + ` FROM queue_entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return entry, true, nil
}

// FindActiveEntry fetches the user's non-dropped entry for a game, if any.
func (r *Repository) FindActiveEntry(ctx context.Context, gameID, userID uuid.UUID) (*models.QueueEntry, bool, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE game_id = $1 AND user_id = $2 AND status <> 'DROPPED'`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, gameID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find active entry: %w", err)
	}
	return entry, true, nil
}

// CountByStatus returns the rostered and waitlisted counts for a game.
func (r *Repository) CountByStatus(ctx context.Context, gameID uuid.UUID) (rostered, waitlisted int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'ROSTERED'),
			COUNT(*) FILTER (WHERE status = 'WAITLISTED')
		FROM queue_entries
		WHERE game_id = $1`

	if err := r.db.QueryRowContext(ctx, query, gameID).Scan(&rostered, &waitlisted); err != nil {
		return 0, 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return rostered, waitlisted, nil
}

// CountConfirmed returns how many rostered players have confirmed attendance.
func (r *Repository) CountConfirmed(ctx context.Context, gameID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM queue_entries
		WHERE game_id = $1 AND status = 'ROSTERED' AND confirmed_at IS NOT NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count confirmed entries: %w", err)
	}
	return count, nil
}

// ListActive returns all non-dropped entries for a game in join order.
func (r *Repository) ListActive(ctx context.Context, gameID uuid.UUID) ([]models.QueueEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE game_id = $1 AND status <> 'DROPPED'
		ORDER BY joined_at, id`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// NextWaitlisted returns the longest-waiting waitlisted entry for a game.
// Ties on joined_at break on entry ID so the order is deterministic.
func (r *Repository) NextWaitlisted(ctx context.Context, gameID uuid.UUID) (*models.QueueEntry, bool, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE game_id = $1 AND status = 'WAITLISTED'
		ORDER BY joined_at, id
		LIMIT 1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get next waitlisted entry: %w", err)
	}
	return entry, true, nil
}

// DropEntry marks an active entry dropped. Returns false if the entry was
// already dropped or missing.
func (r *Repository) DropEntry(ctx context.Context, id uuid.UUID, droppedAt time.Time) (bool, error) {
	query := `
		UPDATE queue_entries
		SET status = 'DROPPED', dropped_at = $2
		WHERE id = $1 AND status <> 'DROPPED'`

	result, err := r.db.ExecContext(ctx, query, id, droppedAt)
	if err != nil {
		return false, fmt.Errorf("failed to drop queue entry: %w", err)
	}
	return oneRowAffected(result)
}

// PromoteEntry moves a waitlisted entry onto the roster. Returns false if
// the entry is no longer waitlisted.
func (r *Repository) PromoteEntry(ctx context.Context, id uuid.UUID, promotedAt time.Time) (bool, error) {
	query := `
		UPDATE queue_entries
		SET status = 'ROSTERED', promoted_at = $2
		WHERE id = $1 AND status = 'WAITLISTED'`

	result, err := r.db.ExecContext(ctx, query, id, promotedAt)
	if err != nil {
		return false, fmt.Errorf("failed to promote queue entry: %w", err)
	}
	return oneRowAffected(result)
}

// GrabSpot promotes a waitlisted entry only while the roster still has room.
// The capacity check rides in the statement, so two grabs for the last spot
// cannot both succeed.
func (r *Repository) GrabSpot(ctx context.Context, id, gameID uuid.UUID, capacity int, promotedAt time.Time) (bool, error) {
	query := `
		UPDATE queue_entries
		SET status = 'ROSTERED', promoted_at = $4
		WHERE id = $1 AND status = 'WAITLISTED'
		  AND (SELECT COUNT(*) FROM queue_entries WHERE game_id = $2 AND status = 'ROSTERED') < $3`

	result, err := r.db.ExecContext(ctx, query, id, gameID, capacity, promotedAt)
	if err != nil {
		return false, fmt.Errorf("failed to grab open spot: %w", err)
	}
	return oneRowAffected(result)
}

// ConfirmEntry records attendance confirmation once. Returns false if the
// entry is not rostered or was already confirmed.
func (r *Repository) ConfirmEntry(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	query := `
		UPDATE queue_entries
		SET confirmed_at = $2
		WHERE id = $1 AND status = 'ROSTERED' AND confirmed_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, confirmedAt)
	if err != nil {
		return false, fmt.Errorf("failed to confirm queue entry: %w", err)
	}
	return oneRowAffected(result)
}

func scanEntry(row interface{ Scan(dest ...any) error }) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	var userID, addedBy uuid.NullUUID
	var guestName sql.NullString
	var status string
	var promotedAt, droppedAt, confirmedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.GameID,
		&userID,
		&guestName,
		&addedBy,
		&status,
		&entry.JoinedAt,
		&promotedAt,
		&droppedAt,
		&confirmedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.UserID = sqlutil.FromNullUUID(userID)
	entry.GuestName = sqlutil.FromSqlStringPtr(guestName)
	entry.AddedBy = sqlutil.FromNullUUID(addedBy)
	entry.Status = models.QueueStatus(status)
	entry.PromotedAt = sqlutil.FromSqlTime(promotedAt)
	entry.DroppedAt = sqlutil.FromSqlTime(droppedAt)
	entry.ConfirmedAt = sqlutil.FromSqlTime(confirmedAt)
	return &entry, nil
}

func oneRowAffected(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}
