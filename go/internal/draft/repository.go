package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Repository persists draft artifacts: captains, teams, team members, and
// the append-only event log.
type Repository struct {
	db sqlutil.DBTX
}

func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

const uniqueViolation = "23505"

// InsertCaptain records one captain slot for a game.
func (r *Repository) InsertCaptain(ctx context.Context, captain models.Captain) error {
	const query = `
		INSERT INTO captains (id, game_id, slot, user_id)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, captain.ID, captain.GameID, captain.Slot, captain.UserID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateCaptain
		}
		return fmt.Errorf("failed to insert captain: %w", err)
	}
	return nil
}

// ListCaptains returns a game's captains in slot order.
func (r *Repository) ListCaptains(ctx context.Context, gameID uuid.UUID) ([]models.Captain, error) {
	const query = `
		SELECT id, game_id, slot, user_id, created_at
		FROM captains WHERE game_id = $1 ORDER BY slot`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list captains: %w", err)
	}
	defer rows.Close()

	var captains []models.Captain
	for rows.Next() {
		var c models.Captain
		if err := rows.Scan(&c.ID, &c.GameID, &c.Slot, &c.UserID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan captain: %w", err)
		}
		captains = append(captains, c)
	}
	return captains, rows.Err()
}

// InsertTeam creates one team for a game.
func (r *Repository) InsertTeam(ctx context.Context, team models.Team) error {
	const query = `
		INSERT INTO teams (id, game_id, name, draft_order, captain_user_id, captain_entry_id)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		team.ID, team.GameID, team.Name, team.DraftOrder, team.CaptainUserID, team.CaptainEntryID)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// GetTeam fetches a team by ID. The bool reports whether it exists.
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, bool, error) {
	const query = `
		SELECT id, game_id, name, draft_order, captain_user_id, captain_entry_id, created_at
		FROM teams WHERE id = $1`

	var t models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.GameID, &t.Name, &t.DraftOrder, &t.CaptainUserID, &t.CaptainEntryID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, true, nil
}

// ListTeams returns a game's teams in draft order.
func (r *Repository) ListTeams(ctx context.Context, gameID uuid.UUID) ([]models.Team, error) {
	const query = `
		SELECT id, game_id, name, draft_order, captain_user_id, captain_entry_id, created_at
		FROM teams WHERE game_id = $1 ORDER BY draft_order`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.GameID, &t.Name, &t.DraftOrder, &t.CaptainUserID, &t.CaptainEntryID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// CountTeams returns the number of teams in a game.
func (r *Repository) CountTeams(ctx context.Context, gameID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE game_id = $1`, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

// InsertMember assigns a queue entry to a team. A second assignment of the
// same entry trips the (game_id, entry_id) constraint and maps to
// ErrPlayerAlreadyDrafted.
func (r *Repository) InsertMember(ctx context.Context, member models.TeamMember) error {
	const query = `
		INSERT INTO team_members (id, team_id, game_id, entry_id, pick_order, assigned_at, assigned_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		member.ID, member.TeamID, member.GameID, member.EntryID, member.PickOrder, member.AssignedAt, member.AssignedBy)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrPlayerAlreadyDrafted
		}
		return fmt.Errorf("failed to insert team member: %w", err)
	}
	return nil
}

// DeleteMember removes an entry's team assignment; used by undo.
func (r *Repository) DeleteMember(ctx context.Context, gameID, entryID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE game_id = $1 AND entry_id = $2`, gameID, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to delete team member: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// ListMembers returns a game's team members in pick order.
func (r *Repository) ListMembers(ctx context.Context, gameID uuid.UUID) ([]models.TeamMember, error) {
	const query = `
		SELECT id, team_id, game_id, entry_id, pick_order, assigned_at, assigned_by
		FROM team_members WHERE game_id = $1 ORDER BY pick_order`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.GameID, &m.EntryID, &m.PickOrder, &m.AssignedAt, &m.AssignedBy); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MaxPickOrder returns the highest pick order assigned in a game, or 0 when
// only captain seeds (or nothing) exist.
func (r *Repository) MaxPickOrder(ctx context.Context, gameID uuid.UUID) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(pick_order), 0) FROM team_members WHERE game_id = $1`, gameID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max pick order: %w", err)
	}
	return max, nil
}

// RosterEntry is the slice of a queue entry the sequencer validates against.
type RosterEntry struct {
	EntryID   uuid.UUID
	UserID    *uuid.UUID
	Rostered  bool
	Confirmed bool
}

// GetRosterEntry looks up a queue entry within a game.
func (r *Repository) GetRosterEntry(ctx context.Context, gameID, entryID uuid.UUID) (*RosterEntry, bool, error) {
	const query = `
		SELECT id, user_id, status = 'ROSTERED', confirmed_at IS NOT NULL
		FROM queue_entries WHERE game_id = $1 AND id = $2`
	return r.scanRosterEntry(r.db.QueryRowContext(ctx, query, gameID, entryID))
}

// GetRosterEntryByUser looks up a user's active queue entry within a game.
func (r *Repository) GetRosterEntryByUser(ctx context.Context, gameID, userID uuid.UUID) (*RosterEntry, bool, error) {
	const query = `
		SELECT id, user_id, status = 'ROSTERED', confirmed_at IS NOT NULL
		FROM queue_entries WHERE game_id = $1 AND user_id = $2 AND status <> 'DROPPED'`
	return r.scanRosterEntry(r.db.QueryRowContext(ctx, query, gameID, userID))
}

func (r *Repository) scanRosterEntry(row *sql.Row) (*RosterEntry, bool, error) {
	var e RosterEntry
	var userID uuid.NullUUID
	err := row.Scan(&e.EntryID, &userID, &e.Rostered, &e.Confirmed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get roster entry: %w", err)
	}
	e.UserID = sqlutil.FromNullUUID(userID)
	return &e, true, nil
}

// CountRoster returns how many entries are rostered and how many of those
// have confirmed attendance.
func (r *Repository) CountRoster(ctx context.Context, gameID uuid.UUID) (rostered, confirmed int, err error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE status = 'ROSTERED'),
			COUNT(*) FILTER (WHERE status = 'ROSTERED' AND confirmed_at IS NOT NULL)
		FROM queue_entries
		WHERE game_id = $1`
	if err := r.db.QueryRowContext(ctx, query, gameID).Scan(&rostered, &confirmed); err != nil {
		return 0, 0, fmt.Errorf("failed to count roster: %w", err)
	}
	return rostered, confirmed, nil
}

// CountUndraftedConfirmed returns how many confirmed rostered entries are
// not yet on a team; finalize requires zero.
func (r *Repository) CountUndraftedConfirmed(ctx context.Context, gameID uuid.UUID) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM queue_entries qe
		WHERE qe.game_id = $1 AND qe.status = 'ROSTERED' AND qe.confirmed_at IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM team_members tm
			WHERE tm.game_id = qe.game_id AND tm.entry_id = qe.id
		  )`
	var count int
	if err := r.db.QueryRowContext(ctx, query, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count undrafted entries: %w", err)
	}
	return count, nil
}

// InsertEventParams are the row values for one draft log event.
type InsertEventParams struct {
	ID        uuid.UUID
	GameID    uuid.UUID
	Action    models.DraftEventAction
	TeamID    *uuid.UUID
	EntryID   *uuid.UUID
	CreatedBy uuid.UUID
	Payload   any
}

// InsertEvent appends one event to the draft log.
func (r *Repository) InsertEvent(ctx context.Context, params InsertEventParams) error {
	var payload pqtype.NullRawMessage
	if params.Payload != nil {
		raw, err := json.Marshal(params.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", params.Action, err)
		}
		payload = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}

	const query = `
		INSERT INTO draft_events (id, game_id, action, team_id, entry_id, created_by, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		params.ID,
		params.GameID,
		string(params.Action),
		sqlutil.ToNullUUID(params.TeamID),
		sqlutil.ToNullUUID(params.EntryID),
		params.CreatedBy,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s draft event: %w", params.Action, err)
	}
	return nil
}

// RecentPicks returns the newest pick events first, up to limit. Ordering
// keys on the payload's global pick order, which stays deterministic when
// two picks share a created_at tick.
func (r *Repository) RecentPicks(ctx context.Context, gameID uuid.UUID, limit int) ([]models.DraftEvent, error) {
	const query = `
		SELECT id, game_id, action, team_id, entry_id, created_by, created_at, payload
		FROM draft_events
		WHERE game_id = $1 AND action = $2
		ORDER BY (payload->>'pick_order')::int DESC
		LIMIT $3`
	return r.queryEvents(ctx, query, gameID, string(models.DraftEventPick), limit)
}

// ListEvents returns a game's full draft log, oldest first.
func (r *Repository) ListEvents(ctx context.Context, gameID uuid.UUID) ([]models.DraftEvent, error) {
	const query = `
		SELECT id, game_id, action, team_id, entry_id, created_by, created_at, payload
		FROM draft_events
		WHERE game_id = $1
		ORDER BY created_at, id`
	return r.queryEvents(ctx, query, gameID)
}

func (r *Repository) queryEvents(ctx context.Context, query string, args ...any) ([]models.DraftEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft events: %w", err)
	}
	defer rows.Close()

	var events []models.DraftEvent
	for rows.Next() {
		var e models.DraftEvent
		var action string
		var teamID, entryID uuid.NullUUID
		var payload pqtype.NullRawMessage
		if err := rows.Scan(&e.ID, &e.GameID, &action, &teamID, &entryID, &e.CreatedBy, &e.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan draft event: %w", err)
		}
		e.Action = models.DraftEventAction(action)
		e.TeamID = sqlutil.FromNullUUID(teamID)
		e.EntryID = sqlutil.FromNullUUID(entryID)
		if payload.Valid {
			e.Payload = payload.RawMessage
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkPickUndone flips the undone flag on a pick event's payload. The flag
// check rides in the WHERE clause; a pick can only be undone once.
func (r *Repository) MarkPickUndone(ctx context.Context, eventID, undoneBy uuid.UUID, undoneAt time.Time) (bool, error) {
	patch, err := json.Marshal(struct {
		Undone   bool      `json:"undone"`
		UndoneBy uuid.UUID `json:"undone_by"`
		UndoneAt time.Time `json:"undone_at"`
	}{true, undoneBy, undoneAt})
	if err != nil {
		return false, fmt.Errorf("failed to marshal undone patch: %w", err)
	}

	const query = `
		UPDATE draft_events
		SET payload = payload || $2::jsonb
		WHERE id = $1 AND action = 'PICK'
		  AND COALESCE((payload->>'undone')::bool, false) = false`
	result, err := r.db.ExecContext(ctx, query, eventID, patch)
	if err != nil {
		return false, fmt.Errorf("failed to mark pick undone: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// ClearDraft deletes all draft artifacts for a game: members, teams,
// captains, and the event log.
func (r *Repository) ClearDraft(ctx context.Context, gameID uuid.UUID) error {
	statements := []string{
		`DELETE FROM team_members WHERE game_id = $1`,
		`DELETE FROM teams WHERE game_id = $1`,
		`DELETE FROM captains WHERE game_id = $1`,
		`DELETE FROM draft_events WHERE game_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt, gameID); err != nil {
			return fmt.Errorf("failed to clear draft artifacts: %w", err)
		}
	}
	return nil
}
