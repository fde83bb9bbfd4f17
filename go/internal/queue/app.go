package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/mcdev12/matchday/go/internal/timewindow"
	"github.com/rs/zerolog"
)

// App is the queue state machine. Every mutation runs inside the game's row
// lock, so for one game the transitions below execute one at a time and the
// counts they read stay true until commit.
type App struct {
	store  Store
	clock  clockwork.Clock
	logger zerolog.Logger
}

func NewApp(store Store, clock clockwork.Clock, logger zerolog.Logger) *App {
	return &App{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Join places a community member in the queue: onto the roster while there
// is room, onto the waitlist after that.
func (a *App) Join(ctx context.Context, gameID, userID uuid.UUID) (*JoinResult, error) {
	var result *JoinResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		now := a.clock.Now()
		if err := a.checkJoinable(game, now); err != nil {
			return err
		}

		member, _, err := q.IsCommunityMember(ctx, game.CommunityID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}

		status, err := a.placeEntry(ctx, q, game)
		if err != nil {
			return err
		}

		entry, err := q.InsertEntry(ctx, InsertEntryParams{
			ID:       uuid.New(),
			GameID:   game.ID,
			UserID:   &userID,
			Status:   status,
			JoinedAt: now,
		})
		if err != nil {
			return err
		}

		if status == models.QueueStatusRostered {
			if err := a.noteRosterFilled(ctx, q, game, now); err != nil {
				return err
			}
		}

		result = &JoinResult{Entry: entry, Status: status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Str("status", string(result.Status)).
		Msg("participant joined queue")
	return result, nil
}

// Leave drops the caller's active entry. Vacating a rostered spot promotes
// the longest-waiting waitlisted entry, or announces the opening if the
// waitlist is empty and the confirmation window is running. Leaving a game
// that is no longer open is allowed; the entry is dropped with no promotion.
func (a *App) Leave(ctx context.Context, gameID, userID uuid.UUID) (*LeaveResult, error) {
	var result *LeaveResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		entry, found, err := q.FindActiveEntry(ctx, game.ID, userID)
		if err != nil {
			return err
		}
		if !found {
			return ErrQueueEntryNotFound
		}

		res, err := a.removeEntry(ctx, q, game, entry)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Bool("was_rostered", result.WasRostered).
		Msg("participant left queue")
	return result, nil
}

// GrabOpenSpot lets a waitlisted participant claim a roster spot the moment
// one is open. The capacity check is part of the update, so racing grabs for
// the last spot resolve to exactly one winner.
func (a *App) GrabOpenSpot(ctx context.Context, gameID, userID uuid.UUID) (*models.QueueEntry, error) {
	var grabbed *models.QueueEntry
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.Status != models.GameStatusScheduled {
			return ErrGameNotOpen
		}

		entry, found, err := q.FindActiveEntry(ctx, game.ID, userID)
		if err != nil {
			return err
		}
		if !found {
			return ErrQueueEntryNotFound
		}
		if entry.Status != models.QueueStatusWaitlisted {
			return ErrNotWaitlisted
		}

		now := a.clock.Now()
		ok, err := q.GrabSpot(ctx, entry.ID, game.ID, game.Capacity, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoOpenSpot
		}
		entry.Status = models.QueueStatusRostered
		entry.PromotedAt = &now

		if err := a.noteRosterFilled(ctx, q, game, now); err != nil {
			return err
		}
		if err := a.resetStaleDraft(ctx, q, game); err != nil {
			return err
		}

		grabbed = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Msg("participant grabbed open spot")
	return grabbed, nil
}

// ConfirmAttendance records a rostered player's confirmation. Valid only
// inside the confirmation window; a misconfigured window fails closed.
func (a *App) ConfirmAttendance(ctx context.Context, gameID, userID uuid.UUID) (*models.QueueEntry, error) {
	var confirmed *models.QueueEntry
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.Status != models.GameStatusScheduled {
			return ErrGameNotOpen
		}
		if !game.ConfirmationEnabled {
			return ErrConfirmationDisabled
		}
		now := a.clock.Now()
		if game.Kickoff == nil || !timewindow.Within(now, *game.Kickoff, game.JoinCutoffOffsetMin, game.ConfirmationWindowHours) {
			return ErrConfirmationClosed
		}

		entry, found, err := q.FindActiveEntry(ctx, game.ID, userID)
		if err != nil {
			return err
		}
		if !found {
			return ErrQueueEntryNotFound
		}
		if entry.Status != models.QueueStatusRostered {
			return ErrNotRostered
		}
		if entry.ConfirmedAt != nil {
			return ErrAlreadyConfirmed
		}

		ok, err := q.ConfirmEntry(ctx, entry.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyConfirmed
		}
		entry.ConfirmedAt = &now
		confirmed = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Msg("attendance confirmed")
	return confirmed, nil
}

// AdminAdd places a community member in the queue on an admin's behalf. The
// join cutoff does not apply to admins; capacity still does.
func (a *App) AdminAdd(ctx context.Context, gameID, actorID, userID uuid.UUID) (*JoinResult, error) {
	var result *JoinResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.Status != models.GameStatusScheduled {
			return ErrGameNotOpen
		}

		member, _, err := q.IsCommunityMember(ctx, game.CommunityID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}

		status, err := a.placeEntry(ctx, q, game)
		if err != nil {
			return err
		}

		now := a.clock.Now()
		entry, err := q.InsertEntry(ctx, InsertEntryParams{
			ID:       uuid.New(),
			GameID:   game.ID,
			UserID:   &userID,
			AddedBy:  &actorID,
			Status:   status,
			JoinedAt: now,
		})
		if err != nil {
			return err
		}

		if status == models.QueueStatusRostered {
			if err := a.noteRosterFilled(ctx, q, game, now); err != nil {
				return err
			}
			if err := a.resetStaleDraft(ctx, q, game); err != nil {
				return err
			}
		}

		result = &JoinResult{Entry: entry, Status: status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("user_id", userID.String()).
		Str("added_by", actorID.String()).
		Str("status", string(result.Status)).
		Msg("admin added participant")
	return result, nil
}

// AdminAddGuest queues a guest who has no profile. Guests are tracked by
// name plus the admin who added them.
func (a *App) AdminAddGuest(ctx context.Context, gameID, actorID uuid.UUID, guestName string) (*JoinResult, error) {
	if guestName == "" {
		return nil, fmt.Errorf("guest name is required")
	}

	var result *JoinResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.Status != models.GameStatusScheduled {
			return ErrGameNotOpen
		}

		status, err := a.placeEntry(ctx, q, game)
		if err != nil {
			return err
		}

		now := a.clock.Now()
		entry, err := q.InsertEntry(ctx, InsertEntryParams{
			ID:        uuid.New(),
			GameID:    game.ID,
			GuestName: &guestName,
			AddedBy:   &actorID,
			Status:    status,
			JoinedAt:  now,
		})
		if err != nil {
			return err
		}

		if status == models.QueueStatusRostered {
			if err := a.noteRosterFilled(ctx, q, game, now); err != nil {
				return err
			}
			if err := a.resetStaleDraft(ctx, q, game); err != nil {
				return err
			}
		}

		result = &JoinResult{Entry: entry, Status: status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("guest_name", guestName).
		Str("added_by", actorID.String()).
		Str("status", string(result.Status)).
		Msg("admin added guest")
	return result, nil
}

// AdminRemove drops an arbitrary queue entry by ID with the same promotion
// semantics as Leave. WasRostered in the result tells the caller whether
// team balance may have been invalidated.
func (a *App) AdminRemove(ctx context.Context, queueID uuid.UUID) (*LeaveResult, error) {
	target, found, err := a.store.GetEntry(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrQueueEntryNotFound
	}

	var result *LeaveResult
	err = a.store.WithGameTx(ctx, target.GameID, func(q Queries, game *models.Game) error {
		entry, found, err := q.GetEntry(ctx, queueID)
		if err != nil {
			return err
		}
		if !found || !entry.Active() {
			return ErrQueueEntryNotFound
		}

		res, err := a.removeEntry(ctx, q, game, entry)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", result.GameID.String()).
		Str("queue_id", queueID.String()).
		Bool("was_rostered", result.WasRostered).
		Msg("admin removed participant")
	return result, nil
}

// Roster returns all active entries for a game in join order.
func (a *App) Roster(ctx context.Context, gameID uuid.UUID) ([]models.QueueEntry, error) {
	return a.store.ListActive(ctx, gameID)
}

// GetEntry fetches a queue entry by ID.
func (a *App) GetEntry(ctx context.Context, queueID uuid.UUID) (*models.QueueEntry, error) {
	entry, found, err := a.store.GetEntry(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrQueueEntryNotFound
	}
	return entry, nil
}

// removeEntry drops an active entry and runs the promotion and stale-draft
// consequences. Shared by Leave and AdminRemove.
func (a *App) removeEntry(ctx context.Context, q Queries, game *models.Game, entry *models.QueueEntry) (*LeaveResult, error) {
	now := a.clock.Now()
	ok, err := q.DropEntry(ctx, entry.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQueueEntryNotFound
	}

	result := &LeaveResult{
		GameID:      game.ID,
		WasRostered: entry.Status == models.QueueStatusRostered,
	}

	// Dropping from a game that is no longer open carries no consequences;
	// likewise a waitlist departure never changes roster fullness, so the
	// draft (if any) stays intact.
	if game.Status != models.GameStatusScheduled || !result.WasRostered {
		return result, nil
	}

	promoted, err := a.promoteNext(ctx, q, game, now)
	if err != nil {
		return nil, err
	}
	result.Promoted = promoted

	if err := a.resetStaleDraft(ctx, q, game); err != nil {
		return nil, err
	}
	return result, nil
}

// promoteNext flips the longest-waiting waitlisted entry onto the roster.
// With no candidate the spot stays open; inside the confirmation window
// that opening is announced so waitlisted players can grab it.
func (a *App) promoteNext(ctx context.Context, q Queries, game *models.Game, now time.Time) (*models.QueueEntry, error) {
	for {
		candidate, found, err := q.NextWaitlisted(ctx, game.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, a.noteSpotOpened(ctx, q, game, now)
		}

		ok, err := q.PromoteEntry(ctx, candidate.ID, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// candidate changed under us; take the next one
			continue
		}

		candidate.Status = models.QueueStatusRostered
		candidate.PromotedAt = &now

		err = q.EmitEvent(ctx, game.ID, outbox.EventPlayerPromoted, outbox.PlayerPromotedPayload{
			GameID:     game.ID,
			EntryID:    candidate.ID,
			UserID:     candidate.UserID,
			PromotedAt: now,
		})
		if err != nil {
			return nil, err
		}
		return candidate, nil
	}
}

// checkJoinable gates self-serve joins: the game must be open, the draft
// untouched, and the join cutoff still ahead.
func (a *App) checkJoinable(game *models.Game, now time.Time) error {
	if game.Status != models.GameStatusScheduled {
		return ErrGameNotOpen
	}
	if game.DraftStatus != models.DraftStatusPending {
		return ErrDraftInProgress
	}
	if game.Kickoff != nil && !now.Before(timewindow.JoinCutoff(*game.Kickoff, game.JoinCutoffOffsetMin)) {
		return ErrJoinCutoffPassed
	}
	return nil
}

// placeEntry decides where a new entry lands given current occupancy.
func (a *App) placeEntry(ctx context.Context, q Queries, game *models.Game) (models.QueueStatus, error) {
	rostered, waitlisted, err := q.CountByStatus(ctx, game.ID)
	if err != nil {
		return "", err
	}
	switch {
	case rostered < game.Capacity:
		return models.QueueStatusRostered, nil
	case waitlisted < game.WaitlistCapacity:
		return models.QueueStatusWaitlisted, nil
	default:
		return "", ErrGameFull
	}
}

// noteRosterFilled emits a RosterFull event when the last roster spot was
// just taken.
func (a *App) noteRosterFilled(ctx context.Context, q Queries, game *models.Game, now time.Time) error {
	rostered, _, err := q.CountByStatus(ctx, game.ID)
	if err != nil {
		return err
	}
	if rostered != game.Capacity {
		return nil
	}
	return q.EmitEvent(ctx, game.ID, outbox.EventRosterFull, outbox.RosterFullPayload{
		GameID:   game.ID,
		Capacity: game.Capacity,
		FilledAt: now,
	})
}

// noteSpotOpened announces an unfilled roster opening, but only while the
// confirmation window is running; earlier openings are routine churn.
func (a *App) noteSpotOpened(ctx context.Context, q Queries, game *models.Game, now time.Time) error {
	if !game.ConfirmationEnabled || game.Kickoff == nil {
		return nil
	}
	if !timewindow.Within(now, *game.Kickoff, game.JoinCutoffOffsetMin, game.ConfirmationWindowHours) {
		return nil
	}

	rostered, _, err := q.CountByStatus(ctx, game.ID)
	if err != nil {
		return err
	}
	return q.EmitEvent(ctx, game.ID, outbox.EventSpotOpened, outbox.SpotOpenedPayload{
		GameID:        game.ID,
		OpenedAt:      now,
		RosteredCount: rostered,
		Capacity:      game.Capacity,
	})
}

// resetStaleDraft tears down draft artifacts when the roster changed under
// a draft that already left PENDING.
func (a *App) resetStaleDraft(ctx context.Context, q Queries, game *models.Game) error {
	if game.DraftStatus == models.DraftStatusPending {
		return nil
	}
	if err := q.ResetDraft(ctx, game); err != nil {
		return fmt.Errorf("failed to reset stale draft: %w", err)
	}
	a.logger.Warn().
		Str("game_id", game.ID.String()).
		Str("draft_status", string(game.DraftStatus)).
		Msg("roster changed under active draft, draft reset")
	return nil
}
