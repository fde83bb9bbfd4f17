package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/draft/events"
	"github.com/mcdev12/matchday/go/internal/games"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/rs/zerolog"
)

// App is the draft sequencer: captain assignment, team creation, snake
// picking, undo, and finalize. All mutations run under the game's row lock.
type App struct {
	store   Store
	clock   clockwork.Clock
	logger  zerolog.Logger
	shuffle func(n int, swap func(i, j int))
}

func NewApp(store Store, clock clockwork.Clock, logger zerolog.Logger) *App {
	return &App{
		store:   store,
		clock:   clock,
		logger:  logger,
		shuffle: rand.Shuffle,
	}
}

// WithShuffle overrides the draft-order shuffle; tests use it to make team
// order deterministic.
func (a *App) WithShuffle(shuffle func(n int, swap func(i, j int))) *App {
	a.shuffle = shuffle
	return a
}

// AssignCaptains records the captains for a game and moves the draft to
// READY. The gate validates the whole snapshot under the game lock, so no
// check can pass against stale reads.
func (a *App) AssignCaptains(ctx context.Context, gameID uuid.UUID, actor Actor, captainUserIDs []uuid.UUID) ([]models.Captain, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}

	var captains []models.Captain
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		now := a.clock.Now()
		rostered, confirmed, err := q.CountRoster(ctx, game.ID)
		if err != nil {
			return err
		}

		snap := GateSnapshot{
			DraftPending:   game.DraftStatus == models.DraftStatusPending,
			Capacity:       game.Capacity,
			RosteredCount:  rostered,
			ConfirmedCount: confirmed,
			Kickoff:        game.Kickoff,
			WindowHours:    game.ConfirmationWindowHours,
		}
		if err := CheckAssignCaptains(snap, len(captainUserIDs), now); err != nil {
			return err
		}

		seen := make(map[uuid.UUID]bool, len(captainUserIDs))
		for slot, userID := range captainUserIDs {
			if seen[userID] {
				return ErrDuplicateCaptain
			}
			seen[userID] = true

			entry, found, err := q.GetRosterEntryByUser(ctx, game.ID, userID)
			if err != nil {
				return err
			}
			if !found || !entry.Rostered || !entry.Confirmed {
				return ErrCaptainNotOnRoster
			}

			captain := models.Captain{
				ID:     uuid.New(),
				GameID: game.ID,
				Slot:   slot,
				UserID: userID,
			}
			if err := q.InsertCaptain(ctx, captain); err != nil {
				return err
			}
			captains = append(captains, captain)
		}

		ok, err := q.UpdateDraftStatus(ctx, game.ID, models.DraftStatusPending, models.DraftStatusReady)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDraftAlreadyStarted
		}

		return q.EmitEvent(ctx, game.ID, outbox.EventDraftReady, outbox.DraftReadyPayload{
			GameID:         game.ID,
			CaptainUserIDs: captainUserIDs,
		})
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Int("captains", len(captains)).
		Msg("captains assigned, draft ready")
	return captains, nil
}

// StartDraft shuffles the captains into a random draft order, creates one
// team per captain seeded with its captain at pick order 0, and opens
// picking at turn 0 going forward.
func (a *App) StartDraft(ctx context.Context, gameID uuid.UUID, actor Actor) (*StartResult, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}

	var result *StartResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.DraftStatus != models.DraftStatusReady {
			return ErrDraftNotReady
		}

		captains, err := q.ListCaptains(ctx, game.ID)
		if err != nil {
			return err
		}
		if len(captains) < 2 {
			return ErrDraftNotReady
		}

		a.shuffle(len(captains), func(i, j int) {
			captains[i], captains[j] = captains[j], captains[i]
		})

		now := a.clock.Now()
		teams := make([]models.Team, 0, len(captains))
		teamIDs := make([]uuid.UUID, 0, len(captains))
		for order, captain := range captains {
			entry, found, err := q.GetRosterEntryByUser(ctx, game.ID, captain.UserID)
			if err != nil {
				return err
			}
			if !found || !entry.Rostered || !entry.Confirmed {
				return ErrCaptainNotOnRoster
			}

			team := models.Team{
				ID:             uuid.New(),
				GameID:         game.ID,
				Name:           fmt.Sprintf("Team %d", order+1),
				DraftOrder:     order,
				CaptainUserID:  captain.UserID,
				CaptainEntryID: entry.EntryID,
			}
			if err := q.InsertTeam(ctx, team); err != nil {
				return err
			}
			if err := q.InsertMember(ctx, models.TeamMember{
				ID:         uuid.New(),
				TeamID:     team.ID,
				GameID:     game.ID,
				EntryID:    entry.EntryID,
				PickOrder:  0,
				AssignedAt: now,
				AssignedBy: captain.UserID,
			}); err != nil {
				return err
			}
			teams = append(teams, team)
			teamIDs = append(teamIDs, team.ID)
		}

		ok, err := q.OpenDraft(ctx, game.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDraftNotReady
		}

		if err := q.InsertEvent(ctx, InsertEventParams{
			ID:        uuid.New(),
			GameID:    game.ID,
			Action:    models.DraftEventStart,
			CreatedBy: actor.UserID,
			Payload: events.StartPayload{
				TeamCount: len(teams),
				TeamIDs:   teamIDs,
				StartedAt: now,
			},
		}); err != nil {
			return err
		}

		if err := q.EmitEvent(ctx, game.ID, outbox.EventDraftStarted, outbox.DraftStartedPayload{
			GameID:      game.ID,
			TeamCount:   len(teams),
			FirstTeamID: teams[0].ID,
			StartedAt:   now,
		}); err != nil {
			return err
		}

		result = &StartResult{Teams: teams}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Int("teams", len(result.Teams)).
		Msg("draft started")
	return result, nil
}

// PickPlayer assigns a confirmed rostered player to a team at the next
// global pick order and advances the snake turn. Captains may pick only for
// their own team on their own turn; admins may pick out of turn.
func (a *App) PickPlayer(ctx context.Context, gameID uuid.UUID, actor Actor, teamID, entryID uuid.UUID) (*PickResult, error) {
	var result *PickResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.DraftStatus != models.DraftStatusInProgress || game.DraftTurn == nil || game.DraftDirection == nil {
			return ErrDraftNotInProgress
		}

		team, found, err := q.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !found || team.GameID != game.ID {
			return ErrInvalidTeam
		}

		if !actor.Admin {
			if team.CaptainUserID != actor.UserID {
				return ErrForbidden
			}
			if team.DraftOrder != *game.DraftTurn {
				return ErrNotYourTurn
			}
		}

		entry, found, err := q.GetRosterEntry(ctx, game.ID, entryID)
		if err != nil {
			return err
		}
		if !found || !entry.Rostered {
			return ErrPlayerNotOnRoster
		}
		if !entry.Confirmed {
			return ErrPlayerNotConfirmed
		}

		maxOrder, err := q.MaxPickOrder(ctx, game.ID)
		if err != nil {
			return err
		}
		pickOrder := maxOrder + 1

		now := a.clock.Now()
		member := models.TeamMember{
			ID:         uuid.New(),
			TeamID:     team.ID,
			GameID:     game.ID,
			EntryID:    entry.EntryID,
			PickOrder:  pickOrder,
			AssignedAt: now,
			AssignedBy: actor.UserID,
		}
		if err := q.InsertMember(ctx, member); err != nil {
			return err
		}

		teamCount, err := q.CountTeams(ctx, game.ID)
		if err != nil {
			return err
		}

		curTurn, curDir := *game.DraftTurn, *game.DraftDirection
		nextTurn, nextDir := NextSnakeTurn(curTurn, curDir, teamCount)
		ok, err := q.AdvanceDraftTurn(ctx, game.ID, curTurn, curDir, nextTurn, nextDir)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotYourTurn
		}

		if err := q.InsertEvent(ctx, InsertEventParams{
			ID:        uuid.New(),
			GameID:    game.ID,
			Action:    models.DraftEventPick,
			TeamID:    &team.ID,
			EntryID:   &entry.EntryID,
			CreatedBy: actor.UserID,
			Payload: events.PickPayload{
				PickOrder:       pickOrder,
				TurnBefore:      curTurn,
				DirectionBefore: curDir,
			},
		}); err != nil {
			return err
		}

		if err := q.EmitEvent(ctx, game.ID, outbox.EventPickMade, outbox.PickMadePayload{
			GameID:    game.ID,
			TeamID:    team.ID,
			EntryID:   entry.EntryID,
			PickOrder: pickOrder,
			MadeAt:    now,
		}); err != nil {
			return err
		}

		result = &PickResult{Member: member, NextTurn: nextTurn, NextDirection: nextDir}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("team_id", teamID.String()).
		Int("pick_order", result.Member.PickOrder).
		Msg("pick made")
	return result, nil
}

// UndoPick reverses the most recent pick that has not already been undone.
// The turn pointer is restored from the pick event's snapshot, which
// correctly rewinds through any number of snake boundary flips. Admin only.
func (a *App) UndoPick(ctx context.Context, gameID uuid.UUID, actor Actor) (*UndoResult, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}

	var result *UndoResult
	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.DraftStatus != models.DraftStatusInProgress {
			return ErrDraftNotInProgress
		}

		picks, err := q.RecentPicks(ctx, game.ID, undoLookback)
		if err != nil {
			return err
		}

		var target *models.DraftEvent
		var payload events.PickPayload
		for i := range picks {
			var p events.PickPayload
			if err := json.Unmarshal(picks[i].Payload, &p); err != nil {
				return fmt.Errorf("failed to decode pick payload %s: %w", picks[i].ID, err)
			}
			if !p.Undone {
				target = &picks[i]
				payload = p
				break
			}
		}
		if target == nil || target.TeamID == nil || target.EntryID == nil {
			return ErrNoPicksToUndo
		}

		now := a.clock.Now()
		ok, err := q.MarkPickUndone(ctx, target.ID, actor.UserID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoPicksToUndo
		}

		if _, err := q.DeleteMember(ctx, game.ID, *target.EntryID); err != nil {
			return err
		}

		if err := q.RestoreDraftTurn(ctx, game.ID, payload.TurnBefore, payload.DirectionBefore); err != nil {
			return err
		}

		if err := q.InsertEvent(ctx, InsertEventParams{
			ID:        uuid.New(),
			GameID:    game.ID,
			Action:    models.DraftEventUndo,
			TeamID:    target.TeamID,
			EntryID:   target.EntryID,
			CreatedBy: actor.UserID,
			Payload: events.UndoPayload{
				UndoneEventID: target.ID,
				TeamID:        *target.TeamID,
				EntryID:       *target.EntryID,
			},
		}); err != nil {
			return err
		}

		result = &UndoResult{
			UndoneEventID:     target.ID,
			TeamID:            *target.TeamID,
			EntryID:           *target.EntryID,
			RestoredTurn:      payload.TurnBefore,
			RestoredDirection: payload.DirectionBefore,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Str("undone_event_id", result.UndoneEventID.String()).
		Int("restored_turn", result.RestoredTurn).
		Msg("pick undone")
	return result, nil
}

// FinalizeDraft completes a draft once every confirmed rostered player has
// been assigned to a team. Admin only.
func (a *App) FinalizeDraft(ctx context.Context, gameID uuid.UUID, actor Actor) error {
	if !actor.Admin {
		return ErrForbidden
	}

	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if game.DraftStatus != models.DraftStatusInProgress {
			return ErrDraftNotInProgress
		}

		undrafted, err := q.CountUndraftedConfirmed(ctx, game.ID)
		if err != nil {
			return err
		}
		if undrafted > 0 {
			return ErrDraftIncomplete
		}

		ok, err := q.CompleteDraft(ctx, game.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDraftNotInProgress
		}

		totalPicks, err := q.MaxPickOrder(ctx, game.ID)
		if err != nil {
			return err
		}

		now := a.clock.Now()
		if err := q.InsertEvent(ctx, InsertEventParams{
			ID:        uuid.New(),
			GameID:    game.ID,
			Action:    models.DraftEventFinalize,
			CreatedBy: actor.UserID,
			Payload: events.FinalizePayload{
				TotalPicks:  totalPicks,
				FinalizedAt: now,
			},
		}); err != nil {
			return err
		}

		return q.EmitEvent(ctx, game.ID, outbox.EventDraftCompleted, outbox.DraftCompletedPayload{
			GameID:      game.ID,
			CompletedAt: now,
			TotalPicks:  totalPicks,
		})
	})
	if err != nil {
		return err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Msg("draft finalized")
	return nil
}

// ResetDraft tears down all draft artifacts and returns the game to
// PENDING. Resets notify nobody; a reset marker event opens the fresh log.
// Admin only.
func (a *App) ResetDraft(ctx context.Context, gameID uuid.UUID, actor Actor) error {
	if !actor.Admin {
		return ErrForbidden
	}

	err := a.store.WithGameTx(ctx, gameID, func(q Queries, game *models.Game) error {
		if err := q.ClearDraft(ctx, game.ID); err != nil {
			return err
		}
		if err := q.ResetDraftState(ctx, game.ID); err != nil {
			return err
		}
		return q.InsertEvent(ctx, InsertEventParams{
			ID:        uuid.New(),
			GameID:    game.ID,
			Action:    models.DraftEventReset,
			CreatedBy: actor.UserID,
			Payload:   events.ResetPayload{Reason: "admin", ResetAt: a.clock.Now()},
		})
	})
	if err != nil {
		return err
	}

	a.logger.Info().
		Str("game_id", gameID.String()).
		Msg("draft reset")
	return nil
}

// ResetTx clears draft artifacts inside an existing game transaction. The
// queue package invokes this through its DraftReset hook when a roster
// change lands under a draft that already left PENDING.
func (a *App) ResetTx(ctx context.Context, tx *sql.Tx, game *models.Game) error {
	repo := NewRepository(tx)
	if err := repo.ClearDraft(ctx, game.ID); err != nil {
		return err
	}
	if err := games.NewRepository(tx).ResetDraftState(ctx, game.ID); err != nil {
		return err
	}
	return repo.InsertEvent(ctx, InsertEventParams{
		ID:        uuid.New(),
		GameID:    game.ID,
		Action:    models.DraftEventReset,
		CreatedBy: uuid.Nil,
		Payload:   events.ResetPayload{Reason: "roster changed", ResetAt: a.clock.Now()},
	})
}

// DraftState assembles the read view of a game's draft.
func (a *App) DraftState(ctx context.Context, gameID uuid.UUID) (*State, error) {
	captains, err := a.store.ListCaptains(ctx, gameID)
	if err != nil {
		return nil, err
	}
	teams, err := a.store.ListTeams(ctx, gameID)
	if err != nil {
		return nil, err
	}
	members, err := a.store.ListMembers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	log, err := a.store.ListEvents(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &State{Captains: captains, Teams: teams, Members: members, Events: log}, nil
}
