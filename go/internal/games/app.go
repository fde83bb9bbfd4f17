package games

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/timewindow"
	"github.com/rs/zerolog"
)

// GamesRepository defines what the app layer needs from the repository
type GamesRepository interface {
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, bool, error)
	CreateGame(ctx context.Context, params CreateGameParams) (*models.Game, error)
	GetCommunity(ctx context.Context, id uuid.UUID) (*models.Community, error)
	IsCommunityMember(ctx context.Context, communityID, userID uuid.UUID) (member, admin bool, err error)
}

// App handles game business logic
type App struct {
	repo     GamesRepository
	defaults Defaults
	logger   zerolog.Logger
}

func NewApp(repo GamesRepository, defaults Defaults, logger zerolog.Logger) *App {
	return &App{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// CreateGame creates a game, applying community defaults for any setting
// the request leaves unset.
func (a *App) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if req.WaitlistCapacity < 0 {
		return nil, ErrInvalidWaitlist
	}
	if _, err := a.repo.GetCommunity(ctx, req.CommunityID); err != nil {
		return nil, err
	}

	params := CreateGameParams{
		ID:                      uuid.New(),
		CommunityID:             req.CommunityID,
		Capacity:                req.Capacity,
		WaitlistCapacity:        req.WaitlistCapacity,
		Kickoff:                 req.Kickoff,
		ConfirmationEnabled:     a.defaults.ConfirmationEnabled,
		ConfirmationWindowHours: a.defaults.ConfirmationWindowHours,
		JoinCutoffOffsetMin:     a.defaults.JoinCutoffOffsetMin,
	}
	if req.ConfirmationEnabled != nil {
		params.ConfirmationEnabled = *req.ConfirmationEnabled
	}
	if req.ConfirmationWindowHours != nil {
		params.ConfirmationWindowHours = *req.ConfirmationWindowHours
	}
	if req.JoinCutoffOffsetMin != nil {
		params.JoinCutoffOffsetMin = *req.JoinCutoffOffsetMin
	}

	game, err := a.repo.CreateGame(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	a.logger.Info().
		Str("game_id", game.ID.String()).
		Int("capacity", game.Capacity).
		Msg("created game")
	return game, nil
}

// GetGame retrieves a game by ID
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	game, found, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if !found {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// RequireAdmin verifies the user is an admin member of the game's community.
func (a *App) RequireAdmin(ctx context.Context, game *models.Game, userID uuid.UUID) (bool, error) {
	_, admin, err := a.repo.IsCommunityMember(ctx, game.CommunityID, userID)
	if err != nil {
		return false, err
	}
	return admin, nil
}

// NoticeTimes resolves the community's configured reminder wall-clock times
// on the game's kickoff day in the community timezone. Games without a
// kickoff have no notice times.
func (a *App) NoticeTimes(ctx context.Context, game *models.Game) ([]time.Time, error) {
	if game.Kickoff == nil || len(a.defaults.ReminderTimes) == 0 {
		return nil, nil
	}

	community, err := a.repo.GetCommunity(ctx, game.CommunityID)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(a.defaults.ReminderTimes))
	for _, wallClock := range a.defaults.ReminderTimes {
		resolved, err := timewindow.ResolveLocal(*game.Kickoff, wallClock, community.Timezone)
		if err != nil {
			return nil, fmt.Errorf("bad reminder time %q: %w", wallClock, err)
		}
		times = append(times, resolved)
	}
	return times, nil
}
