package games

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/sqlutil"
)

// Store wraps the database for game-scoped transactional work.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// WithGameTx runs fn inside a transaction that holds the game's row lock.
// All queue and draft mutations for a game go through here, so writers for
// the same game execute one at a time while other games proceed in parallel.
func (s *Store) WithGameTx(ctx context.Context, gameID uuid.UUID, fn func(tx *sql.Tx, game *models.Game) error) error {
	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		game, found, err := NewRepository(tx).GetGameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}
		if !found {
			return ErrGameNotFound
		}
		return fn(tx, game)
	})
}
