package queue

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrabSpotLosesCapacityRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	entryID, gameID := uuid.New(), uuid.New()
	now := time.Now()

	// roster already at capacity: the guarded update touches zero rows
	mock.ExpectExec("UPDATE queue_entries").
		WithArgs(entryID, gameID, 10, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewRepository(db).GrabSpot(context.Background(), entryID, gameID, 10, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmEntryIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	entryID := uuid.New()
	now := time.Now()

	mock.ExpectExec("UPDATE queue_entries").
		WithArgs(entryID, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE queue_entries").
		WithArgs(entryID, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRepository(db)

	ok, err := repo.ConfirmEntry(context.Background(), entryID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// confirmed_at is already set; the second confirm is a no-op
	ok, err = repo.ConfirmEntry(context.Background(), entryID, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEntryMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO queue_entries").
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "queue_entries_active_user_idx"})

	userID := uuid.New()
	_, err = NewRepository(db).InsertEntry(context.Background(), InsertEntryParams{
		ID:       uuid.New(),
		GameID:   uuid.New(),
		UserID:   &userID,
		Status:   "ROSTERED",
		JoinedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.NoError(t, mock.ExpectationsWereMet())
}
