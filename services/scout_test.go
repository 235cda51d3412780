package services

import (
	"context"
	"testing"

	"scout-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToWatchlist_RejectsNonPlayers(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewScoutService(db, NewCacheService(""))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs("s2", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow("s2", models.RoleScout))

	_, err := svc.AddToWatchlist(context.Background(), "s1", "s2", "")
	assert.ErrorIs(t, err, ErrNotAPlayer)

	_, err = svc.AddToWatchlist(context.Background(), "s1", "s1", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToWatchlist_RewatchKeepsEntry(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewScoutService(db, NewCacheService(""))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow("p1", models.RolePlayer))
	mock.ExpectExec(`INSERT INTO "watchlist_entries" .* ON CONFLICT \("scout_id","player_id"\) DO UPDATE SET "note"="excluded"."note"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "watchlist_entries" WHERE scout_id = \$1 AND player_id = \$2`).
		WithArgs("s1", "p1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scout_id", "player_id", "note"}).
			AddRow("w-first", "s1", "p1", "fast winger"))

	entry, err := svc.AddToWatchlist(context.Background(), "s1", "p1", " fast winger ")
	require.NoError(t, err)
	assert.Equal(t, "w-first", entry.ID)
	assert.Equal(t, "fast winger", entry.Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}
