package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"scout-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestNotificationService_MarkRead(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "marks own notification",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE "notifications" SET "read_at"`).
					WithArgs(sqlmock.AnyArg(), "n1", "u1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "someone else's notification is not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE "notifications" SET "read_at"`).
					WithArgs(sqlmock.AnyArg(), "n1", "u1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			svc := NewNotificationService(db)
			svc.Now = fixedNow
			tt.setup(mock)

			err := svc.MarkRead(context.Background(), "u1", "n1")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNotificationService_List(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewNotificationService(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = \$1 AND read_at IS NULL`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = \$1 AND read_at IS NULL`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE user_id = \$1 AND read_at IS NULL ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "message", "created_at"}).
			AddRow("n3", "u1", "video_approved", "Your video was approved", fixedNow()).
			AddRow("n2", "u1", "badge_awarded", "New badge", fixedNow().Add(-time.Hour)))

	page, err := svc.List(context.Background(), "u1", true, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.EqualValues(t, 3, page.Unread)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, "n3", page.Notifications[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStreamCursor(t *testing.T) {
	t0 := fixedNow()
	old := models.Notification{ID: "old", CreatedAt: t0.Add(-5 * time.Second)}
	c := newStreamCursor(t0, []models.Notification{old})

	// same timestamp, two rows: both delivered once
	a := models.Notification{ID: "a", CreatedAt: t0.Add(time.Second)}
	b := models.Notification{ID: "b", CreatedAt: t0.Add(time.Second)}
	got := c.take([]models.Notification{old, a, b})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Empty(t, c.take([]models.Notification{old, a, b}))

	// committed late with an earlier created_at
	late := models.Notification{ID: "late", CreatedAt: t0.Add(500 * time.Millisecond)}
	assert.True(t, c.from().Before(late.CreatedAt))
	got = c.take([]models.Notification{late, a, b})
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].ID)
	assert.Equal(t, t0.Add(time.Second), c.since, "an older row never moves the cursor back")

	// ids behind the lookback window are forgotten
	far := models.Notification{ID: "far", CreatedAt: t0.Add(time.Hour)}
	c.take([]models.Notification{far})
	assert.NotContains(t, c.sent, "a")
	assert.Contains(t, c.sent, "far")
}

func TestNotificationService_StreamSkipsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewNotificationService(db)
	svc.Now = fixedNow
	svc.PollInterval = 10 * time.Millisecond

	mock.ExpectQuery(`SELECT "id","created_at" FROM "notifications" WHERE user_id = \$1 AND created_at >= \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("old", fixedNow().Add(-time.Second)))
	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE user_id = \$1 AND created_at >= \$2 ORDER BY created_at ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "message", "created_at"}).
			AddRow("old", "u1", "video_approved", "old one", fixedNow().Add(-time.Second)).
			AddRow("n1", "u1", "badge_awarded", "New badge", fixedNow()).
			AddRow("n2", "u1", "level_up", "Level up", fixedNow()))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	var buf bytes.Buffer
	svc.Stream(ctx, "u1", bufio.NewWriter(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, ":\n\n"))
	assert.Contains(t, out, "id: n1\nevent: notification\n")
	assert.Contains(t, out, "id: n2\nevent: notification\n")
	assert.NotContains(t, out, "id: old")
	assert.Equal(t, 1, strings.Count(out, "id: n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
