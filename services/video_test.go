package services

import (
	"context"
	"testing"

	"scout-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoService_LikeTwiceCountsOnce(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &VideoService{DB: db, Cache: NewCacheService("")}
	videoRow := func(likes int) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "owner_id", "status", "likes"}).
			AddRow("v1", "p1", models.VideoStatusApproved, likes)
	}

	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE id = \$1`).WillReturnRows(videoRow(3))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "video_likes" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE id = \$1`).WillReturnRows(videoRow(3))

	v, err := svc.Like(context.Background(), "u2", "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, v.Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoService_LikeCountsNewLike(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &VideoService{DB: db, Cache: NewCacheService("")}

	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "likes"}).AddRow("v1", models.VideoStatusApproved, 3))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "video_likes"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "videos" SET "likes"=likes \+ 1 WHERE id = \$1`).
		WithArgs("v1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "likes"}).AddRow("v1", models.VideoStatusApproved, 4))

	v, err := svc.Like(context.Background(), "u2", "v1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, v.Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoService_LikeNeedsApprovedVideo(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &VideoService{DB: db, Cache: NewCacheService("")}

	mock.ExpectQuery(`SELECT \* FROM "videos" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("v1", models.VideoStatusPending))

	_, err := svc.Like(context.Background(), "u2", "v1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
