package services

import (
	"context"
	"testing"

	"scout-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeService_CreateKeepsZeroPoints(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &ChallengeService{DB: db, Cache: NewCacheService(""), Categories: NewCategoryService(db), Now: fixedNow}

	mock.ExpectExec(`INSERT INTO "challenges"`).WillReturnResult(sqlmock.NewResult(0, 1))

	ch, err := svc.Create(context.Background(), ChallengeInput{
		TitleHe:  "חימום",
		TitleEn:  "Warm-up",
		Level:    1,
		Category: models.StatPhysical,
		Points:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, ch.Points)
	assert.True(t, ch.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeService_SubmitAboveLevelIsLocked(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &ChallengeService{DB: db, Cache: NewCacheService(""), Now: fixedNow}

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs("p1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "level"}).AddRow("p1", models.RolePlayer, 2))
	mock.ExpectQuery(`SELECT \* FROM "challenges" WHERE id = \$1`).
		WithArgs("c4", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level", "category", "active"}).
			AddRow("c4", 4, models.StatShooting, true))
	mock.ExpectQuery(`SELECT DISTINCT "challenge_id" FROM "challenge_submissions" WHERE user_id = \$1 AND status = \$2`).
		WithArgs("p1", models.SubmissionStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"challenge_id"}))

	_, err := svc.SubmitChallenge(context.Background(), "p1", "c4", models.SubmissionMetrics{Attempts: 10, Successes: 6}, Upload{}, "")
	assert.ErrorIs(t, err, ErrChallengeLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeService_ReviewTwiceIsRefused(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &ChallengeService{DB: db, Cache: NewCacheService(""), Now: fixedNow}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "challenge_submissions" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs("sub1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "challenge_id", "status"}).
			AddRow("sub1", "p1", "c1", models.SubmissionStatusApproved))
	mock.ExpectRollback()

	_, err := svc.ReviewSubmission(context.Background(), "admin1", "sub1", ReviewInput{Approve: false, Feedback: "blurry"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
