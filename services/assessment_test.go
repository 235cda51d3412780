package services

import (
	"context"
	"math"
	"testing"

	"scout-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(exercise string, score float64) models.AssessmentSubmission {
	return models.AssessmentSubmission{ExerciseType: exercise, Status: models.AssessmentSubmissionScored, Score: &score}
}

func TestScoresIfComplete(t *testing.T) {
	required := []string{"sprint", "juggling", "passing"}

	scores, ok := ScoresIfComplete(required, []models.AssessmentSubmission{
		scored("passing", 6), scored("sprint", 8), scored("juggling", 7),
	})
	assert.True(t, ok)
	assert.Equal(t, []float64{8, 7, 6}, scores, "ordered like the required list")

	pending := models.AssessmentSubmission{ExerciseType: "passing", Status: models.AssessmentSubmissionPending}
	_, ok = ScoresIfComplete(required, []models.AssessmentSubmission{scored("sprint", 8), scored("juggling", 7), pending})
	assert.False(t, ok, "an unscored exercise keeps the assessment open")

	_, ok = ScoresIfComplete(nil, []models.AssessmentSubmission{scored("sprint", 8)})
	assert.False(t, ok)
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(0))
	assert.True(t, ValidScore(7.5))
	assert.True(t, ValidScore(10))
	assert.False(t, ValidScore(-0.1))
	assert.False(t, ValidScore(10.01))
	assert.False(t, ValidScore(math.NaN()))
}

func TestScoreAssessmentSubmission_CompletesAndAssignsLevel(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &AssessmentService{DB: db, Cache: NewCacheService(""), Now: fixedNow}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "assessment_submissions" WHERE id = \$1`).
		WithArgs("s2", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "assessment_id", "user_id", "exercise_type", "status"}).
			AddRow("s2", "a1", "p1", "juggling", models.AssessmentSubmissionPending))
	mock.ExpectQuery(`SELECT \* FROM "assessments" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs("a1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "exercise_types"}).
			AddRow("a1", "p1", models.AssessmentInProgress, `["sprint","juggling"]`))
	mock.ExpectExec(`UPDATE "assessment_submissions" SET "score"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "assessment_submissions" WHERE assessment_id = \$1`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assessment_id", "exercise_type", "status", "score"}).
			AddRow("s1", "a1", "sprint", models.AssessmentSubmissionScored, 8.0).
			AddRow("s2", "a1", "juggling", models.AssessmentSubmissionScored, 7.0))
	mock.ExpectExec(`UPDATE "assessments" SET "status"=\$1,"average_score"=\$2,"assigned_level"=\$3`).
		WithArgs(models.AssessmentCompleted, 7.5, 8, sqlmock.AnyArg(), sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "assessment_completed"=\$1,"level"=\$2`).
		WithArgs(true, 8, sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "level"}).AddRow("p1", models.RolePlayer, 8))

	a, err := svc.ScoreAssessmentSubmission(context.Background(), "admin1", "s2", 7)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentCompleted, a.Status)
	assert.Equal(t, 8, a.AssignedLevel)
	assert.InDelta(t, 7.5, a.AverageScore, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreAssessmentSubmission_ClosedAssessment(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &AssessmentService{DB: db, Cache: NewCacheService(""), Now: fixedNow}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "assessment_submissions" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "assessment_id", "status"}).
			AddRow("s2", "a1", models.AssessmentSubmissionScored))
	mock.ExpectQuery(`SELECT \* FROM "assessments" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("a1", models.AssessmentCompleted))
	mock.ExpectRollback()

	_, err := svc.ScoreAssessmentSubmission(context.Background(), "admin1", "s2", 9)
	assert.ErrorIs(t, err, ErrAssessmentClosed)

	_, err = svc.ScoreAssessmentSubmission(context.Background(), "admin1", "s2", 11)
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
