package services

import (
	"context"
	"testing"
	"time"

	"scout-platform/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityDay_UsesUTC(t *testing.T) {
	jerusalem := time.FixedZone("IDT", 3*60*60)
	// 01:30 local on the 5th is still the 4th in UTC
	ts := time.Date(2026, 3, 5, 1, 30, 0, 0, jerusalem)
	assert.Equal(t, "2026-03-04", ActivityDay(ts))
}

func TestRecordActivity(t *testing.T) {
	tp := &models.TrainingProgress{}

	RecordActivity(tp, "2026-03-01")
	assert.Equal(t, 1, tp.CurrentStreak)
	assert.Equal(t, 1, tp.LongestStreak)

	RecordActivity(tp, "2026-03-01")
	assert.Equal(t, 1, tp.CurrentStreak, "same day counts once")

	RecordActivity(tp, "2026-03-02")
	RecordActivity(tp, "2026-03-03")
	assert.Equal(t, 3, tp.CurrentStreak)
	assert.Equal(t, 3, tp.LongestStreak)

	RecordActivity(tp, "2026-03-06")
	assert.Equal(t, 1, tp.CurrentStreak, "gap restarts")
	assert.Equal(t, 3, tp.LongestStreak, "longest is kept")
	assert.Equal(t, "2026-03-06", tp.LastActivityOn)
}

func TestRecordActivity_AcrossMonthBoundary(t *testing.T) {
	tp := &models.TrainingProgress{CurrentStreak: 4, LongestStreak: 4, LastActivityOn: "2026-02-28"}
	RecordActivity(tp, "2026-03-01")
	assert.Equal(t, 5, tp.CurrentStreak)
	assert.Equal(t, 5, tp.LongestStreak)
}

func TestRecordCompletion(t *testing.T) {
	tp := &models.TrainingProgress{}
	RecordCompletion(tp, 2, 50)
	RecordCompletion(tp, 2, 30)
	RecordCompletion(tp, 3, 100)

	assert.EqualValues(t, 3, tp.CompletedChallenges)
	assert.EqualValues(t, 180, tp.TotalPoints)
	require.NotNil(t, tp.CompletedByLevel)
	assert.Equal(t, 2, tp.CompletedByLevel["2"])
	assert.Equal(t, 1, tp.CompletedByLevel["3"])
}

func TestShouldLevelUp(t *testing.T) {
	tests := []struct {
		name   string
		level  int
		scores []float64
		want   bool
	}{
		{"too few approvals", 3, []float64{9, 9, 9, 9}, false},
		{"enough with high mean", 3, []float64{7, 7, 7, 7, 7}, true},
		{"enough with low mean", 3, []float64{7, 7, 7, 7, 6}, false},
		{"max level never rises", models.MaxLevel, []float64{10, 10, 10, 10, 10}, false},
		{"more than required", 1, []float64{6, 8, 8, 8, 8, 8}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldLevelUp(tt.level, tt.scores))
		})
	}
}

func TestProgressionService_ResetBrokenStreaks(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProgressionService(db)
	svc.Now = fixedNow

	mock.ExpectExec(`UPDATE "users" SET "training_progress"=jsonb_set\(training_progress, '\{current_streak\}', '0'::jsonb\) WHERE role = \$1 AND \(training_progress->>'current_streak'\)::int > 0 AND training_progress->>'last_activity_on' < \$2`).
		WithArgs(models.RolePlayer, "2026-04-30").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := svc.ResetBrokenStreaks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressionService_LevelProgress(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProgressionService(db)

	mock.ExpectQuery(`SELECT "score" FROM "challenge_submissions" WHERE user_id = \$1 AND level = \$2 AND status = \$3 AND score IS NOT NULL`).
		WithArgs("p1", 4, models.SubmissionStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(8.0).AddRow(6.5).AddRow(7.0))

	got, err := svc.LevelProgress(context.Background(), &models.User{ID: "p1", Level: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Level)
	assert.Equal(t, 3, got.ApprovedAtLevel)
	assert.Equal(t, LevelUpMinApproved, got.RequiredApproved)
	assert.InDelta(t, 7.2, got.MeanScore, 1e-9)
	assert.False(t, got.MaxLevelReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressionService_ApplyApproval_LevelUp(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProgressionService(db)
	svc.Now = fixedNow

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs("p1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "level", "stats", "training_progress"}).
			AddRow("p1", models.RolePlayer, 3,
				`{"passing":50,"profile_views":7}`,
				`{"completed_challenges":4,"total_points":60,"current_streak":2,"longest_streak":2,"last_activity_on":"2026-04-30"}`))
	mock.ExpectQuery(`SELECT "score" FROM "challenge_submissions" WHERE user_id = \$1 AND level = \$2`).
		WithArgs("p1", 3, models.SubmissionStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).
			AddRow(8.0).AddRow(7.0).AddRow(7.5).AddRow(6.5).AddRow(8.0))
	mock.ExpectExec(`UPDATE "users" SET "level"=\$1,"stats"=\$2,"training_progress"=\$3`).
		WithArgs(
			4,
			jsonArg[models.PlayerStats]{check: func(st models.PlayerStats) bool {
				// round(0.7*50 + 0.3*80)
				return st.Passing == 59 && st.ProfileViews == 7
			}},
			jsonArg[models.TrainingProgress]{check: func(tp models.TrainingProgress) bool {
				return tp.CompletedChallenges == 5 && tp.TotalPoints == 75 &&
					tp.CurrentStreak == 3 && tp.LastActivityOn == "2026-05-01" &&
					tp.CompletedByLevel["3"] == 1 && tp.LastLevelUpAt != nil
			}},
			sqlmock.AnyArg(),
			"p1",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ch := &models.Challenge{ID: "c1", Level: 3, Category: models.StatPassing, Points: 15}
	out, err := svc.ApplyApproval(db, "p1", ch, 8)
	require.NoError(t, err)
	assert.True(t, out.LeveledUp)
	assert.Equal(t, 4, out.User.Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressionService_ApplyApproval_NoLevelUpBelowMean(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewProgressionService(db)
	svc.Now = fixedNow

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "level", "stats", "training_progress"}).
			AddRow("p1", models.RolePlayer, 3, `{}`, `{}`))
	mock.ExpectQuery(`SELECT "score" FROM "challenge_submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).
			AddRow(6.0).AddRow(7.0).AddRow(7.0).AddRow(6.0).AddRow(7.0))
	mock.ExpectExec(`UPDATE "users" SET "level"=\$1`).
		WithArgs(3, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	out, err := svc.ApplyApproval(db, "p1", &models.Challenge{Level: 3, Category: models.StatSpeed, Points: 10}, 6)
	require.NoError(t, err)
	assert.False(t, out.LeveledUp)
	assert.NoError(t, mock.ExpectationsWereMet())
}
