package services

import (
	"testing"

	"scout-platform/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestIsUnlocked(t *testing.T) {
	player := &models.User{Role: models.RolePlayer, Level: 3}
	scout := &models.User{Role: models.RoleScout, Level: 1}

	assert.True(t, IsUnlocked(player, &models.Challenge{ID: "a", Level: 3}, nil))
	assert.True(t, IsUnlocked(player, &models.Challenge{ID: "b", Level: 1}, nil))
	assert.False(t, IsUnlocked(player, &models.Challenge{ID: "c", Level: 4}, nil))
	assert.True(t, IsUnlocked(scout, &models.Challenge{ID: "c", Level: 9}, nil))

	withPrereq := &models.Challenge{ID: "d", Level: 2, PrerequisiteID: strPtr("a")}
	assert.False(t, IsUnlocked(player, withPrereq, map[string]bool{}))
	assert.True(t, IsUnlocked(player, withPrereq, map[string]bool{"a": true}))
}

func TestIsUnlocked_NeverAboveLevel(t *testing.T) {
	for lvl := 1; lvl <= 10; lvl++ {
		u := &models.User{Role: models.RolePlayer, Level: lvl}
		for chLvl := 1; chLvl <= 10; chLvl++ {
			ok := IsUnlocked(u, &models.Challenge{Level: chLvl}, nil)
			assert.Equal(t, chLvl <= lvl, ok)
		}
	}
}

func TestRelevanceScore(t *testing.T) {
	u := &models.User{
		Role: models.RolePlayer, Level: 4, Position: models.PositionDefender,
		Stats: models.PlayerStats{Speed: 60, Technique: 50, Passing: 20, Shooting: 40, Dribbling: 70, Physical: 55},
	}
	best := &models.Challenge{ID: "x", Level: 4, Category: models.StatPassing, Position: "all", AgeGroup: "all"}
	assert.Equal(t, 40+20+10+20, RelevanceScore(u, best, "u16", nil))

	below := &models.Challenge{ID: "y", Level: 3, Category: models.StatShooting, Position: models.PositionForward, AgeGroup: "u12"}
	assert.Equal(t, 20, RelevanceScore(u, below, "u16", nil))

	assert.Equal(t, 40+20+10+20-100, RelevanceScore(u, best, "u16", map[string]bool{"x": true}))
}

func TestRankChallenges(t *testing.T) {
	u := &models.User{Role: models.RolePlayer, Level: 2, Stats: models.PlayerStats{Speed: 90, Technique: 90, Passing: 90, Shooting: 10, Dribbling: 90, Physical: 90}}
	challenges := []models.Challenge{
		{ID: "c1", Level: 1, Category: models.StatDribbling, Position: "all", AgeGroup: "all"},
		{ID: "c2", Level: 2, Category: models.StatShooting, Position: "all", AgeGroup: "all"},
		{ID: "c3", Level: 2, Category: models.StatPassing, Position: "all", AgeGroup: "all"},
		{ID: "c4", Level: 3, Category: models.StatShooting, Position: "all", AgeGroup: "all"},
	}

	ranked := RankChallenges(u, challenges, "", map[string]bool{"c3": true}, 0)
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Challenge.ID)
	}
	assert.Equal(t, []string{"c2", "c1", "c3"}, ids)
	assert.True(t, ranked[2].Completed)

	limited := RankChallenges(u, challenges, "", nil, 1)
	assert.Len(t, limited, 1)
}

func TestAutoScore(t *testing.T) {
	ch := &models.Challenge{TargetReps: 10, TargetSeconds: 20}

	assert.Equal(t, 10.0, AutoScore(ch, models.SubmissionMetrics{Attempts: 10, Successes: 10, Reps: 10, Seconds: 20}))
	assert.Equal(t, 10.0, AutoScore(ch, models.SubmissionMetrics{Attempts: 10, Successes: 12, Reps: 30, Seconds: 5}))
	assert.Equal(t, 2.0, AutoScore(ch, models.SubmissionMetrics{}))
	assert.Equal(t, 6.0, AutoScore(ch, models.SubmissionMetrics{Attempts: 10, Successes: 5, Reps: 5, Seconds: 20}))

	noTargets := &models.Challenge{}
	assert.Equal(t, 5.0, AutoScore(noTargets, models.SubmissionMetrics{}))
}

func TestAutoScore_AlwaysInRange(t *testing.T) {
	ch := &models.Challenge{TargetReps: 7, TargetSeconds: 13}
	for attempts := 0; attempts < 12; attempts += 3 {
		for successes := -2; successes < 15; successes += 4 {
			for secs := 0; secs < 40; secs += 9 {
				s := AutoScore(ch, models.SubmissionMetrics{Attempts: attempts, Successes: successes, Reps: successes, Seconds: secs})
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 10.0)
			}
		}
	}
}

func TestBlendSkill(t *testing.T) {
	assert.Equal(t, 30, BlendSkill(0, 10))
	assert.Equal(t, 100, BlendSkill(100, 10))
	assert.Equal(t, 70, BlendSkill(100, 0))
	assert.Equal(t, 56, BlendSkill(50, 7))
}

func TestAgeGroupFor(t *testing.T) {
	assert.Equal(t, "", AgeGroupFor(0))
	assert.Equal(t, "u10", AgeGroupFor(8))
	assert.Equal(t, "u14", AgeGroupFor(13))
	assert.Equal(t, "u19", AgeGroupFor(18))
	assert.Equal(t, "senior", AgeGroupFor(25))
}
