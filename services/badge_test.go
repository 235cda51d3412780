package services

import (
	"testing"

	"scout-platform/models"

	"github.com/stretchr/testify/assert"
)

func TestMeetsThreshold(t *testing.T) {
	prog := BadgeProgress{
		Videos:              3,
		CompletedChallenges: 12,
		AssessmentCompleted: true,
		Level:               5,
		Streak:              6,
		Points:              900,
	}

	tests := []struct {
		name string
		req  map[string]int64
		want bool
	}{
		{"event always holds", map[string]int64{models.ThresholdEvent: 1}, true},
		{"videos met", map[string]int64{models.ThresholdVideos: 1}, true},
		{"level met exactly", map[string]int64{models.ThresholdLevel: 5}, true},
		{"level short", map[string]int64{models.ThresholdLevel: 10}, false},
		{"streak short", map[string]int64{models.ThresholdStreak: 7}, false},
		{"points short", map[string]int64{models.ThresholdPoints: 1000}, false},
		{"assessment met", map[string]int64{models.ThresholdAssessment: 1}, true},
		{"all must hold", map[string]int64{models.ThresholdVideos: 1, models.ThresholdStreak: 7}, false},
		{"unknown key fails", map[string]int64{"goals": 1}, false},
		{"empty requirement", map[string]int64{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetsThreshold(prog, tt.req))
		})
	}

	assert.False(t, MeetsThreshold(BadgeProgress{}, map[string]int64{models.ThresholdAssessment: 1}))
}

func TestBadgeTriggers_UniqueCodes(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range models.BadgeTriggers {
		assert.False(t, seen[b.Code], "duplicate code %s", b.Code)
		seen[b.Code] = true
		assert.NotEmpty(t, b.NameHe)
		assert.NotEmpty(t, b.Threshold)
	}
}
