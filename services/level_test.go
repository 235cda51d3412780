package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignLevel_Table(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   int
	}{
		{"empty", nil, 1},
		{"zero", []float64{0}, 1},
		{"just below one", []float64{0.99}, 1},
		{"one", []float64{1}, 2},
		{"mixed average 5.5", []float64{5, 6}, 6},
		{"eight", []float64{8, 8, 8}, 9},
		{"nine", []float64{9}, 10},
		{"perfect", []float64{10, 10}, 10},
		{"out of range clamped", []float64{15, 5}, 8},
		{"negative clamped", []float64{-4, 4}, 3},
		{"nan counts as zero", []float64{math.NaN(), 4}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignLevel(tt.scores))
		})
	}
}

func TestLevelForAverage_MonotonicAndTotal(t *testing.T) {
	prev := LevelForAverage(0)
	for avg := 0.0; avg <= 10.0; avg += 0.01 {
		lvl := LevelForAverage(avg)
		assert.GreaterOrEqual(t, lvl, prev, "avg=%.2f", avg)
		assert.GreaterOrEqual(t, lvl, 1)
		assert.LessOrEqual(t, lvl, 10)
		prev = lvl
	}
	assert.Equal(t, 10, LevelForAverage(10))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 7.5, Mean([]float64{5, 10}), 1e-9)
}
