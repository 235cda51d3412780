package services

import (
	"math"

	"scout-platform/models"
)

// levelThresholds[i] is the minimum average for level MaxLevel-i.
var levelThresholds = []float64{9.0, 8.0, 7.0, 6.0, 5.0, 4.0, 3.0, 2.0, 1.0}

// ClampScore forces a 0–10 score into range; NaN counts as 0.
func ClampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// LevelForAverage maps an average score to a level 1–10.
func LevelForAverage(avg float64) int {
	avg = ClampScore(avg)
	for i, min := range levelThresholds {
		if avg >= min {
			return models.MaxLevel - i
		}
	}
	return models.MinLevel
}

// AssignLevel averages the scores and looks the mean up in the threshold
// table. No scores means level 1.
func AssignLevel(scores []float64) int {
	if len(scores) == 0 {
		return models.MinLevel
	}
	return LevelForAverage(Mean(scores))
}

// Mean of clamped scores; 0 for none.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += ClampScore(s)
	}
	return sum / float64(len(scores))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
