package services

import (
	"sort"

	"scout-platform/models"
)

// Relevance weights used to rank recommended challenges.
const (
	relevanceSameLevel    = 40
	relevanceLevelBelow   = 20
	relevanceLevelAbove   = 10
	relevancePosition     = 20
	relevanceAgeGroup     = 10
	relevanceWeakSkill    = 20
	relevanceCompletedHit = -100
)

// IsUnlocked: a challenge opens once the user's level reaches it and its
// prerequisite (if any) is completed. Scouts and admins see everything.
func IsUnlocked(u *models.User, ch *models.Challenge, completed map[string]bool) bool {
	if !u.IsPlayer() {
		return true
	}
	if ch.Level > u.Level {
		return false
	}
	if ch.PrerequisiteID != nil && *ch.PrerequisiteID != "" && !completed[*ch.PrerequisiteID] {
		return false
	}
	return true
}

// RelevanceScore ranks a challenge for a player. ageGroup is the player's
// age-group slug ("" when unknown).
func RelevanceScore(u *models.User, ch *models.Challenge, ageGroup string, completed map[string]bool) int {
	score := 0
	switch ch.Level - u.Level {
	case 0:
		score += relevanceSameLevel
	case -1:
		score += relevanceLevelBelow
	case 1:
		score += relevanceLevelAbove
	}
	if ch.Position == "" || ch.Position == models.CategoryAll || ch.Position == u.Position {
		score += relevancePosition
	}
	if ch.AgeGroup == "" || ch.AgeGroup == models.CategoryAll || (ageGroup != "" && ch.AgeGroup == ageGroup) {
		score += relevanceAgeGroup
	}
	if ch.Category == u.Stats.WeakestSkill() {
		score += relevanceWeakSkill
	}
	if completed[ch.ID] {
		score += relevanceCompletedHit
	}
	return score
}

// RankedChallenge pairs a challenge with its relevance.
type RankedChallenge struct {
	Challenge models.Challenge `json:"challenge"`
	Relevance int              `json:"relevance"`
	Completed bool             `json:"completed"`
}

// RankChallenges keeps unlocked challenges and orders them by relevance
// desc, then level asc, then id for stability.
func RankChallenges(u *models.User, challenges []models.Challenge, ageGroup string, completed map[string]bool, limit int) []RankedChallenge {
	ranked := make([]RankedChallenge, 0, len(challenges))
	for i := range challenges {
		ch := &challenges[i]
		if !IsUnlocked(u, ch, completed) {
			continue
		}
		ranked = append(ranked, RankedChallenge{
			Challenge: *ch,
			Relevance: RelevanceScore(u, ch, ageGroup, completed),
			Completed: completed[ch.ID],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		if ranked[i].Challenge.Level != ranked[j].Challenge.Level {
			return ranked[i].Challenge.Level < ranked[j].Challenge.Level
		}
		return ranked[i].Challenge.ID < ranked[j].Challenge.ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// AutoScore derives a 0–10 score from self-reported metrics.
func AutoScore(ch *models.Challenge, m models.SubmissionMetrics) float64 {
	accuracy := 0.0
	if m.Attempts > 0 {
		accuracy = float64(m.Successes) / float64(m.Attempts)
		if accuracy > 1 {
			accuracy = 1
		}
		if accuracy < 0 {
			accuracy = 0
		}
	}

	completion := 1.0
	if ch.TargetReps > 0 {
		completion = float64(m.Reps) / float64(ch.TargetReps)
		if completion > 1 {
			completion = 1
		}
		if completion < 0 {
			completion = 0
		}
	}

	timeFactor := 1.0
	if ch.TargetSeconds > 0 && m.Seconds > 0 {
		timeFactor = float64(ch.TargetSeconds) / float64(m.Seconds)
		if timeFactor > 1 {
			timeFactor = 1
		}
	}

	return ClampScore(round1(10 * (0.5*accuracy + 0.3*completion + 0.2*timeFactor)))
}

// BlendSkill moves a 0–100 stat toward a new 0–10 score.
func BlendSkill(old int, score float64) int {
	v := int(0.7*float64(old) + 0.3*ClampScore(score)*10 + 0.5)
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// AgeGroupFor maps an age to the default age-group slugs.
func AgeGroupFor(age int) string {
	switch {
	case age <= 0:
		return ""
	case age < 10:
		return "u10"
	case age < 12:
		return "u12"
	case age < 14:
		return "u14"
	case age < 16:
		return "u16"
	case age < 19:
		return "u19"
	default:
		return "senior"
	}
}
