package services

import (
	"scout-platform/models"
)

type completionCheck struct {
	weight int
	done   func(u *models.User) bool
}

var playerChecks = []completionCheck{
	{15, func(u *models.User) bool { return u.FullName != "" }},
	{10, func(u *models.User) bool { return u.Phone != "" }},
	{10, func(u *models.User) bool { return u.DateOfBirth != nil }},
	{10, func(u *models.User) bool { return u.City != "" }},
	{15, func(u *models.User) bool { return u.Position != "" }},
	{5, func(u *models.User) bool { return u.PreferredFoot != "" }},
	{5, func(u *models.User) bool { return u.HeightCM > 0 }},
	{5, func(u *models.User) bool { return u.WeightKG > 0 }},
	{5, func(u *models.User) bool { return u.Club != "" }},
	{5, func(u *models.User) bool { return u.Bio != "" }},
	{10, func(u *models.User) bool { return u.ProfileImageURL != "" }},
	{5, func(u *models.User) bool { return u.AssessmentCompleted }},
}

var scoutChecks = []completionCheck{
	{20, func(u *models.User) bool { return u.FullName != "" }},
	{15, func(u *models.User) bool { return u.Phone != "" }},
	{10, func(u *models.User) bool { return u.City != "" }},
	{20, func(u *models.User) bool { return u.Organization != "" }},
	{10, func(u *models.User) bool { return u.LicenseNumber != "" }},
	{10, func(u *models.User) bool { return u.YearsExperience > 0 }},
	{5, func(u *models.User) bool { return u.Bio != "" }},
	{10, func(u *models.User) bool { return u.ProfileImageURL != "" }},
}

// CompletionPercentage is the weighted share of filled profile fields, 0–100.
func CompletionPercentage(u *models.User) int {
	var checks []completionCheck
	switch u.Role {
	case models.RolePlayer:
		checks = playerChecks
	case models.RoleScout:
		checks = scoutChecks
	default:
		return 100
	}

	total, done := 0, 0
	for _, c := range checks {
		total += c.weight
		if c.done(u) {
			done += c.weight
		}
	}
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// RecommendationContext carries the facts that are not on the user row.
type RecommendationContext struct {
	HasVideos         bool
	ActiveLastWeek    bool
	WatchlistNotEmpty bool
}

// Recommendations returns the i18n keys of the next steps for a user, in a
// fixed order.
func Recommendations(u *models.User, rc RecommendationContext) []string {
	var out []string
	if CompletionPercentage(u) < 100 {
		out = append(out, "complete_profile")
	}
	if u.ProfileImageURL == "" {
		out = append(out, "add_profile_photo")
	}
	switch u.Role {
	case models.RolePlayer:
		if u.Position == "" {
			out = append(out, "set_position")
		}
		if !u.AssessmentCompleted {
			out = append(out, "complete_assessment")
		}
		if !rc.HasVideos {
			out = append(out, "upload_first_video")
		}
		if !rc.ActiveLastWeek {
			out = append(out, "try_challenge")
		}
	case models.RoleScout:
		if !rc.WatchlistNotEmpty {
			out = append(out, "browse_players")
		}
	}
	return out
}
