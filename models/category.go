// models/category.go
package models

const (
	CategoryExerciseType = "exercise_type"
	CategoryAgeGroup     = "age_group"
	CategoryPosition     = "position"
)

// CategoryAll matches every value of a kind on challenges.
const CategoryAll = "all"

var CategoryKinds = []string{CategoryExerciseType, CategoryAgeGroup, CategoryPosition}

// Category is an admin-managed label used to categorise videos and challenges.
type Category struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	Kind      string `json:"kind" gorm:"type:varchar(32);uniqueIndex:idx_category_kind_slug;not null"`
	Slug      string `json:"slug" gorm:"uniqueIndex:idx_category_kind_slug;not null"`
	NameHe    string `json:"name_he" gorm:"not null"`
	NameEn    string `json:"name_en" gorm:"not null"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	Active    bool   `json:"active" gorm:"default:true"`

	Timestamps
}

// Name picks the label for a language, falling back to Hebrew.
func (c Category) Name(lang string) string {
	if lang == "en" && c.NameEn != "" {
		return c.NameEn
	}
	return c.NameHe
}

// DefaultCategories are seeded on startup when missing. Slugs are derived
// from NameEn.
var DefaultCategories = []Category{
	{Kind: CategoryExerciseType, NameHe: "כדרור", NameEn: "Dribbling", SortOrder: 1},
	{Kind: CategoryExerciseType, NameHe: "מסירות", NameEn: "Passing", SortOrder: 2},
	{Kind: CategoryExerciseType, NameHe: "בעיטות לשער", NameEn: "Shooting", SortOrder: 3},
	{Kind: CategoryExerciseType, NameHe: "מהירות", NameEn: "Speed", SortOrder: 4},
	{Kind: CategoryExerciseType, NameHe: "שליטה בכדור", NameEn: "Ball Control", SortOrder: 5},

	{Kind: CategoryAgeGroup, NameHe: "עד גיל 10", NameEn: "U10", SortOrder: 1},
	{Kind: CategoryAgeGroup, NameHe: "עד גיל 12", NameEn: "U12", SortOrder: 2},
	{Kind: CategoryAgeGroup, NameHe: "עד גיל 14", NameEn: "U14", SortOrder: 3},
	{Kind: CategoryAgeGroup, NameHe: "עד גיל 16", NameEn: "U16", SortOrder: 4},
	{Kind: CategoryAgeGroup, NameHe: "עד גיל 19", NameEn: "U19", SortOrder: 5},
	{Kind: CategoryAgeGroup, NameHe: "בוגרים", NameEn: "Senior", SortOrder: 6},

	{Kind: CategoryPosition, NameHe: "שוער", NameEn: "Goalkeeper", SortOrder: 1},
	{Kind: CategoryPosition, NameHe: "מגן", NameEn: "Defender", SortOrder: 2},
	{Kind: CategoryPosition, NameHe: "קשר", NameEn: "Midfielder", SortOrder: 3},
	{Kind: CategoryPosition, NameHe: "חלוץ", NameEn: "Forward", SortOrder: 4},
}
