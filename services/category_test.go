package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "ball-control", CategorySlug("Ball Control", "שליטה בכדור"))
	assert.Equal(t, "first-touch", CategorySlug("  First  Touch! ", ""))
	// hebrew-only names are transliterated
	assert.NotEmpty(t, CategorySlug("", "כדרור"))
	assert.Empty(t, CategorySlug("", ""))
}
