package utils

import (
	"strings"

	"github.com/gosimple/unidecode"
)

// FoldName lower-cases and transliterates a name to ASCII so that searches
// for "Jose" match "José". Hebrew letters transliterate as well.
func FoldName(name string) string {
	folded := strings.ToLower(unidecode.Unidecode(name))
	return strings.Join(strings.Fields(folded), " ")
}
