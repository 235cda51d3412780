// Package i18n holds the Hebrew/English message catalog shown to users.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	Hebrew  = "he"
	English = "en"
)

var supported = []language.Tag{language.Hebrew, language.English}

var matcher = language.NewMatcher(supported)

var cat = catalog.NewBuilder(catalog.Fallback(language.Hebrew))

func init() {
	for key, m := range messages {
		_ = cat.SetString(language.Hebrew, key, m.he)
		_ = cat.SetString(language.English, key, m.en)
	}
}

// Normalize maps any language code to "he" or "en" (Hebrew by default).
func Normalize(lang string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), English) {
		return English
	}
	return Hebrew
}

// FromAcceptLanguage picks the best supported language from an
// Accept-Language header value. Empty or unparsable headers yield fallback.
func FromAcceptLanguage(header, fallback string) string {
	if strings.TrimSpace(header) == "" {
		return Normalize(fallback)
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Normalize(fallback)
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Normalize(fallback)
	}
	if supported[idx] == language.English {
		return English
	}
	return Hebrew
}

// T renders a message key in the given language. Unknown keys are returned as-is.
func T(lang, key string, args ...interface{}) string {
	tag := language.Hebrew
	if Normalize(lang) == English {
		tag = language.English
	}
	if _, ok := messages[key]; !ok {
		return key
	}
	p := message.NewPrinter(tag, message.Catalog(cat))
	return p.Sprintf(key, args...)
}

// Has reports whether a key exists in the catalog.
func Has(key string) bool {
	_, ok := messages[key]
	return ok
}
