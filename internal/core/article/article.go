// Package article contains the pure domain types for generated articles:
// themes, drafts, and the structural analysis derived from a draft's body.
package article

import (
	"regexp"
	"strings"
	"unicode"
)

// Theme is a topic seed used to prompt article generation.
type Theme struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	StyleHints []string `yaml:"style_hints,omitempty"`
}

// NormalizeThemeID canonicalizes a theme identifier for deduplication:
// lowercase, trimmed, inner whitespace folded to single hyphens.
func NormalizeThemeID(id string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(id)))
	return strings.Join(fields, "-")
}

// Draft is one generated candidate article. It is immutable once scored;
// regeneration produces a new Draft rather than mutating an existing one.
type Draft struct {
	Title        string
	Body         string
	Hashtags     []string
	WordCount    int
	HeadingCount int
	Theme        Theme
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]{2,}`)

// TitleKeywords extracts the significant words of the title (two or more
// letters/digits, any script) for keyword-density scoring.
func TitleKeywords(title string) []string {
	return wordPattern.FindAllString(title, -1)
}

// BodyLength counts the content runes of a body, ignoring whitespace.
// Japanese prose has no word boundaries, so length is measured in runes
// rather than space-separated words.
func BodyLength(body string) int {
	n := 0
	for _, r := range body {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
