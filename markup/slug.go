package markup

import (
	"regexp"
	"strings"
)

var (
	reSlugStrip   = regexp.MustCompile(`[^\w\s-]`)
	reSlugSpaces  = regexp.MustCompile(`\s+`)
	reSlugHyphens = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a URL-safe identifier from a title: lowercase, drop
// everything outside word characters, whitespace, and hyphens, collapse
// whitespace runs into single hyphens, and trim hyphens at both ends.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = reSlugStrip.ReplaceAllString(s, "")
	s = reSlugSpaces.ReplaceAllString(s, "-")
	return reSlugHyphens.ReplaceAllString(s, "")
}
