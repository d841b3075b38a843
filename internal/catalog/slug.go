package catalog

import (
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases name and replaces every run of characters outside
// [a-z0-9] with a single "-". Leading and trailing hyphens are kept, so
// "Mollie (EU)" becomes "mollie-eu-".
func Slug(name string) string {
	return nonAlnumRun.ReplaceAllString(strings.ToLower(name), "-")
}
