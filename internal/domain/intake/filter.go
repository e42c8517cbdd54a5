package intake

import (
	"regexp"
	"strings"
)

// Deny patterns run against the raw entry name, allow patterns against the
// lowercased one.
var (
	deniedEntryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^__MACOSX/`),
		regexp.MustCompile(`\.DS_Store$`),
	}
	allowedEntryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.jpg$`),
		regexp.MustCompile(`\.jpeg`),
		regexp.MustCompile(`\.png$`),
	}
)

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// KeepEntry reports whether an archive entry name looks like an image worth
// extracting.
func KeepEntry(name string) bool {
	if matchesAny(name, deniedEntryPatterns) {
		return false
	}
	return matchesAny(strings.ToLower(name), allowedEntryPatterns)
}

// FilterEntryNames keeps the names accepted by KeepEntry, in order.
func FilterEntryNames(names []string) []string {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if KeepEntry(name) {
			kept = append(kept, name)
		}
	}
	return kept
}
