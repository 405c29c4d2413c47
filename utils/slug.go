package utils

import (
	"strings"
	"unicode"
)

// Slugify derives the URL slug for a figure name: lowercased, with runs of
// non-alphanumeric characters collapsed into single hyphens and no leading
// or trailing hyphen. The result is deterministic for a given name.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
