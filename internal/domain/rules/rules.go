package rules

import (
	"regexp"
	"strings"
)

// InterestsDelimiter is the character the public API forbids inside interest
// values. Interests are stored as a native array, but the contract predates
// that and clients still must not send it.
const InterestsDelimiter = ","

var usernameRe = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

func NormalizeUsername(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func ValidUsername(value string) bool {
	return usernameRe.MatchString(value)
}

// CleanInterests trims every interest and reports whether the list is
// acceptable: no empty items and no delimiter inside a value. Order is
// preserved; a nil input is a valid empty list.
func CleanInterests(values []string) ([]string, bool) {
	if len(values) == 0 {
		return []string{}, true
	}

	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || strings.Contains(trimmed, InterestsDelimiter) {
			return nil, false
		}
		result = append(result, trimmed)
	}

	return result, true
}
