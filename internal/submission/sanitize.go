package submission

import "strings"

// DefaultMaxFieldLength bounds every stored free-text field.
const DefaultMaxFieldLength = 1000

// Sanitize bounds free text prior to storage or display: the value is cut to
// at most maxLen characters, then stripped of leading and trailing whitespace.
// Absent input yields the empty string. Sanitize is idempotent.
func Sanitize(value string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxFieldLength
	}
	runes := []rune(value)
	if len(runes) > maxLen {
		value = string(runes[:maxLen])
	}
	return strings.TrimSpace(value)
}
