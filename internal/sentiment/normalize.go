package sentiment

import (
	"regexp"
	"strings"
)

var (
	mentionPattern = regexp.MustCompile(`(?i)@[\p{L}\p{N}_]+`)
	urlPattern     = regexp.MustCompile(`(?i)(?:http|www)[^\s\p{Z}]+`)
)

// Normalize removes @mentions and URL-shaped substrings and trims surrounding
// whitespace. If that leaves nothing from a non-empty input, the input is
// returned unchanged so the classifier always sees some signal.
func Normalize(text string) string {
	cleaned := mentionPattern.ReplaceAllString(text, "")
	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" && text != "" {
		return text
	}
	return cleaned
}
