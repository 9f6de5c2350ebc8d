package evaluation

import (
	"regexp"
	"strconv"
	"strings"
)

// scorePattern matches the first 1-3 digit number followed by the 点 suffix.
// It can pick up unrelated numbers that precede the real score.
var scorePattern = regexp.MustCompile(`(\d{1,3})点`)

// ExtractScore returns the first score-like number in text, or nil.
// The value is not range-checked.
func ExtractScore(text string) *int {
	match := scorePattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	score, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &score
}

// NormalizeReview collapses every whitespace run, newlines included, into a
// single space and trims the result.
func NormalizeReview(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
