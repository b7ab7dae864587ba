// Package lexicon holds the text heuristics the insight pipeline treats as
// black boxes: delimiter extraction, name-based gender guessing and the
// age-bracket predictor.
package lexicon

import "strings"

// Between returns the text after the first occurrence of start and before the
// next occurrence of end. ok is false when either delimiter is missing.
func Between(s, start, end string) (string, bool) {
	i := strings.Index(s, start)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// LastRunes returns at most the last n runes of s.
func LastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
