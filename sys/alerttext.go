package sys

import "strings"

var alertTimeKeywords = []string{" in ", " at ", " on ", " tomorrow", " today", " next ", " this "}

// SplitAlertText breaks free text such as "Meeting at 15:00 recurring 1h"
// into a label, a time phrase and an optional recurrence. Everything after
// the last "recurring" is the recurrence. The label ends at the earliest
// time keyword; without one, the first word is the label.
func SplitAlertText(input string) (label, when, recurrence string) {
	text := strings.TrimSpace(input)

	if idx := lastIndexFold(text, "recurring"); idx >= 0 {
		recurrence = strings.TrimSpace(text[idx+len("recurring"):])
		text = strings.TrimSpace(text[:idx])
	}

	split := -1
	for _, kw := range alertTimeKeywords {
		if pos := indexFold(text, kw); pos >= 0 && (split < 0 || pos < split) {
			split = pos
		}
	}

	if split >= 0 {
		return strings.TrimSpace(text[:split]), strings.TrimSpace(text[split:]), recurrence
	}

	label, when, _ = strings.Cut(text, " ")
	return strings.TrimSpace(label), strings.TrimSpace(when), recurrence
}

// indexFold is a case-insensitive strings.Index for ASCII needles. Offsets
// are into s itself, so they stay valid whatever s contains.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func lastIndexFold(s, needle string) int {
	for i := len(s) - len(needle); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
