// Package ladder checks that markets on the same event, differing only by
// deadline, are priced monotonically: P(by earlier) <= P(by later).
package ladder

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDeadline    = regexp.MustCompile(`(?i)\bby\s+(\d{4}-\d{2}-\d{2})`)
	byMonthDay     = regexp.MustCompile(`(?i)\bby\s+([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	beforeMonthDay = regexp.MustCompile(`(?i)\bbefore\s+([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)

	// Every "by ..." or "before ..." clause up to the next question mark
	deadlineClause = regexp.MustCompile(`(?i)\s*\b(?:by|before)\s+[^?]+`)
)

// Month layouts tried in order: full names, then abbreviations
var monthLayouts = []string{"January 2 2006", "Jan 2 2006"}

// ExtractDeadline parses the resolution date from a market question.
// It tries, in order:
//   - "by 2024-12-31"
//   - "by December 31, 2024" (or "Dec 31, 2024")
//   - "before January 1, 2025", which means up to and including the day
//     before, so it yields 2024-12-31
//
// The second result is false when no pattern parses; such a market is not
// part of any ladder.
func ExtractDeadline(question string) (time.Time, bool) {
	if m := isoDeadline.FindStringSubmatch(question); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]); err == nil {
			return d, true
		}
	}

	if m := byMonthDay.FindStringSubmatch(question); m != nil {
		if d, ok := parseMonthDay(m[1], m[2], m[3]); ok {
			return d, true
		}
	}

	if m := beforeMonthDay.FindStringSubmatch(question); m != nil {
		if d, ok := parseMonthDay(m[1], m[2], m[3]); ok {
			return d.AddDate(0, 0, -1), true
		}
	}

	return time.Time{}, false
}

func parseMonthDay(month, day, year string) (time.Time, bool) {
	value := month + " " + day + " " + year
	for _, layout := range monthLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// BaseQuestion strips the deadline clause so that rungs of one ladder share a key.
//
// The clause starts at the first "by" or "before" word, not at the date, so
// a question that uses "by" earlier loses everything after it: "Will the mine
// owned by CATL resume by 2024-12-31?" and "Will the mine owned by BYD resume
// by 2025-06-30?" both reduce to "Will the mine owned?" and are grouped
// together.
func BaseQuestion(question string) string {
	return strings.TrimSpace(deadlineClause.ReplaceAllString(question, ""))
}
