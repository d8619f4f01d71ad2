// Package slottime converts stored slot timestamps into the canonical
// display form used for matching and for everything shown to customers.
package slottime

import (
	"regexp"
	"strings"
	"time"
)

// DisplayLayout is the canonical DisplaySlot format: "2024-06-01 10:00 AM".
const DisplayLayout = "2006-01-02 03:04 PM"

// DateLayout is the ISO date used by availability filters.
const DateLayout = "2006-01-02"

// Stored slots keep their own offset; the wall clock is displayed as stored,
// never converted to the server's zone.
var rawLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	DisplayLayout,
	DateLayout,
}

// Parse reads an ISO-8601-like timestamp. A trailing "Z" is treated as UTC.
func Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	for _, layout := range rawLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts a raw slot into a DisplaySlot. It never fails: input
// that cannot be parsed is returned unchanged.
func Normalize(raw string) string {
	t, ok := Parse(raw)
	if !ok {
		return raw
	}
	return t.Format(DisplayLayout)
}

// NormalizeAll normalizes every slot, preserving order.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, Normalize(r))
	}
	return out
}

// DateOf returns the YYYY-MM-DD date of a raw slot.
func DateOf(raw string) (string, bool) {
	t, ok := Parse(raw)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

var (
	atWordRE  = regexp.MustCompile(`(?i)\s+at\s+`)
	spacingRE = regexp.MustCompile(`\s+`)
	// customer-typed form: 2024-6-1 9:00am
	typedRE = regexp.MustCompile(`(?i)^(\d{4})-(\d{1,2})-(\d{1,2}) (\d{1,2}):(\d{2}) ?([ap]m)$`)
)

// Canonical rewrites a customer-typed date and time ("2024-6-1 at 9:00 am")
// into DisplayLayout. It reports false for text that is not a real
// calendar date and 12-hour time.
func Canonical(typed string) (string, bool) {
	s := atWordRE.ReplaceAllString(strings.TrimSpace(typed), " ")
	s = spacingRE.ReplaceAllString(s, " ")
	m := typedRE.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	padded := m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3]) + " " + pad2(m[4]) + ":" + m[5] + " " + strings.ToUpper(m[6])
	t, err := time.Parse(DisplayLayout, padded)
	if err != nil {
		return "", false
	}
	return t.Format(DisplayLayout), true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
