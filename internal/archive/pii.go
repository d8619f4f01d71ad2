package archive

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// 10 to 15 digits, optionally separated by spaces, dots, dashes or parens.
	phoneRe = regexp.MustCompile(`\+?\(?\d(?:[\s\-.()]{0,2}\d){9,14}`)
	// slot dates ("2024-06-01 10:00 AM") also look like digit runs
	dateRe = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
)

// HashPhone returns the hex-encoded SHA-256 hash of the phone's digits.
func HashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	h := sha256.Sum256([]byte(digits))
	return fmt.Sprintf("%x", h)
}

// ScrubPII replaces emails with [EMAIL] and phone numbers with [PHONE].
// Names are kept.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	return phoneRe.ReplaceAllStringFunc(text, func(m string) string {
		if dateRe.MatchString(m) {
			return m
		}
		return "[PHONE]"
	})
}

// ScrubMessages applies PII scrubbing to all messages in place.
func ScrubMessages(msgs []Message) {
	for i := range msgs {
		msgs[i].Content = ScrubPII(msgs[i].Content)
	}
}
