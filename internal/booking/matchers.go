package booking

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matcher pulls one field value out of a message. Matchers for a field are
// tried in order and the first hit wins.
type Matcher struct {
	Name  string
	Match func(text string) (string, bool)
}

var titleCaser = cases.Title(language.English)

// nameStopWords end a captured name so "name ali phone 0300..." yields "Ali".
var nameStopWords = map[string]bool{
	"phone": true, "number": true, "email": true, "mobile": true, "contact": true,
	"and": true, "at": true, "for": true, "with": true,
}

func nameMatcher(name, pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return Matcher{Name: name, Match: func(text string) (string, bool) {
		m := re.FindStringSubmatch(strings.ToLower(text))
		if m == nil {
			return "", false
		}
		var kept []string
		for _, word := range strings.Fields(m[1]) {
			if nameStopWords[word] {
				break
			}
			kept = append(kept, word)
		}
		if len(kept) == 0 {
			return "", false
		}
		return titleCaser.String(strings.Join(kept, " ")), true
	}}
}

// NameMatchers extract the customer's name, stored title-cased.
var NameMatchers = []Matcher{
	nameMatcher("name_colon", `name\s*:\s*([a-z]+(?:\s+[a-z]+)*)`),
	nameMatcher("my_name_is", `my name is\s+([a-z]+(?:\s+[a-z]+)*)`),
	nameMatcher("i_am", `\bi am\s+([a-z]+(?:\s+[a-z]+)*)`),
	nameMatcher("name_word", `\bname\s+([a-z]+(?:\s+[a-z]+)*)`),
	nameMatcher("leading_word", `^\s*([a-z]+)\s*,`),
}

func digitsMatcher(name, pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return Matcher{Name: name, Match: func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m[1]) < 10 {
			return "", false
		}
		return m[1], true
	}}
}

// PhoneMatchers extract a phone number of at least ten digits.
var PhoneMatchers = []Matcher{
	digitsMatcher("phone_label", `(?i)phone(?:\s+number)?[:\s]*(\d+)`),
	digitsMatcher("number_label", `(?i)number[:\s]*(\d+)`),
	digitsMatcher("bare_digits", `(\d{10,})`),
}

var emailRE = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// EmailMatchers extract an email address verbatim.
var EmailMatchers = []Matcher{
	{Name: "email", Match: func(text string) (string, bool) {
		if m := emailRE.FindString(text); m != "" {
			return m, true
		}
		return "", false
	}},
}

// FirstMatch runs matchers in order and returns the first hit.
func FirstMatch(matchers []Matcher, text string) (string, bool) {
	for _, m := range matchers {
		if v, ok := m.Match(text); ok {
			return v, true
		}
	}
	return "", false
}

var (
	barberIDRE = regexp.MustCompile(`\bid\s*(\d+)`)
	slotRE     = regexp.MustCompile(`(?i)\b\d{4}-\d{1,2}-\d{1,2}\s+(?:at\s+)?\d{1,2}:\d{2}\s*[ap]m\b`)
)

var confirmationKeywords = []string{"yes", "confirm", "book", "proceed", "ok", "sure", "please"}

// IsConfirmation reports whether text contains a confirmation keyword.
// Matching is by substring, so "I'm not sure" also confirms.
func IsConfirmation(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range confirmationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
