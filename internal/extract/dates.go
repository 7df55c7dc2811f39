package extract

import (
	"regexp"
	"time"
)

// datePattern pairs a regular expression locating a date substring with the
// time layout used to parse it. Patterns are tried in order; the first match
// wins, which keeps extraction deterministic.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`), "January 2, 2006"},
	{regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},\s+\d{4}\b`), "Jan 2, 2006"},
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
	{regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`), "1/2/2006"},
}

// FindDate locates the first recognizable date substring in text and parses
// it. Month names are normalized to title case before parsing so upper-cased
// agendas ("JANUARY 15, 2025") still match.
func FindDate(text string) (time.Time, bool) {
	for _, p := range datePatterns {
		match := p.re.FindString(text)
		if match == "" {
			continue
		}
		t, err := time.Parse(p.layout, normalizeMonth(match))
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

var monthRe = regexp.MustCompile(`(?i)^[a-z]+`)

func normalizeMonth(s string) string {
	return monthRe.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) == 0 {
			return m
		}
		lower := []byte(m)
		for i := range lower {
			if lower[i] >= 'A' && lower[i] <= 'Z' {
				lower[i] += 'a' - 'A'
			}
		}
		lower[0] -= 'a' - 'A'
		return string(lower)
	})
}
