package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	monthNameRe = regexp.MustCompile(`^([A-Za-z]{3,9})\s+(\d{1,2}),\s*(\d{4})(?:\s+(\d{1,2}:\d{2})\s*([AaPp][Mm]))?$`)
	dayMonRe    = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{4})$`)
	hasTimeRe   = regexp.MustCompile(`\d{2}:\d{2}`)
)

func tryLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateTimeISO normalizes the vendor date formats seen on receipts into an
// ISO-8601 string: YYYY-MM-DD, or YYYY-MM-DDTHH:MM:SS when a time is present.
// Naive (no timezone); the app only needs consistent sorting. Returns
// ("", false) when parsing fails.
//
// Handled formats: ISO passthrough, US numerics (11/11/25, 08-25-2025), month
// names with optional time ("Aug 25, 2025", "May 6, 2025 6:12 PM"), and the
// DigiKey style "20-SEP-2025".
func DateTimeISO(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", false
	}

	if t, ok := tryLayouts(s, []string{"2006-01-02", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04"}); ok {
		if hasTimeRe.MatchString(s) {
			return t.Format("2006-01-02T15:04:05"), true
		}
		return t.Format("2006-01-02"), true
	}

	if t, ok := tryLayouts(s, []string{"1/2/2006", "1/2/06", "1-2-2006", "1-2-06"}); ok {
		return t.Format("2006-01-02"), true
	}

	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		mon, ok := months[strings.ToLower(m[1][:3])]
		if ok {
			day := atoi(m[2])
			year := atoi(m[3])
			if m[4] != "" {
				clock, err := time.Parse("3:04 PM", fmt.Sprintf("%s %s", m[4], strings.ToUpper(m[5])))
				if err == nil {
					t := time.Date(year, mon, day, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
					return t.Format("2006-01-02T15:04:05"), true
				}
			}
			return time.Date(year, mon, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), true
		}
	}

	if m := dayMonRe.FindStringSubmatch(s); m != nil {
		if mon, ok := months[strings.ToLower(m[2])]; ok {
			t := time.Date(atoi(m[3]), mon, atoi(m[1]), 0, 0, 0, 0, time.UTC)
			return t.Format("2006-01-02"), true
		}
	}

	return "", false
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
