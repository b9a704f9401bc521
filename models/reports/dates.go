package reports

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var leadDateLayouts = []string{isoDate, "02/01/2006", "2/1/2006", "02-01-2006"}

// ParseDate reads the date formats found in lead sheets. Timestamps keep
// only their date part.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[4] == '-' && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, layout := range leadDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDatePtr(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return ParseDate(*s)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func withinDays(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
