package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// DateLayout is the calendar-date format stored for deadlines and payment dates.
const DateLayout = "2006-01-02"

// DateOf formats t as a calendar date in UTC.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "model: parse date %q", s)
	}
	return t, nil
}

// Overdue reports whether an assignment at stage has missed its campaign's
// posting deadline. Only contacted and brief_sent assignments can be overdue.
func Overdue(stage Stage, deadline *string, today string) bool {
	if deadline == nil || *deadline == "" {
		return false
	}
	return *deadline < today && stage.Early()
}

// DaysBetween returns the whole days from "from" to "to", both YYYY-MM-DD.
// Unparseable input yields 0.
func DaysBetween(from, to string) int {
	f, err := ParseDate(from)
	if err != nil {
		return 0
	}
	t, err := ParseDate(to)
	if err != nil {
		return 0
	}
	return int(t.Sub(f).Hours() / 24)
}
