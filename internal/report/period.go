package report

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned for an unknown revenue period.
var ErrInvalidPeriod = errors.New("period must be daily, monthly or yearly")

// Period is a calendar bucket relative to "now".
type Period string

const (
	Daily   Period = "daily"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// ParsePeriod validates a user-supplied period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Daily, Monthly, Yearly:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// Contains reports whether t falls in the same calendar day, month or year
// as now. Both instants are converted to loc first so the answer does not
// depend on the caller's zone.
func (p Period) Contains(t, now time.Time, loc *time.Location) bool {
	t, now = t.In(loc), now.In(loc)
	switch p {
	case Daily:
		return t.Year() == now.Year() && t.YearDay() == now.YearDay()
	case Monthly:
		return t.Year() == now.Year() && t.Month() == now.Month()
	case Yearly:
		return t.Year() == now.Year()
	}
	return false
}
