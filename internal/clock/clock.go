// Package clock provides the time source used to default expense dates.
package clock

import (
	"time"

	"expenselog/internal/core"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock in the local time zone.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// FixedDate returns a Fixed clock at midnight UTC of the given date.
func FixedDate(year int, month time.Month, day int) Fixed {
	return Fixed{T: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the calendar date of c in ISO form, in the clock's own
// location.
func Today(c Clock) string {
	return c.Now().Format(core.DateLayout)
}
