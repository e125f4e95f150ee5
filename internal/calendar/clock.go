package calendar

import (
	"time"

	"eventdash/internal/core"
)

// Clock supplies the current time. Tests and demos pin it to a fixed date.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// FixedClock always reports midday of d, in UTC.
func FixedClock(d core.Date) Clock {
	t := time.Date(d.Year(), time.Month(d.Month()), d.Day(), 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// Today is the calendar date reported by c.
func (c Clock) Today() core.Date {
	if c == nil {
		return core.DateOf(time.Now())
	}
	return core.DateOf(c())
}
