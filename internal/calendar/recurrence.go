package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"eventdash/internal/core"
)

// maxOccurrences caps expansion of a single rule within one month.
const maxOccurrences = 31

// ExpandMonth returns the events to show for the given month. Events without
// a recurrence rule pass through unchanged. A recurring event is replaced by
// one copy per occurrence inside the month, in place, so source order holds.
// Events with an unparsable rule are kept as-is and reported in the error.
func ExpandMonth(events []core.Event, year, month0 int) ([]core.Event, error) {
	start := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var errs []error
	out := make([]core.Event, 0, len(events))
	for _, e := range events {
		if e.Recurrence == "" {
			out = append(out, e)
			continue
		}
		dates, err := occurrences(e, start, end)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", e.ID, err))
			out = append(out, e)
			continue
		}
		for _, d := range dates {
			occ := e
			occ.Date = core.DateOf(d)
			out = append(out, occ)
		}
	}
	return out, errors.Join(errs...)
}

func occurrences(e core.Event, start, end time.Time) ([]time.Time, error) {
	r, err := rrule.StrToRRule(e.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("parse rrule %q: %w", e.Recurrence, err)
	}
	r.DTStart(e.Date.Time)

	dates := r.Between(start, end, true)
	if len(dates) > maxOccurrences {
		dates = dates[:maxOccurrences]
	}
	return dates, nil
}
