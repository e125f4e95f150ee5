package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"eventdash/internal/core"
)

const productID = "-//eventdash//Event Calendar//EN"

// ExportICS renders events as an iCalendar feed of all-day entries.
// Recurring events keep their rule so calendar clients expand them.
func ExportICS(events []core.Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("eventdash")

	for _, e := range events {
		if e.Date.IsZero() {
			continue
		}
		ev := cal.AddEvent(e.ID + "@eventdash")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(e.Name)
		ev.SetAllDayStartAt(e.Date.Time)
		ev.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
		if e.Place != "" {
			ev.SetLocation(e.Place)
		}
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.Category != "" {
			ev.SetProperty(ics.ComponentPropertyCategories, e.Category)
		}
		if e.Recurrence != "" {
			ev.AddProperty(ics.ComponentPropertyRrule, e.Recurrence)
		}
	}
	return cal.Serialize()
}
