package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdash/internal/core"
)

func TestExpandMonthWeeklyRule(t *testing.T) {
	events := []core.Event{
		{ID: "1", Name: "Standup", Date: core.NewDate(2025, 10, 1), Recurrence: "FREQ=WEEKLY;COUNT=10"},
		{ID: "2", Name: "Saga 2025", Date: core.NewDate(2025, 10, 22)},
	}

	got, err := ExpandMonth(events, 2025, 9)
	require.NoError(t, err)

	var keys []string
	for _, e := range got {
		keys = append(keys, e.ID+"@"+e.DateKey())
	}
	assert.Equal(t, []string{
		"1@2025-10-01", "1@2025-10-08", "1@2025-10-15", "1@2025-10-22", "1@2025-10-29",
		"2@2025-10-22",
	}, keys)

	day := EventsForDay(got, 2025, 9, 22)
	require.Len(t, day, 2)
	assert.Equal(t, "Standup", day[0].Name)
	assert.Equal(t, "Saga 2025", day[1].Name)
}

func TestExpandMonthOutsideRange(t *testing.T) {
	events := []core.Event{
		{ID: "1", Name: "Standup", Date: core.NewDate(2025, 10, 1), Recurrence: "FREQ=WEEKLY;COUNT=2"},
	}
	got, err := ExpandMonth(events, 2025, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpandMonthBadRuleKeepsEvent(t *testing.T) {
	events := []core.Event{
		{ID: "9", Name: "Broken", Date: core.NewDate(2025, 10, 3), Recurrence: "FREQ=SOMETIMES"},
	}
	got, err := ExpandMonth(events, 2025, 9)
	assert.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-10-03", got[0].DateKey())
}

func TestExportICS(t *testing.T) {
	events := []core.Event{
		{ID: "1", Name: "Saga 2025", Place: "Convention Center", Category: "major-event", Date: core.NewDate(2025, 10, 22)},
		{ID: "2", Name: "Standup", Date: core.NewDate(2025, 10, 1), Recurrence: "FREQ=WEEKLY;COUNT=4"},
		{ID: "3", Name: "Undated"},
	}

	out := ExportICS(events, time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "20251022")
	assert.Contains(t, out, "FREQ=WEEKLY;COUNT=4")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)
	assert.Equal(t, "Saga 2025", parsed[0].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Convention Center", parsed[0].GetProperty(ics.ComponentPropertyLocation).Value)
}
