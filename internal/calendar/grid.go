// Package calendar builds month grids for the dashboard calendar and
// resolves which events fall on a given day.
package calendar

import (
	"fmt"
	"time"

	"eventdash/internal/core"
)

const (
	// WeeksPerGrid is the fixed height of the canvas, enough for any month.
	WeeksPerGrid = 6
	DaysPerWeek  = 7
)

// Cell is one calendar square. Day is 0 for padding cells.
type Cell struct {
	Day int
}

func (c Cell) Empty() bool { return c.Day == 0 }

// Week runs Sunday to Saturday.
type Week [DaysPerWeek]Cell

// Grid is a month laid out on a 6x7 canvas.
type Grid struct {
	Year         int
	Month0       int // 0 = January
	FirstWeekday time.Weekday
	DaysInMonth  int
	Weeks        [WeeksPerGrid]Week
}

// Dated is implemented by records that sit on a calendar day.
type Dated interface {
	DateKey() string
}

// BuildMonthGrid lays out the given month. month0 is zero-based and must be
// within 0..11.
func BuildMonthGrid(year, month0 int) (Grid, error) {
	if month0 < 0 || month0 > 11 {
		return Grid{}, fmt.Errorf("%w: month %d out of range 0..11", core.ErrInvalidArgument, month0)
	}

	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	g := Grid{
		Year:         year,
		Month0:       month0,
		FirstWeekday: first.Weekday(),
		DaysInMonth:  DaysInMonth(year, month0),
	}

	day := 1
	for w := 0; w < WeeksPerGrid; w++ {
		for d := 0; d < DaysPerWeek; d++ {
			if w == 0 && d < int(g.FirstWeekday) {
				continue
			}
			if day > g.DaysInMonth {
				return g, nil
			}
			g.Weeks[w][d] = Cell{Day: day}
			day++
		}
	}
	return g, nil
}

// DaysInMonth uses day 0 of the following month.
func DaysInMonth(year, month0 int) int {
	return time.Date(year, time.Month(month0+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// PrevMonth steps back one month, rolling into the previous year.
func PrevMonth(year, month0 int) (int, int) {
	if month0 <= 0 {
		return year - 1, 11
	}
	return year, month0 - 1
}

// NextMonth steps forward one month, rolling into the next year.
func NextMonth(year, month0 int) (int, int) {
	if month0 >= 11 {
		return year + 1, 0
	}
	return year, month0 + 1
}

// DateKey builds the zero-padded YYYY-MM-DD string for a day of month0.
func DateKey(year, month0, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month0+1, day)
}

// EventsForDay returns the records dated on the given day, in source order.
func EventsForDay[T Dated](events []T, year, month0, day int) []T {
	key := DateKey(year, month0, day)
	out := make([]T, 0)
	for _, e := range events {
		if e.DateKey() == key {
			out = append(out, e)
		}
	}
	return out
}

// Position returns the row and column holding day.
func (g Grid) Position(day int) (row, col int, ok bool) {
	if day < 1 || day > g.DaysInMonth {
		return 0, 0, false
	}
	offset := int(g.FirstWeekday) + day - 1
	return offset / DaysPerWeek, offset % DaysPerWeek, true
}

// UsedWeeks counts the rows that contain at least one day.
func (g Grid) UsedWeeks() int {
	row, _, _ := g.Position(g.DaysInMonth)
	return row + 1
}

// Title renders e.g. "October 2025".
func (g Grid) Title() string {
	return fmt.Sprintf("%s %d", time.Month(g.Month0+1), g.Year)
}

// IsToday reports whether day of this grid is today.
func (g Grid) IsToday(day int, today core.Date) bool {
	return !today.IsZero() && today.Year() == g.Year && today.Month() == g.Month0+1 && today.Day() == day
}
