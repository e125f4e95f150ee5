package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"eventdash/internal/calendar"
	"eventdash/internal/core"
	"eventdash/internal/listing"
	"eventdash/internal/log"
	"eventdash/internal/report"
)

// upcomingLimit is how many upcoming events the dashboard lists.
const upcomingLimit = 5

// page carries what the layout needs on every full page.
type page struct {
	Title string
	Nav   string
	Today core.Date
}

type dashboardStats struct {
	TotalEvents       int
	Upcoming          int
	Ongoing           int
	Past              int
	ExpectedAttendees int
	FeedbackCount     int
	AverageRating     float64
}

type dashboardPage struct {
	page
	Stats    dashboardStats
	Calendar calendarView
	Upcoming []core.Event
}

type calendarDay struct {
	Day    int
	Key    string
	Today  bool
	Events []core.Event
}

type calendarView struct {
	Title      string
	Year       int
	Month0     int
	PrevYear   int
	PrevMonth0 int
	NextYear   int
	NextMonth0 int
	Weeks      [][]calendarDay
}

type calendarDayView struct {
	Date   core.Date
	Events []core.Event
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		events   []core.Event
		feedback []core.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.events(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		feedback, err = s.backend.ListFeedback(gctx, "")
		if err != nil {
			return fmt.Errorf("list feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, "dashboard", err)
		return
	}

	today := s.clock.Today()
	cal, err := s.calendarView(ctx, events, today.Year(), today.Month()-1, today)
	if err != nil {
		s.fail(w, r, "dashboard", err)
		return
	}

	byStatus := countByStatus(events)
	stats := dashboardStats{
		TotalEvents:   len(events),
		Upcoming:      byStatus[core.StatusUpcoming],
		Ongoing:       byStatus[core.StatusOngoing],
		Past:          byStatus[core.StatusPast],
		FeedbackCount: len(feedback),
		AverageRating: report.SummarizeFeedback(feedback).AverageRating,
	}
	for _, e := range events {
		stats.ExpectedAttendees += e.Participants
	}

	s.render(w, r, NewHTMXResponse(), "dashboard_page", dashboardPage{
		page:     page{Title: "Dashboard", Nav: "dashboard", Today: today},
		Stats:    stats,
		Calendar: cal,
		Upcoming: nextUpcoming(events, upcomingLimit),
	})
}

// handleCalendar returns the month grid partial
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	today := s.clock.Today()
	params := ParseMonthParams(r.URL.Query(), today)

	events, err := s.events(ctx)
	if err != nil {
		s.fail(w, r, "calendar", err)
		return
	}

	view, err := s.calendarView(ctx, events, params.Year, params.Month0, today)
	if err != nil {
		s.fail(w, r, "calendar", err)
		return
	}

	log.FromContext(ctx).WithComponent(log.ComponentCalendar).DebugContext(ctx, "Calendar rendered",
		log.NewFields().WithCalendar(params.Year, params.Month0).ToSlice()...)
	s.render(w, r, NewHTMXResponse(), "calendar", view)
}

// handleCalendarDay lists the events of a single day
func (s *Server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	day, err := ParseDayParam(r.URL.Query())
	if err != nil {
		s.fail(w, r, "calendar_day", err)
		return
	}

	events, err := s.events(ctx)
	if err != nil {
		s.fail(w, r, "calendar_day", err)
		return
	}

	year, month0 := day.Year(), day.Month()-1
	expanded, err := calendar.ExpandMonth(events, year, month0)
	if err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentCalendar).WarnContext(ctx, "Some recurrence rules could not be expanded", log.FieldError, err)
	}

	s.render(w, r, NewHTMXResponse(), "calendar_day", calendarDayView{
		Date:   day,
		Events: calendar.EventsForDay(expanded, year, month0, day.Day()),
	})
}

// calendarView lays out one month, trimmed to the weeks that hold days.
// Recurrence errors are logged and the affected events shown on their
// base date only.
func (s *Server) calendarView(ctx context.Context, events []core.Event, year, month0 int, today core.Date) (calendarView, error) {
	grid, err := calendar.BuildMonthGrid(year, month0)
	if err != nil {
		return calendarView{}, err
	}

	expanded, err := calendar.ExpandMonth(events, year, month0)
	if err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentCalendar).WarnContext(ctx, "Some recurrence rules could not be expanded", log.FieldError, err)
	}

	view := calendarView{Title: grid.Title(), Year: year, Month0: month0}
	view.PrevYear, view.PrevMonth0 = calendar.PrevMonth(year, month0)
	view.NextYear, view.NextMonth0 = calendar.NextMonth(year, month0)

	for _, week := range grid.Weeks[:grid.UsedWeeks()] {
		row := make([]calendarDay, 0, len(week))
		for _, cell := range week {
			if cell.Empty() {
				row = append(row, calendarDay{})
				continue
			}
			row = append(row, calendarDay{
				Day:    cell.Day,
				Key:    calendar.DateKey(year, month0, cell.Day),
				Today:  grid.IsToday(cell.Day, today),
				Events: calendar.EventsForDay(expanded, year, month0, cell.Day),
			})
		}
		view.Weeks = append(view.Weeks, row)
	}
	return view, nil
}

// nextUpcoming returns the soonest upcoming events, earliest first.
func nextUpcoming(events []core.Event, limit int) []core.Event {
	upcoming := listing.Where(events, func(e core.Event) bool { return e.Status == core.StatusUpcoming })
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date.Time) })
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}
