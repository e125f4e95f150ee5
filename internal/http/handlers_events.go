package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"eventdash/internal/calendar"
	"eventdash/internal/core"
	"eventdash/internal/invite"
	"eventdash/internal/listing"
	"eventdash/internal/log"
	"eventdash/internal/report"
)

// pagerWidth is how many page buttons the participant pager shows.
const pagerWidth = 5

type statusTab struct {
	Key    string
	Label  string
	Count  int
	Active bool
}

type eventsTable struct {
	Params     EventListParams
	Page       listing.Page[core.Event]
	Categories []string
	Tabs       []statusTab
}

type eventsPage struct {
	page
	Table eventsTable
}

type participantsTable struct {
	EventID   string
	Params    ListParams
	Page      listing.Page[core.Participant]
	Window    []int
	CheckedIn int
}

type qrStatusForm struct {
	EventID string
	Enabled []core.QRStatus
	All     []core.QRStatus
	Max     int
}

type eventDetailPage struct {
	page
	Event         core.Event
	Participants  participantsTable
	QR            qrStatusForm
	InvitationURL string
	Registrations int
}

type feedbackPage struct {
	page
	Event   core.Event
	Params  ListParams
	Items   []core.Feedback
	Stats   report.FeedbackStats
	Ratings []core.Rating
}

// handleEvents renders the events page with status tabs
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	table, err := s.eventsTable(ctx, r.URL.Query())
	if err != nil {
		s.fail(w, r, "list_events", err)
		return
	}

	s.render(w, r, NewHTMXResponse(), "events_page", eventsPage{
		page:  page{Title: "Events", Nav: "events", Today: s.clock.Today()},
		Table: table,
	})
}

// handleEventsTable returns the events table partial
func (s *Server) handleEventsTable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	table, err := s.eventsTable(ctx, r.URL.Query())
	if err != nil {
		s.fail(w, r, "list_events", err)
		return
	}
	s.render(w, r, NewHTMXResponse(), "events_table", table)
}

// handleDeleteEvent removes an event and re-renders the table it was deleted from
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	event, err := s.backend.GetEvent(ctx, id)
	if err != nil {
		s.fail(w, r, "delete_event", err)
		return
	}
	if err := s.backend.DeleteEvent(ctx, id); err != nil {
		s.fail(w, r, "delete_event", err)
		return
	}
	s.invalidate()
	log.NewStructuredLogger(log.FromContext(ctx)).LogEventDeleted(ctx, event.ID, event.Name)

	table, err := s.eventsTable(ctx, r.URL.Query())
	if err != nil {
		s.fail(w, r, "delete_event", err)
		return
	}

	resp := NewHTMXResponse().
		TriggerEventDeleted(id).
		TriggerCalendarRefresh(event.Date.Year(), event.Date.Month()-1).
		TriggerSuccessNotification(fmt.Sprintf("%s deleted", event.Name))
	s.render(w, r, resp, "events_table", table)
}

// handleEventDetail renders an event with its participants and QR settings
func (s *Server) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")

	var (
		event    core.Event
		table    participantsTable
		enabled  []core.QRStatus
		regCount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = s.backend.GetEvent(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = s.participantsTable(gctx, id, r.URL.Query())
		return err
	})
	g.Go(func() error {
		var err error
		enabled, err = s.backend.QRStatuses(gctx, id)
		return err
	})
	g.Go(func() error {
		regs, err := s.backend.ListRegistrations(gctx, id)
		regCount = len(regs)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, "event_detail", err)
		return
	}

	s.render(w, r, NewHTMXResponse(), "event_page", eventDetailPage{
		page:          page{Title: event.Name, Nav: "events", Today: s.clock.Today()},
		Event:         event,
		Participants:  table,
		QR:            newQRStatusForm(id, enabled),
		InvitationURL: invite.InvitationURL(s.baseURL, id),
		Registrations: regCount,
	})
}

// handleParticipantsTable returns the participants partial
func (s *Server) handleParticipantsTable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	table, err := s.participantsTable(ctx, r.PathValue("id"), r.URL.Query())
	if err != nil {
		s.fail(w, r, "list_participants", err)
		return
	}
	s.render(w, r, NewHTMXResponse(), "participants_table", table)
}

// handleFeedback renders the feedback collected for an event
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	event, err := s.backend.GetEvent(ctx, id)
	if err != nil {
		s.fail(w, r, "feedback", err)
		return
	}
	all, err := s.backend.ListFeedback(ctx, id)
	if err != nil {
		s.fail(w, r, "feedback", err)
		return
	}

	params := ParseListParams(r.URL.Query())
	items := report.SortFeedbackNewestFirst(listing.Filter(all, params.Search, params.Category))

	s.render(w, r, NewHTMXResponse(), "feedback_page", feedbackPage{
		page:    page{Title: "Feedback: " + event.Name, Nav: "events", Today: s.clock.Today()},
		Event:   event,
		Params:  params,
		Items:   items,
		Stats:   report.SummarizeFeedback(all),
		Ratings: core.Ratings(),
	})
}

// handleSaveQRStatus stores which statuses the event's QR code exposes
func (s *Server) handleSaveQRStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if errResp := ParseFormOrFail(r); errResp != nil {
		errResp.Write(w)
		return
	}

	id := r.PathValue("id")
	statuses, err := invite.SelectStatuses(r.PostForm["status"])
	if err != nil {
		s.fail(w, r, "save_qr_status", err)
		return
	}
	if err := s.backend.SetQRStatuses(ctx, id, statuses); err != nil {
		s.fail(w, r, "save_qr_status", err)
		return
	}

	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	log.FromContext(ctx).WithComponent(log.ComponentEvents).InfoContext(ctx, "QR statuses saved",
		log.FieldEventID, id,
		"statuses", names)

	resp := NewHTMXResponse().
		TriggerQRStatusSaved(id, names).
		TriggerSuccessNotification("QR code settings saved")
	s.render(w, r, resp, "qr_status_form", newQRStatusForm(id, statuses))
}

// handleCalendarExport serves every event as an iCalendar feed
func (s *Server) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	events, err := s.events(ctx)
	if err != nil {
		s.fail(w, r, "export_ics", err)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", "text/calendar; charset=utf-8").
		Header("Content-Disposition", `attachment; filename="events.ics"`).
		BodyString(calendar.ExportICS(events, s.clock())).
		Write(w)
}

func (s *Server) eventsTable(ctx context.Context, query url.Values) (eventsTable, error) {
	params, err := ParseEventListParams(query)
	if err != nil {
		return eventsTable{}, err
	}

	events, err := s.events(ctx)
	if err != nil {
		return eventsTable{}, err
	}

	subset := events
	if params.Status != statusAll {
		subset = listing.Where(events, func(e core.Event) bool { return string(e.Status) == params.Status })
	}
	filtered := listing.Filter(subset, params.Search, params.Category)

	params.Page = listing.ClampPage(params.Page, listing.TotalPages(len(filtered), s.pageSize))
	pg, err := listing.Paginate(filtered, params.Page, s.pageSize)
	if err != nil {
		return eventsTable{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentEvents).DebugContext(ctx, "Events listed",
		log.NewFields().WithListing(params.Search, params.Category, params.Page, pg.Total).ToSlice()...)

	return eventsTable{
		Params:     params,
		Page:       pg,
		Categories: categoriesOf(events),
		Tabs:       statusTabs(events, params.Status),
	}, nil
}

func (s *Server) participantsTable(ctx context.Context, eventID string, query url.Values) (participantsTable, error) {
	participants, err := s.backend.ListParticipants(ctx, eventID)
	if err != nil {
		return participantsTable{}, err
	}

	params := ParseListParams(query)
	filtered := listing.Filter(participants, params.Search, params.Category)

	totalPages := listing.TotalPages(len(filtered), s.pageSize)
	params.Page = listing.ClampPage(params.Page, totalPages)
	pg, err := listing.Paginate(filtered, params.Page, s.pageSize)
	if err != nil {
		return participantsTable{}, err
	}

	checkedIn := 0
	for _, p := range participants {
		if p.CheckedIn {
			checkedIn++
		}
	}

	return participantsTable{
		EventID:   eventID,
		Params:    params,
		Page:      pg,
		Window:    listing.PageWindow(params.Page, totalPages, pagerWidth),
		CheckedIn: checkedIn,
	}, nil
}

func statusTabs(events []core.Event, active string) []statusTab {
	counts := countByStatus(events)
	tabs := make([]statusTab, 0, 4)
	for _, st := range []core.EventStatus{core.StatusUpcoming, core.StatusOngoing, core.StatusPast} {
		tabs = append(tabs, statusTab{
			Key:    string(st),
			Label:  report.Label(string(st)),
			Count:  counts[st],
			Active: active == string(st),
		})
	}
	return append(tabs, statusTab{Key: statusAll, Label: "All", Count: len(events), Active: active == statusAll})
}

func newQRStatusForm(eventID string, enabled []core.QRStatus) qrStatusForm {
	return qrStatusForm{
		EventID: eventID,
		Enabled: enabled,
		All:     core.QRStatuses(),
		Max:     invite.MaxStatuses,
	}
}
