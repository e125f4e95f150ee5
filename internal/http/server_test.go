package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"eventdash/internal/calendar"
	"eventdash/internal/core"
	"eventdash/internal/log"
	"eventdash/internal/services"
	"eventdash/internal/store/memory"
)

var testToday = core.NewDate(2025, 10, 22)

func newTestServer(t *testing.T, ratePerMinute int) (*Server, *memory.Store) {
	t.Helper()

	data, err := memory.DefaultSeed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	st := memory.New(data, testToday)

	logger := log.New(log.Config{Level: slog.LevelError, Format: log.FormatText, Output: io.Discard})
	regs := services.NewRegistrationService(st, nil, logger.Slog())

	srv, err := NewServer(Config{
		Addr:               ":0",
		PublicBaseURL:      "http://events.test",
		PageSize:           10,
		CacheTTL:           time.Minute,
		RateLimitPerMinute: ratePerMinute,
		Clock:              calendar.FixedClock(testToday),
	}, st, regs, logger)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(srv *Server, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	return do(srv, http.MethodGet, target, nil, "")
}

func postForm(srv *Server, target string, form url.Values) *httptest.ResponseRecorder {
	return do(srv, http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func mustContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Errorf("body missing %q", p)
		}
	}
}

func mustNotContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if strings.Contains(body, p) {
			t.Errorf("body unexpectedly contains %q", p)
		}
	}
}

func TestTemplatesDefined(t *testing.T) {
	srv, _ := newTestServer(t, 100)
	for _, name := range []string{
		"head", "foot", "status_badge",
		"dashboard_page", "calendar", "calendar_day",
		"events_page", "events_table",
		"event_page", "participants_table", "qr_status_form",
		"feedback_page", "report_page",
		"invite_page", "registration_form", "registration_success",
	} {
		if srv.templates.Lookup(name) == nil {
			t.Errorf("template %q not defined", name)
		}
	}
}

func TestDashboardAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d body=%s", rr.Code, rr.Body.String())
	}
	mustContain(t, rr.Body.String(), "<h1>Dashboard</h1>", "October 2025", "calendar__cell--today", "Product Launch")

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := get(srv, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s content type = %q", path, ct)
		}
	}

	var ready struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(get(srv, "/readyz").Body.Bytes(), &ready); err != nil {
		t.Fatalf("decode readyz: %v", err)
	}
	if ready.Status != "ready" || ready.Checks["backend"] != "ok" {
		t.Errorf("readyz = %+v", ready)
	}

	if rr := get(srv, "/no-such-page"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d, want 404", rr.Code)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/healthz")
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers not applied")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request ID not set")
	}

	rr = get(srv, "/static/app.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("static status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=3600") {
		t.Errorf("static Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}

	rr = get(srv, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	mustContain(t, rr.Body.String(), "eventdash_http_requests_total")
}

func TestEventsTabsAndFilters(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/events")
	if rr.Code != http.StatusOK {
		t.Fatalf("events status=%d", rr.Code)
	}
	body := rr.Body.String()
	mustContain(t, body, "<h1>Events</h1>", "Product Launch", "Showing 1-10 of 11")
	mustNotContain(t, body, "Saga 2025")

	rr = get(srv, "/ui/events?status=ongoing")
	mustContain(t, rr.Body.String(), "Saga 2025", "Showing 1-1 of 1")
	mustNotContain(t, rr.Body.String(), "<h1>Events</h1>")

	rr = get(srv, "/ui/events?status=upcoming&category=music")
	mustContain(t, rr.Body.String(), "Halloween Bash", "Design Awards", "Winter Fest")
	mustNotContain(t, rr.Body.String(), "Product Launch")

	rr = get(srv, "/ui/events?status=past&q=tech")
	mustContain(t, rr.Body.String(), "Tech Innovation Showcase")
	mustNotContain(t, rr.Body.String(), "Annual Gala Dinner")

	if rr := get(srv, "/ui/events?status=archived"); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown status code=%d, want 400", rr.Code)
	}
}

func TestEventsPaginationClamps(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/ui/events?status=past&page=2")
	mustContain(t, rr.Body.String(), "Showing 11-16 of 16", "Page 2 of 2")

	// Out-of-range pages show the nearest valid page.
	rr = get(srv, "/ui/events?status=past&page=99")
	mustContain(t, rr.Body.String(), "Showing 11-16 of 16", "Page 2 of 2")

	rr = get(srv, "/ui/events?status=past&page=-3")
	mustContain(t, rr.Body.String(), "Showing 1-10 of 16", "Page 1 of 2")
}

func TestEventDetailAndParticipants(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/events/c12")
	if rr.Code != http.StatusOK {
		t.Fatalf("detail status=%d", rr.Code)
	}
	mustContain(t, rr.Body.String(), "Saga 2025", "Showing 1-10 of 23", "Participant 1", "7 checked in", "http://events.test/invite/c12")

	rr = get(srv, "/ui/events/c12/participants?page=3")
	mustContain(t, rr.Body.String(), "Showing 21-23 of 23", "Participant 23")

	rr = get(srv, "/ui/events/c12/participants?category=checked-in")
	mustContain(t, rr.Body.String(), "Showing 1-7 of 7")

	rr = get(srv, "/ui/events/c12/participants?q=participant2")
	mustContain(t, rr.Body.String(), "participant2@example.com", "participant23@example.com")
	mustNotContain(t, rr.Body.String(), "participant3@example.com")

	for _, path := range []string{"/events/missing", "/ui/events/missing/participants", "/events/missing/feedback"} {
		if rr := get(srv, path); rr.Code != http.StatusNotFound {
			t.Errorf("%s code=%d, want 404", path, rr.Code)
		}
	}
}

func TestDeleteEvent(t *testing.T) {
	srv, st := newTestServer(t, 100)

	// Warm the cache so the delete has to invalidate it.
	mustContain(t, get(srv, "/ui/events").Body.String(), "Product Launch")

	rr := do(srv, http.MethodDelete, "/events/c13?status=upcoming", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	mustContain(t, rr.Header().Get("HX-Trigger"), `"event:deleted"`, `"id":"c13"`, `"calendar:refresh"`)
	mustNotContain(t, rr.Body.String(), "Product Launch")
	mustContain(t, rr.Body.String(), "Showing 1-10 of 10")

	if _, err := st.GetEvent(context.Background(), "c13"); err == nil {
		t.Error("event still in store")
	}
	if rr := get(srv, "/events/c13"); rr.Code != http.StatusNotFound {
		t.Errorf("deleted event code=%d, want 404", rr.Code)
	}
	if rr := do(srv, http.MethodDelete, "/events/c13", nil, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete code=%d, want 404", rr.Code)
	}
}

func TestCalendarPartials(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/ui/calendar?year=2025&month=9")
	if rr.Code != http.StatusOK {
		t.Fatalf("calendar status=%d", rr.Code)
	}
	body := rr.Body.String()
	mustContain(t, body, "October 2025", `data-date="2025-10-22"`, "calendar__cell--today", "Saga 2025")
	// Previous and next month links roll over the month index only.
	mustContain(t, body, "year=2025&month=8", "year=2025&month=10")

	rr = get(srv, "/ui/calendar?year=2025&month=0")
	mustContain(t, rr.Body.String(), "January 2025", "year=2024&month=11")
	mustNotContain(t, rr.Body.String(), "calendar__cell--today")

	// An invalid month falls back to the current one.
	rr = get(srv, "/ui/calendar?month=12")
	mustContain(t, rr.Body.String(), "October 2025")

	rr = get(srv, "/ui/calendar/day?date=2025-10-14")
	if rr.Code != http.StatusOK {
		t.Fatalf("day status=%d", rr.Code)
	}
	mustContain(t, rr.Body.String(), "Rigging Safety Check")

	rr = get(srv, "/ui/calendar/day?date=2025-10-23")
	mustContain(t, rr.Body.String(), "No events on this day.")

	if rr := get(srv, "/ui/calendar/day?date=23-10-2025"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad date code=%d, want 400", rr.Code)
	}
}

func TestFeedbackPage(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/events/1/feedback")
	if rr.Code != http.StatusOK {
		t.Fatalf("feedback status=%d", rr.Code)
	}
	body := rr.Body.String()
	jane, alice, john := strings.Index(body, "Jane Smith"), strings.Index(body, "Alice Brown"), strings.Index(body, "John Doe")
	if jane < 0 || alice < 0 || john < 0 {
		t.Fatalf("feedback entries missing: %s", body)
	}
	if !(jane < alice && alice < john) {
		t.Error("feedback not ordered newest first")
	}
	mustContain(t, body, "67%")

	rr = get(srv, "/events/1/feedback?category=maybe")
	mustContain(t, rr.Body.String(), "Alice Brown")
	mustNotContain(t, rr.Body.String(), "Jane Smith", "John Doe")
}

func TestReportPage(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/report")
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	mustContain(t, rr.Body.String(), "<h1>Report</h1>", "Major Event", "Rigging Service")

	// Second hit is served from cache and must render the same.
	if again := get(srv, "/report"); again.Body.String() != rr.Body.String() {
		t.Error("cached report differs")
	}
}

func TestRegistration(t *testing.T) {
	srv, st := newTestServer(t, 100)
	ctx := context.Background()

	rr := get(srv, "/invite/c12")
	if rr.Code != http.StatusOK {
		t.Fatalf("invite status=%d", rr.Code)
	}
	mustContain(t, rr.Body.String(), "Saga 2025", `hx-post="/invite/c12/register"`)

	rr = postForm(srv, "/invite/c12/register", url.Values{"name": {""}, "email": {"nope"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid registration code=%d, want 422", rr.Code)
	}
	mustContain(t, rr.Body.String(), "Name is required", "Please enter a valid email address", "Company is required", "Position is required")
	mustContain(t, rr.Header().Get("HX-Trigger"), `"type":"error"`)

	rr = postForm(srv, "/invite/c12/register", url.Values{
		"name":     {"Ada Lovelace"},
		"email":    {"ada@example.com"},
		"company":  {"Analytical Engines"},
		"position": {"Engineer"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("registration code=%d body=%s", rr.Code, rr.Body.String())
	}
	mustContain(t, rr.Body.String(), "Registration successful", "Ada Lovelace")
	mustContain(t, rr.Header().Get("HX-Trigger"), `"registration:created"`, `"form:reset"`)

	rr = do(srv, http.MethodPost, "/invite/c12/register",
		strings.NewReader(`{"name":"Grace","email":"grace@example.com","company":"Navy","position":"Admiral"}`),
		"application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("json registration code=%d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID      string `json:"id"`
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.EventID != "c12" {
		t.Errorf("created = %+v", created)
	}

	regs, err := st.ListRegistrations(ctx, "c12")
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 2 {
		t.Fatalf("registrations = %d, want 2", len(regs))
	}

	rr = postForm(srv, "/invite/missing/register", url.Values{"name": {"x"}})
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown event code=%d, want 404", rr.Code)
	}
}

func TestQRStatusAndImage(t *testing.T) {
	srv, st := newTestServer(t, 100)

	rr := postForm(srv, "/events/c12/qr-status", url.Values{"status": {"invitation", "welcome"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("qr-status code=%d body=%s", rr.Code, rr.Body.String())
	}
	mustContain(t, rr.Header().Get("HX-Trigger"), `"qr-status:saved"`, `"statuses":["invitation","welcome"]`)

	got, err := st.QRStatuses(context.Background(), "c12")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != core.QRInvitation || got[1] != core.QRWelcome {
		t.Errorf("stored statuses = %v", got)
	}

	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"too many", url.Values{"status": {"invitation", "welcome", "feedback"}}, http.StatusBadRequest},
		{"unknown", url.Values{"status": {"party"}}, http.StatusBadRequest},
		{"unknown event", url.Values{"status": {"images"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/events/c12/qr-status"
			if tt.name == "unknown event" {
				target = "/events/missing/qr-status"
			}
			if rr := postForm(srv, target, tt.form); rr.Code != tt.want {
				t.Errorf("code=%d, want %d", rr.Code, tt.want)
			}
		})
	}

	rr = get(srv, "/invite/c12/qr.png?size=200")
	if rr.Code != http.StatusOK {
		t.Fatalf("qr.png code=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG")
	}
	if corp := rr.Header().Get("Cross-Origin-Resource-Policy"); corp != "cross-origin" {
		t.Errorf("Cross-Origin-Resource-Policy = %q, want cross-origin", corp)
	}

	if rr := get(srv, "/invite/missing/qr.png"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown event qr code=%d, want 404", rr.Code)
	}
}

func TestCalendarExport(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	rr := get(srv, "/events.ics")
	if rr.Code != http.StatusOK {
		t.Fatalf("ics code=%d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("content type = %q", rr.Header().Get("Content-Type"))
	}
	mustContain(t, rr.Body.String(), "BEGIN:VCALENDAR", "SUMMARY:Saga 2025", "RRULE:FREQ=WEEKLY;COUNT=8")
	// Stamps follow the server clock, so a pinned TODAY gives a reproducible feed.
	mustContain(t, rr.Body.String(), "DTSTAMP:20251022T120000Z")
}

func TestRateLimitOnMutations(t *testing.T) {
	srv, _ := newTestServer(t, 1)

	form := url.Values{"status": {"invitation"}}
	if rr := postForm(srv, "/events/c12/qr-status", form); rr.Code != http.StatusOK {
		t.Fatalf("first post code=%d", rr.Code)
	}
	rr := postForm(srv, "/events/c12/qr-status", form)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second post code=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}

	// Reads are never limited.
	for i := 0; i < 5; i++ {
		if rr := get(srv, "/healthz"); rr.Code != http.StatusOK {
			t.Fatalf("get %d code=%d", i, rr.Code)
		}
	}
}
