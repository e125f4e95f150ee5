package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateAndKey(t *testing.T) {
	d, err := ParseDate("2025-10-22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != 10 || d.Day() != 22 {
		t.Fatalf("unexpected parts: %d-%d-%d", d.Year(), d.Month(), d.Day())
	}
	if got := NewDate(2025, 3, 7).Key(); got != "2025-03-07" {
		t.Fatalf("Key() = %q, want zero padded", got)
	}
	if (Date{}).Key() != "" {
		t.Fatalf("zero date should have empty key")
	}

	for _, bad := range []string{"", "2025-13-01", "22/10/2025", "2025-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) err = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateOfTruncatesTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := DateOf(time.Date(2025, 10, 22, 23, 30, 0, 0, loc))
	if got.Key() != "2025-10-22" {
		t.Fatalf("DateOf = %s", got)
	}
}

func TestDeriveStatus(t *testing.T) {
	today := NewDate(2025, 10, 22)
	cases := []struct {
		d    Date
		want EventStatus
	}{
		{NewDate(2025, 10, 21), StatusPast},
		{NewDate(2025, 10, 22), StatusOngoing},
		{NewDate(2025, 10, 23), StatusUpcoming},
		{NewDate(2024, 12, 31), StatusPast},
	}
	for _, tc := range cases {
		if got := DeriveStatus(tc.d, today); got != tc.want {
			t.Fatalf("DeriveStatus(%s) = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestEventValidate(t *testing.T) {
	good := Event{ID: "1", Name: "Saga 2025", Category: "major-event", Date: NewDate(2025, 10, 22), Participants: 500}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		name string
		e    Event
		want error
	}{
		{"empty name", Event{Name: " ", Category: "music", Date: NewDate(2025, 1, 1)}, ErrEmptyName},
		{"zero date", Event{Name: "a", Category: "music"}, ErrInvalidDate},
		{"no category", Event{Name: "a", Date: NewDate(2025, 1, 1)}, ErrEmptyCategory},
		{"bad status", Event{Name: "a", Category: "music", Date: NewDate(2025, 1, 1), Status: "soon"}, ErrInvalidStatus},
		{"negative count", Event{Name: "a", Category: "music", Date: NewDate(2025, 1, 1), Participants: -1}, ErrNegativeCount},
	}
	for _, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestSearchFieldsPerKind(t *testing.T) {
	e := Event{Name: "Saga", Company: "Tech Corp", Place: "Convention Center", Category: "major-event"}
	if got := e.SearchFields(); len(got) != 3 || got[0] != "Saga" || got[2] != "Convention Center" {
		t.Fatalf("event fields = %v", got)
	}
	p := Participant{Name: "Jane", Email: "jane@example.com", Role: "Speaker", CheckedIn: true}
	if p.CategoryValue() != CheckedIn {
		t.Fatalf("checked-in participant category = %q", p.CategoryValue())
	}
	p.CheckedIn = false
	if p.CategoryValue() != NotCheckedIn {
		t.Fatalf("participant category = %q", p.CategoryValue())
	}
	f := Feedback{ParticipantName: "Ann", Comments: "great", Recommendation: RecommendYes}
	if f.CategoryValue() != RecommendYes || len(f.SearchFields()) != 2 {
		t.Fatalf("feedback accessors wrong")
	}
}
