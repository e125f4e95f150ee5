package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventdash/internal/core"
)

var today = core.NewDate(2025, 10, 22)

func newSeeded(t *testing.T) *Store {
	t.Helper()
	data, err := DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed() error = %v", err)
	}
	return New(data, today)
}

func TestDefaultSeed(t *testing.T) {
	data, err := DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed() error = %v", err)
	}
	if len(data.Events) != 28 {
		t.Errorf("events = %d, want 28", len(data.Events))
	}
	if len(data.Feedback) != 5 {
		t.Errorf("feedback = %d, want 5", len(data.Feedback))
	}
	for _, e := range data.Events {
		if e.Status != "" {
			t.Errorf("seed must not carry statuses, %s has %q", e.ID, e.Status)
		}
	}
}

func TestNew_DerivesStatuses(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	tests := map[string]core.EventStatus{
		"1":   core.StatusPast,
		"c11": core.StatusPast,
		"c12": core.StatusOngoing,
		"c13": core.StatusUpcoming,
	}
	for id, want := range tests {
		e, err := s.GetEvent(ctx, id)
		if err != nil {
			t.Fatalf("GetEvent(%s) error = %v", id, err)
		}
		if e.Status != want {
			t.Errorf("event %s status = %s, want %s", id, e.Status, want)
		}
	}
}

func TestStore_ParticipantsGenerated(t *testing.T) {
	s := newSeeded(t)
	ps, err := s.ListParticipants(context.Background(), "c12")
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 23 {
		t.Fatalf("participants = %d, want 23", len(ps))
	}
	if ps[0].Name != "Participant 1" || ps[0].Department != "HR" || ps[0].RSVP != core.RSVPConfirmed {
		t.Errorf("unexpected first participant %+v", ps[0])
	}
	if !ps[2].CheckedIn || ps[1].CheckedIn {
		t.Errorf("every third participant is checked in")
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	events, _ := s.ListEvents(ctx)
	events[0].Name = "mutated"
	again, _ := s.ListEvents(ctx)
	if again[0].Name == "mutated" {
		t.Fatal("ListEvents leaked internal slice")
	}
}

func TestStore_DeleteEvent(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	if err := s.DeleteEvent(ctx, "1"); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if _, err := s.GetEvent(ctx, "1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetEvent after delete error = %v, want ErrNotFound", err)
	}
	fb, _ := s.ListFeedback(ctx, "")
	for _, f := range fb {
		if f.EventID == "1" {
			t.Errorf("feedback for deleted event still listed")
		}
	}
	if err := s.DeleteEvent(ctx, "1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_Registrations(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	reg := core.Registration{ID: "r-1", EventID: "c12", Name: "Ada", Email: "ada@example.com", Company: "ACME", Position: "CTO", CreatedAt: time.Now()}
	if err := s.AppendRegistration(ctx, reg); err != nil {
		t.Fatalf("AppendRegistration() error = %v", err)
	}
	bad := reg
	bad.Email = "nope"
	if err := s.AppendRegistration(ctx, bad); !errors.Is(err, core.ErrValidation) {
		t.Errorf("invalid registration error = %v", err)
	}
	missing := reg
	missing.EventID = "zzz"
	if err := s.AppendRegistration(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown event error = %v", err)
	}

	regs, _ := s.ListRegistrations(ctx, "c12")
	if len(regs) != 1 || regs[0].ID != "r-1" {
		t.Errorf("ListRegistrations = %+v", regs)
	}
}

func TestStore_QRStatuses(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	got, err := s.QRStatuses(ctx, "c12")
	if err != nil || len(got) != 0 {
		t.Fatalf("initial statuses = %v, %v", got, err)
	}
	want := []core.QRStatus{core.QRInvitation, core.QRWelcome}
	if err := s.SetQRStatuses(ctx, "c12", want); err != nil {
		t.Fatal(err)
	}
	got, _ = s.QRStatuses(ctx, "c12")
	if len(got) != 2 || got[0] != core.QRInvitation || got[1] != core.QRWelcome {
		t.Errorf("statuses = %v", got)
	}
	if err := s.SetQRStatuses(ctx, "c12", []core.QRStatus{"bogus"}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("bogus status error = %v", err)
	}
}

func TestStore_RefreshStatuses(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	changed, err := s.RefreshStatuses(ctx, core.NewDate(2025, 10, 25))
	if err != nil {
		t.Fatal(err)
	}
	// c12 ongoing -> past, c13 upcoming -> ongoing.
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	e, _ := s.GetEvent(ctx, "c12")
	if e.Status != core.StatusPast {
		t.Errorf("c12 status = %s", e.Status)
	}
	if n, _ := s.RefreshStatuses(ctx, core.NewDate(2025, 10, 25)); n != 0 {
		t.Errorf("second refresh changed %d", n)
	}
}

func TestLoadSeedDir(t *testing.T) {
	dir := t.TempDir()

	data, err := LoadSeedDir(dir)
	if err != nil || len(data.Events) == 0 {
		t.Fatalf("missing file should fall back to embedded seed: %v", err)
	}

	custom := `
events:
  - id: x1
    name: Custom
    category: music
    date: "2026-01-02"
    generate_participants: 2
`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err = LoadSeedDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Events) != 1 || data.Events[0].ID != "x1" || len(data.Participants) != 2 {
		t.Errorf("unexpected custom seed %+v", data)
	}
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"bad date", "events:\n  - {id: a, name: A, category: music, date: \"10/22/2025\"}\n", core.ErrInvalidDate},
		{"duplicate id", "events:\n  - {id: a, name: A, category: music, date: \"2025-10-22\"}\n  - {id: a, name: B, category: music, date: \"2025-10-23\"}\n", core.ErrInvalidArgument},
		{"missing name", "events:\n  - {id: a, category: music, date: \"2025-10-22\"}\n", core.ErrEmptyName},
		{"orphan feedback", "feedback:\n  - {id: f, event_id: nope, participant_name: X, rating: 3, recommendation: \"no\"}\n", core.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseSeed() error = %v, want %v", err, tt.want)
			}
		})
	}
}
