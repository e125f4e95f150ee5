package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"eventdash/internal/core"
)

type fakeWriter struct {
	saved []core.Registration
	err   error
}

func (f *fakeWriter) AppendRegistration(_ context.Context, reg core.Registration) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, reg)
	return nil
}

type fakePublisher struct {
	published []core.Registration
	err       error
}

func (f *fakePublisher) PublishRegistration(_ context.Context, reg core.Registration) error {
	f.published = append(f.published, reg)
	return f.err
}

func newTestService(w *fakeWriter, p Publisher) *RegistrationService {
	s := NewRegistrationService(w, p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "reg-fixed" }
	return s
}

func validForm() core.Registration {
	return core.Registration{
		EventID:  "c12",
		Name:     "  Ada Lovelace ",
		Email:    "ada@example.com",
		Company:  "Analytical Engines",
		Position: "Engineer",
	}
}

func TestRegistrationService_Register(t *testing.T) {
	w := &fakeWriter{}
	p := &fakePublisher{}
	s := newTestService(w, p)

	reg, err := s.Register(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.ID != "reg-fixed" {
		t.Errorf("ID = %q", reg.ID)
	}
	if reg.Name != "Ada Lovelace" {
		t.Errorf("Name should be trimmed, got %q", reg.Name)
	}
	if !reg.CreatedAt.Equal(time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", reg.CreatedAt)
	}
	if len(w.saved) != 1 || len(p.published) != 1 {
		t.Fatalf("saved=%d published=%d, want 1/1", len(w.saved), len(p.published))
	}
	if p.published[0].ID != reg.ID {
		t.Errorf("published %q, want %q", p.published[0].ID, reg.ID)
	}
}

func TestRegistrationService_ValidationErrors(t *testing.T) {
	w := &fakeWriter{}
	p := &fakePublisher{}
	s := newTestService(w, p)

	form := validForm()
	form.Email = "not-an-email"
	form.Company = "   "

	_, err := s.Register(context.Background(), form)
	var fe core.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FieldErrors", err)
	}
	if _, ok := fe["email"]; !ok {
		t.Error("expected email error")
	}
	if _, ok := fe["company"]; !ok {
		t.Error("expected company error for whitespace-only input")
	}
	if !errors.Is(err, core.ErrValidation) {
		t.Error("FieldErrors should unwrap to ErrValidation")
	}
	if len(w.saved) != 0 || len(p.published) != 0 {
		t.Error("invalid form must not be saved or published")
	}
}

func TestRegistrationService_WriterError(t *testing.T) {
	w := &fakeWriter{err: core.ErrNotFound}
	p := &fakePublisher{}
	s := newTestService(w, p)

	_, err := s.Register(context.Background(), validForm())
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if len(p.published) != 0 {
		t.Error("failed save must not be published")
	}
}

func TestRegistrationService_PublishFailureIsNotFatal(t *testing.T) {
	w := &fakeWriter{}
	p := &fakePublisher{err: errors.New("circuit breaker is open")}
	s := newTestService(w, p)

	if _, err := s.Register(context.Background(), validForm()); err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}
	if len(w.saved) != 1 {
		t.Error("registration should still be saved")
	}
}

func TestRegistrationService_NoPublisher(t *testing.T) {
	w := &fakeWriter{}
	s := newTestService(w, nil)

	if _, err := s.Register(context.Background(), validForm()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(w.saved) != 1 {
		t.Error("registration should be saved without a publisher")
	}
}
