package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRegistrationValidate(t *testing.T) {
	good := Registration{EventID: "1", Name: "Jane", Email: "jane@example.com", Company: "Acme", Position: "CTO"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		reg    Registration
		fields []string
	}{
		{"all empty", Registration{EventID: "1"}, []string{"name", "email", "company", "position"}},
		{"bad email", Registration{EventID: "1", Name: "a", Email: "not-an-email", Company: "c", Position: "p"}, []string{"email"}},
		{"email with space", Registration{EventID: "1", Name: "a", Email: "a b@c.io", Company: "c", Position: "p"}, []string{"email"}},
		{"blank name", Registration{EventID: "1", Name: "  ", Email: "a@b.io", Company: "c", Position: "p"}, []string{"name"}},
		{"missing event", Registration{Name: "a", Email: "a@b.io", Company: "c", Position: "p"}, []string{"event"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %T", err)
			}
			if len(fe) != len(tt.fields) {
				t.Fatalf("got %d field errors %v, want %v", len(fe), fe, tt.fields)
			}
			for _, f := range tt.fields {
				if fe[f] == "" {
					t.Fatalf("missing error for %q in %v", f, fe)
				}
			}
		})
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	err := FieldErrors{"position": "Position is required", "email": "Email is required"}
	msg := err.Error()
	if strings.Index(msg, "email") > strings.Index(msg, "position") {
		t.Fatalf("fields not sorted: %s", msg)
	}
}

func TestFeedbackValidate(t *testing.T) {
	good := Feedback{
		EventID:         "1",
		ParticipantName: "Ann",
		Rating:          5,
		Recommendation:  RecommendYes,
		Categories:      map[string]Rating{"venue": RatingExcellent},
		SubmittedAt:     time.Now(),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Rating = 6
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating 6: %v", err)
	}
	bad = good
	bad.Recommendation = "perhaps"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRecommendation) {
		t.Fatalf("recommendation: %v", err)
	}
	bad = good
	bad.Categories = map[string]Rating{"venue": "meh"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("category rating: %v", err)
	}
}

func TestQRStatusIsValid(t *testing.T) {
	for _, s := range QRStatuses() {
		if !s.IsValid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if QRStatus("banner").IsValid() {
		t.Fatalf("unknown status accepted")
	}
}
