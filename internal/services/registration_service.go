package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventdash/internal/core"
	"eventdash/internal/metrics"
	"eventdash/internal/store"
)

// Publisher announces saved registrations to downstream consumers.
type Publisher interface {
	PublishRegistration(ctx context.Context, reg core.Registration) error
}

// RegistrationService saves invitation sign-ups and announces them.
type RegistrationService struct {
	writer    store.RegistrationWriter
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewRegistrationService wires a writer and an optional publisher (nil
// disables announcements).
func NewRegistrationService(writer store.RegistrationWriter, publisher Publisher, logger *slog.Logger) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		writer:    writer,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Register trims and validates the form, assigns an ID and timestamp, and
// saves it. Validation failures come back as core.FieldErrors. A failed
// publish is logged and does not fail the registration.
func (s *RegistrationService) Register(ctx context.Context, form core.Registration) (core.Registration, error) {
	reg := core.Registration{
		EventID:  strings.TrimSpace(form.EventID),
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Company:  strings.TrimSpace(form.Company),
		Position: strings.TrimSpace(form.Position),
		Phone:    strings.TrimSpace(form.Phone),
	}
	if err := reg.Validate(); err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return core.Registration{}, err
	}

	reg.ID = s.newID()
	reg.CreatedAt = s.now().UTC()

	if err := s.writer.AppendRegistration(ctx, reg); err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return core.Registration{}, fmt.Errorf("save registration: %w", err)
	}
	metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess).Inc()

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping registration message", "registration_id", reg.ID)
		return reg, nil
	}
	if err := s.publisher.PublishRegistration(ctx, reg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish registration message",
			"registration_id", reg.ID,
			"event_id", reg.EventID,
			"error", err)
	}
	return reg, nil
}
