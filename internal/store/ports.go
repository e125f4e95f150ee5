// Package store declares the persistence ports the HTTP layer and the
// services depend on. Backends live in store/memory, storage (SQLite) and
// sheets.
package store

import (
	"context"

	"eventdash/internal/core"
)

// EventReader lists and fetches events. GetEvent wraps core.ErrNotFound
// for unknown IDs.
type EventReader interface {
	ListEvents(ctx context.Context) ([]core.Event, error)
	GetEvent(ctx context.Context, id string) (core.Event, error)
}

// EventDeleter removes an event and everything hanging off it.
type EventDeleter interface {
	DeleteEvent(ctx context.Context, id string) error
}

// ParticipantLister lists an event's participants in seed order.
type ParticipantLister interface {
	ListParticipants(ctx context.Context, eventID string) ([]core.Participant, error)
}

// FeedbackReader lists feedback; an empty eventID means every event.
type FeedbackReader interface {
	ListFeedback(ctx context.Context, eventID string) ([]core.Feedback, error)
}

// RegistrationWriter persists invitation sign-ups.
type RegistrationWriter interface {
	AppendRegistration(ctx context.Context, reg core.Registration) error
}

// RegistrationLister lists sign-ups for an event, oldest first.
type RegistrationLister interface {
	ListRegistrations(ctx context.Context, eventID string) ([]core.Registration, error)
}

// QRStatusStore keeps the QR statuses enabled per event.
type QRStatusStore interface {
	QRStatuses(ctx context.Context, eventID string) ([]core.QRStatus, error)
	SetQRStatuses(ctx context.Context, eventID string, statuses []core.QRStatus) error
}

// StatusRefresher recomputes derived event statuses against today and
// reports how many changed.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context, today core.Date) (int, error)
}

// Backend is everything the dashboard needs from a data source.
type Backend interface {
	EventReader
	EventDeleter
	ParticipantLister
	FeedbackReader
	RegistrationWriter
	RegistrationLister
	QRStatusStore
	StatusRefresher
}
