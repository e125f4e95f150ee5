package worker

import (
	"context"
	"fmt"
	"time"

	"eventdash/internal/amqp"
	"eventdash/internal/log"
)

// NotificationStore records that a registration's notification went out.
type NotificationStore interface {
	MarkRegistrationNotified(ctx context.Context, id string, at time.Time) error
}

// MessageSource delivers registration messages until ctx is done.
type MessageSource interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// NotificationWorker consumes registration.created messages and marks each
// registration notified.
type NotificationWorker struct {
	store  NotificationStore
	source MessageSource
	logger *log.Logger
	now    func() time.Time
}

func NewNotificationWorker(store NotificationStore, source MessageSource, logger *log.Logger) *NotificationWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &NotificationWorker{
		store:  store,
		source: source,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// Run blocks consuming messages until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Notification worker started")
	err := w.source.Consume(ctx, w.HandleMessage)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Notification worker stopped")
		return nil
	}
	return err
}

// HandleMessage processes a single registration message.
func (w *NotificationWorker) HandleMessage(ctx context.Context, msg *amqp.RegistrationMessage) error {
	if msg.Type != "" && msg.Type != amqp.TypeRegistrationCreated {
		w.logger.WarnContext(ctx, "Ignoring unexpected message type",
			log.FieldMessageID, msg.RegistrationID,
			"type", msg.Type)
		return nil
	}

	if err := w.store.MarkRegistrationNotified(ctx, msg.RegistrationID, w.now()); err != nil {
		return fmt.Errorf("mark registration %s notified: %w", msg.RegistrationID, err)
	}

	w.logger.InfoContext(ctx, "Registration notification delivered",
		log.FieldRegistration, msg.RegistrationID,
		log.FieldEventID, msg.EventID,
		"latency_ms", w.now().Sub(msg.Timestamp).Milliseconds())
	return nil
}
