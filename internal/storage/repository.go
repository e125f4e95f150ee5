package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"eventdash/internal/core"
	"eventdash/internal/store/memory"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *slog.Logger
}

// NewSQLiteRepository opens the database, creating its directory, and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SeedIfEmpty loads data when the events table is empty and reports whether
// it did.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, data memory.Data, today core.Date) (bool, error) {
	n, err := r.queries.CountEvents(ctx)
	if err != nil {
		return false, fmt.Errorf("count events: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	err = r.inTx(ctx, func(q *Queries) error {
		for _, e := range data.Events {
			e.Status = core.DeriveStatus(e.Date, today)
			if err := q.CreateEvent(ctx, toEventRow(e)); err != nil {
				return fmt.Errorf("insert event %s: %w", e.ID, err)
			}
		}
		for _, p := range data.Participants {
			if err := q.CreateParticipant(ctx, toParticipantRow(p)); err != nil {
				return fmt.Errorf("insert participant %s: %w", p.ID, err)
			}
		}
		for _, f := range data.Feedback {
			row, err := toFeedbackRow(f)
			if err != nil {
				return err
			}
			if err := q.CreateFeedback(ctx, row); err != nil {
				return fmt.Errorf("insert feedback %s: %w", f.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed database: %w", err)
	}

	r.logger.InfoContext(ctx, "SQLite database seeded",
		"events", len(data.Events),
		"participants", len(data.Participants),
		"feedback", len(data.Feedback))
	return true, nil
}

func (r *SQLiteRepository) ListEvents(ctx context.Context) ([]core.Event, error) {
	rows, err := r.queries.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]core.Event, 0, len(rows))
	for _, row := range rows {
		e, err := fromEventRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *SQLiteRepository) GetEvent(ctx context.Context, id string) (core.Event, error) {
	row, err := r.queries.GetEvent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Event{}, notFound(id)
	}
	if err != nil {
		return core.Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return fromEventRow(row)
}

// DeleteEvent removes the event and its dependent rows in one transaction.
// Registrations are kept as a record of who signed up.
func (r *SQLiteRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteEventChildren(ctx, id); err != nil {
			return fmt.Errorf("delete event %s children: %w", id, err)
		}
		n, err := q.DeleteEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("delete event %s: %w", id, err)
		}
		if n == 0 {
			return notFound(id)
		}
		return nil
	})
}

func (r *SQLiteRepository) ListParticipants(ctx context.Context, eventID string) ([]core.Participant, error) {
	if err := r.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	out := make([]core.Participant, 0, len(rows))
	for _, p := range rows {
		out = append(out, core.Participant{
			ID:         p.ID,
			EventID:    p.EventID,
			Name:       p.Name,
			Email:      p.Email,
			Role:       p.Role,
			Phone:      p.Phone,
			Department: p.Department,
			RSVP:       core.RSVPStatus(p.RSVP),
			CheckedIn:  p.CheckedIn,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) ListFeedback(ctx context.Context, eventID string) ([]core.Feedback, error) {
	if eventID != "" {
		if err := r.requireEvent(ctx, eventID); err != nil {
			return nil, err
		}
	}
	rows, err := r.queries.ListFeedback(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	out := make([]core.Feedback, 0, len(rows))
	for _, row := range rows {
		f, err := fromFeedbackRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *SQLiteRepository) AppendRegistration(ctx context.Context, reg core.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := r.requireEvent(ctx, reg.EventID); err != nil {
		return err
	}
	err := r.queries.CreateRegistration(ctx, RegistrationRow{
		ID:        reg.ID,
		EventID:   reg.EventID,
		Name:      reg.Name,
		Email:     reg.Email,
		Company:   reg.Company,
		Position:  reg.Position,
		Phone:     reg.Phone,
		CreatedAt: reg.CreatedAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	r.logger.InfoContext(ctx, "Registration saved to SQLite",
		"id", reg.ID,
		"event_id", reg.EventID)
	return nil
}

func (r *SQLiteRepository) ListRegistrations(ctx context.Context, eventID string) ([]core.Registration, error) {
	rows, err := r.queries.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	out := make([]core.Registration, 0, len(rows))
	for _, row := range rows {
		created, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("registration %s created_at: %w", row.ID, err)
		}
		out = append(out, core.Registration{
			ID:        row.ID,
			EventID:   row.EventID,
			Name:      row.Name,
			Email:     row.Email,
			Company:   row.Company,
			Position:  row.Position,
			Phone:     row.Phone,
			CreatedAt: created,
		})
	}
	return out, nil
}

// MarkRegistrationNotified records that the notification for id went out.
// Marking twice is a no-op; unknown IDs wrap core.ErrNotFound.
func (r *SQLiteRepository) MarkRegistrationNotified(ctx context.Context, id string, at time.Time) error {
	n, err := r.queries.MarkRegistrationNotified(ctx, id, at.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("mark registration %s notified: %w", id, err)
	}
	if n > 0 {
		return nil
	}
	exists, err := r.queries.RegistrationExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check registration %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("registration %q: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) QRStatuses(ctx context.Context, eventID string) ([]core.QRStatus, error) {
	if err := r.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListQRStatuses(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list QR statuses: %w", err)
	}
	out := make([]core.QRStatus, 0, len(rows))
	for _, s := range rows {
		out = append(out, core.QRStatus(s))
	}
	return out, nil
}

func (r *SQLiteRepository) SetQRStatuses(ctx context.Context, eventID string, statuses []core.QRStatus) error {
	for _, st := range statuses {
		if !st.IsValid() {
			return fmt.Errorf("%w: QR status %q", core.ErrInvalidArgument, st)
		}
	}
	if err := r.requireEvent(ctx, eventID); err != nil {
		return err
	}
	return r.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteQRStatuses(ctx, eventID); err != nil {
			return fmt.Errorf("clear QR statuses: %w", err)
		}
		for i, st := range statuses {
			if err := q.CreateQRStatus(ctx, eventID, string(st), i); err != nil {
				return fmt.Errorf("insert QR status %s: %w", st, err)
			}
		}
		return nil
	})
}

// RefreshStatuses rewrites statuses that no longer match their date.
func (r *SQLiteRepository) RefreshStatuses(ctx context.Context, today core.Date) (int, error) {
	events, err := r.ListEvents(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	err = r.inTx(ctx, func(q *Queries) error {
		for _, e := range events {
			n, err := q.UpdateEventStatus(ctx, e.ID, string(core.DeriveStatus(e.Date, today)))
			if err != nil {
				return fmt.Errorf("update status of %s: %w", e.ID, err)
			}
			changed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (r *SQLiteRepository) requireEvent(ctx context.Context, id string) error {
	_, err := r.GetEvent(ctx, id)
	return err
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("event %q: %w", id, core.ErrNotFound)
}

func toEventRow(e core.Event) EventRow {
	return EventRow{
		ID:           e.ID,
		Name:         e.Name,
		Company:      e.Company,
		Category:     e.Category,
		Date:         e.Date.Key(),
		Place:        e.Place,
		Description:  e.Description,
		Participants: int64(e.Participants),
		Requirements: e.Requirements,
		Notes:        e.Notes,
		Image:        e.Image,
		Status:       string(e.Status),
		Recurrence:   e.Recurrence,
	}
}

func fromEventRow(row EventRow) (core.Event, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Event{}, fmt.Errorf("event %s: %w", row.ID, err)
	}
	return core.Event{
		ID:           row.ID,
		Name:         row.Name,
		Company:      row.Company,
		Category:     row.Category,
		Date:         date,
		Place:        row.Place,
		Description:  row.Description,
		Participants: int(row.Participants),
		Requirements: row.Requirements,
		Notes:        row.Notes,
		Image:        row.Image,
		Status:       core.EventStatus(row.Status),
		Recurrence:   row.Recurrence,
	}, nil
}

func toParticipantRow(p core.Participant) ParticipantRow {
	return ParticipantRow{
		ID:         p.ID,
		EventID:    p.EventID,
		Name:       p.Name,
		Email:      p.Email,
		Role:       p.Role,
		Phone:      p.Phone,
		Department: p.Department,
		RSVP:       string(p.RSVP),
		CheckedIn:  p.CheckedIn,
	}
}

func toFeedbackRow(f core.Feedback) (FeedbackRow, error) {
	cats, err := json.Marshal(f.Categories)
	if err != nil {
		return FeedbackRow{}, fmt.Errorf("encode feedback %s categories: %w", f.ID, err)
	}
	return FeedbackRow{
		ID:              f.ID,
		EventID:         f.EventID,
		ParticipantName: f.ParticipantName,
		Rating:          int64(f.Rating),
		Comments:        f.Comments,
		Recommendation:  f.Recommendation,
		Categories:      string(cats),
		SubmittedAt:     f.SubmittedAt.UTC().Format(timeLayout),
	}, nil
}

func fromFeedbackRow(row FeedbackRow) (core.Feedback, error) {
	submitted, err := time.Parse(timeLayout, row.SubmittedAt)
	if err != nil {
		return core.Feedback{}, fmt.Errorf("feedback %s submitted_at: %w", row.ID, err)
	}
	cats := map[string]core.Rating{}
	if row.Categories != "" {
		if err := json.Unmarshal([]byte(row.Categories), &cats); err != nil {
			return core.Feedback{}, fmt.Errorf("feedback %s categories: %w", row.ID, err)
		}
	}
	return core.Feedback{
		ID:              row.ID,
		EventID:         row.EventID,
		ParticipantName: row.ParticipantName,
		Rating:          int(row.Rating),
		Comments:        row.Comments,
		Recommendation:  row.Recommendation,
		Categories:      cats,
		SubmittedAt:     submitted,
	}, nil
}
