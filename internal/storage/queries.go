package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL for the dashboard tables.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx runs the same queries inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type EventRow struct {
	ID           string
	Name         string
	Company      string
	Category     string
	Date         string
	Place        string
	Description  string
	Participants int64
	Requirements string
	Notes        string
	Image        string
	Status       string
	Recurrence   string
}

const eventColumns = `id, name, company, category, date, place, description, participants, requirements, notes, image, status, recurrence`

func scanEvent(row interface{ Scan(...any) error }) (EventRow, error) {
	var e EventRow
	err := row.Scan(&e.ID, &e.Name, &e.Company, &e.Category, &e.Date, &e.Place, &e.Description,
		&e.Participants, &e.Requirements, &e.Notes, &e.Image, &e.Status, &e.Recurrence)
	return e, err
}

const listEvents = `SELECT ` + eventColumns + ` FROM events ORDER BY rowid`

func (q *Queries) ListEvents(ctx context.Context) ([]EventRow, error) {
	rows, err := q.db.QueryContext(ctx, listEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EventRow
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const getEvent = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

func (q *Queries) GetEvent(ctx context.Context, id string) (EventRow, error) {
	return scanEvent(q.db.QueryRowContext(ctx, getEvent, id))
}

const countEvents = `SELECT COUNT(*) FROM events`

func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countEvents).Scan(&n)
	return n, err
}

const createEvent = `INSERT INTO events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateEvent(ctx context.Context, e EventRow) error {
	_, err := q.db.ExecContext(ctx, createEvent, e.ID, e.Name, e.Company, e.Category, e.Date, e.Place,
		e.Description, e.Participants, e.Requirements, e.Notes, e.Image, e.Status, e.Recurrence)
	return err
}

const deleteEvent = `DELETE FROM events WHERE id = ?`

func (q *Queries) DeleteEvent(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEvent, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateEventStatus = `UPDATE events SET status = ? WHERE id = ? AND status <> ?`

func (q *Queries) UpdateEventStatus(ctx context.Context, id, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateEventStatus, status, id, status)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type ParticipantRow struct {
	ID         string
	EventID    string
	Name       string
	Email      string
	Role       string
	Phone      string
	Department string
	RSVP       string
	CheckedIn  bool
}

const listParticipants = `SELECT id, event_id, name, email, role, phone, department, rsvp, checked_in
FROM participants WHERE event_id = ? ORDER BY rowid`

func (q *Queries) ListParticipants(ctx context.Context, eventID string) ([]ParticipantRow, error) {
	rows, err := q.db.QueryContext(ctx, listParticipants, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ParticipantRow
	for rows.Next() {
		var p ParticipantRow
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.Email, &p.Role, &p.Phone, &p.Department, &p.RSVP, &p.CheckedIn); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createParticipant = `INSERT INTO participants (id, event_id, name, email, role, phone, department, rsvp, checked_in)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateParticipant(ctx context.Context, p ParticipantRow) error {
	_, err := q.db.ExecContext(ctx, createParticipant, p.ID, p.EventID, p.Name, p.Email, p.Role, p.Phone, p.Department, p.RSVP, p.CheckedIn)
	return err
}

type FeedbackRow struct {
	ID              string
	EventID         string
	ParticipantName string
	Rating          int64
	Comments        string
	Recommendation  string
	Categories      string
	SubmittedAt     string
}

const feedbackColumns = `id, event_id, participant_name, rating, comments, recommendation, categories, submitted_at`

const listFeedback = `SELECT ` + feedbackColumns + ` FROM feedback WHERE (? = '' OR event_id = ?) ORDER BY rowid`

func (q *Queries) ListFeedback(ctx context.Context, eventID string) ([]FeedbackRow, error) {
	rows, err := q.db.QueryContext(ctx, listFeedback, eventID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FeedbackRow
	for rows.Next() {
		var f FeedbackRow
		if err := rows.Scan(&f.ID, &f.EventID, &f.ParticipantName, &f.Rating, &f.Comments, &f.Recommendation, &f.Categories, &f.SubmittedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

const createFeedback = `INSERT INTO feedback (` + feedbackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateFeedback(ctx context.Context, f FeedbackRow) error {
	_, err := q.db.ExecContext(ctx, createFeedback, f.ID, f.EventID, f.ParticipantName, f.Rating, f.Comments, f.Recommendation, f.Categories, f.SubmittedAt)
	return err
}

type RegistrationRow struct {
	ID         string
	EventID    string
	Name       string
	Email      string
	Company    string
	Position   string
	Phone      string
	CreatedAt  string
	NotifiedAt sql.NullString
}

const createRegistration = `INSERT INTO registrations (id, event_id, name, email, company, position, phone, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRegistration(ctx context.Context, r RegistrationRow) error {
	_, err := q.db.ExecContext(ctx, createRegistration, r.ID, r.EventID, r.Name, r.Email, r.Company, r.Position, r.Phone, r.CreatedAt)
	return err
}

const listRegistrations = `SELECT id, event_id, name, email, company, position, phone, created_at, notified_at
FROM registrations WHERE event_id = ? ORDER BY created_at, rowid`

func (q *Queries) ListRegistrations(ctx context.Context, eventID string) ([]RegistrationRow, error) {
	rows, err := q.db.QueryContext(ctx, listRegistrations, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RegistrationRow
	for rows.Next() {
		var r RegistrationRow
		if err := rows.Scan(&r.ID, &r.EventID, &r.Name, &r.Email, &r.Company, &r.Position, &r.Phone, &r.CreatedAt, &r.NotifiedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const markRegistrationNotified = `UPDATE registrations SET notified_at = ? WHERE id = ? AND notified_at IS NULL`

func (q *Queries) MarkRegistrationNotified(ctx context.Context, id, at string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markRegistrationNotified, at, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const registrationExists = `SELECT EXISTS(SELECT 1 FROM registrations WHERE id = ?)`

func (q *Queries) RegistrationExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := q.db.QueryRowContext(ctx, registrationExists, id).Scan(&ok)
	return ok, err
}

const listQRStatuses = `SELECT status FROM qr_statuses WHERE event_id = ? ORDER BY position`

func (q *Queries) ListQRStatuses(ctx context.Context, eventID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listQRStatuses, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const deleteQRStatuses = `DELETE FROM qr_statuses WHERE event_id = ?`

func (q *Queries) DeleteQRStatuses(ctx context.Context, eventID string) error {
	_, err := q.db.ExecContext(ctx, deleteQRStatuses, eventID)
	return err
}

const createQRStatus = `INSERT INTO qr_statuses (event_id, status, position) VALUES (?, ?, ?)`

func (q *Queries) CreateQRStatus(ctx context.Context, eventID, status string, position int) error {
	_, err := q.db.ExecContext(ctx, createQRStatus, eventID, status, position)
	return err
}

const deleteParticipantsByEvent = `DELETE FROM participants WHERE event_id = ?`

const deleteFeedbackByEvent = `DELETE FROM feedback WHERE event_id = ?`

// DeleteEventChildren removes rows that reference an event.
func (q *Queries) DeleteEventChildren(ctx context.Context, eventID string) error {
	for _, stmt := range []string{deleteParticipantsByEvent, deleteFeedbackByEvent, deleteQRStatuses} {
		if _, err := q.db.ExecContext(ctx, stmt, eventID); err != nil {
			return err
		}
	}
	return nil
}
