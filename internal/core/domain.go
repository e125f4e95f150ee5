package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusUpcoming EventStatus = "upcoming"
	StatusOngoing  EventStatus = "ongoing"
	StatusPast     EventStatus = "past"
)

const (
	RSVPConfirmed RSVPStatus = "Confirmed"
	RSVPPending   RSVPStatus = "Pending"
	RSVPCancelled RSVPStatus = "Cancelled"
)

// Check-in states double as the participant category used by list filters.
const (
	CheckedIn    = "checked-in"
	NotCheckedIn = "not-checked-in"
)

const dateLayout = "2006-01-02"

type (
	EventStatus string
	RSVPStatus  string

	// Date is a calendar date at UTC midnight.
	Date struct {
		time.Time
	}

	Event struct {
		ID           string
		Name         string
		Company      string // Organizer
		Category     string
		Date         Date
		Place        string
		Description  string
		Participants int // Expected attendees
		Requirements string
		Notes        string
		Image        string
		Status       EventStatus
		Recurrence   string // Optional RRULE, e.g. "FREQ=WEEKLY;COUNT=4"
	}

	Participant struct {
		ID         string
		EventID    string
		Name       string
		Email      string
		Role       string
		Phone      string
		Department string
		RSVP       RSVPStatus
		CheckedIn  bool
	}
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNegativeCount   = errors.New("negative participant count")
)

// NewDate creates a new Date from year, month (1-12), day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month (1-12)
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Key returns the zero-padded YYYY-MM-DD form used to match calendar days.
func (d Date) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) String() string {
	return d.Key()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// DeriveStatus places an event date relative to today.
func DeriveStatus(eventDate, today Date) EventStatus {
	switch {
	case eventDate.Before(today.Time):
		return StatusPast
	case eventDate.Equal(today.Time):
		return StatusOngoing
	default:
		return StatusUpcoming
	}
}

func (s EventStatus) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusPast:
		return true
	}
	return false
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Status != "" && !e.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	if e.Participants < 0 {
		return ErrNegativeCount
	}
	return nil
}

// SearchFields lists the fields matched by free-text search.
func (e Event) SearchFields() []string {
	return []string{e.Name, e.Company, e.Place}
}

func (e Event) CategoryValue() string {
	return e.Category
}

// DateKey is the calendar day the event falls on.
func (e Event) DateKey() string {
	return e.Date.Key()
}

func (p Participant) SearchFields() []string {
	return []string{p.Name, p.Email, p.Role}
}

// CategoryValue exposes the check-in state so the status tabs reuse the
// category predicate.
func (p Participant) CategoryValue() string {
	if p.CheckedIn {
		return CheckedIn
	}
	return NotCheckedIn
}
