package core

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// QR statuses that can be enabled on an event's QR code.
const (
	QRInvitation QRStatus = "invitation"
	QRWelcome    QRStatus = "welcome"
	QRFeedback   QRStatus = "feedback"
	QRImages     QRStatus = "images"
)

type (
	QRStatus string

	Registration struct {
		ID        string
		EventID   string
		Name      string
		Email     string
		Company   string
		Position  string
		Phone     string
		CreatedAt time.Time
	}

	// FieldErrors maps a form field to its validation message.
	FieldErrors map[string]string
)

var ErrValidation = errors.New("validation failed")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// QRStatuses lists every known QR status in display order.
func QRStatuses() []QRStatus {
	return []QRStatus{QRInvitation, QRWelcome, QRFeedback, QRImages}
}

func (s QRStatus) IsValid() bool {
	switch s {
	case QRInvitation, QRWelcome, QRFeedback, QRImages:
		return true
	}
	return false
}

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks the registration form. It returns FieldErrors so callers
// can render a message next to each field.
func (r Registration) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "Name is required"
	}
	switch {
	case strings.TrimSpace(r.Email) == "":
		errs["email"] = "Email is required"
	case !ValidEmail(r.Email):
		errs["email"] = "Please enter a valid email address"
	}
	if strings.TrimSpace(r.Company) == "" {
		errs["company"] = "Company is required"
	}
	if strings.TrimSpace(r.Position) == "" {
		errs["position"] = "Position is required"
	}
	if strings.TrimSpace(r.EventID) == "" {
		errs["event"] = "Event is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
