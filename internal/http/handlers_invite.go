package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"eventdash/internal/core"
	"eventdash/internal/invite"
	"eventdash/internal/log"
)

const (
	minQRSize = 128
	maxQRSize = 1024
)

type registrationForm struct {
	EventID string
	Values  core.Registration
	Errors  core.FieldErrors
}

type invitePage struct {
	page
	Event         core.Event
	InvitationURL string
	QRStatuses    []core.QRStatus
	Form          registrationForm
}

type registrationResult struct {
	Event        core.Event
	Registration core.Registration
}

// handleInvite renders the public invitation with its registration form
func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	event, err := s.backend.GetEvent(ctx, id)
	if err != nil {
		s.fail(w, r, "invite", err)
		return
	}
	statuses, err := s.backend.QRStatuses(ctx, id)
	if err != nil {
		s.fail(w, r, "invite", err)
		return
	}

	s.render(w, r, NewHTMXResponse(), "invite_page", invitePage{
		page:          page{Title: "You're invited: " + event.Name, Nav: "invite", Today: s.clock.Today()},
		Event:         event,
		InvitationURL: invite.InvitationURL(s.baseURL, id),
		QRStatuses:    statuses,
		Form:          registrationForm{EventID: id},
	})
}

// handleRegister accepts a registration as form data (HTMX) or JSON.
// Field errors come back with 422 next to the offending fields.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	event, err := s.backend.GetEvent(ctx, id)
	if err != nil {
		s.fail(w, r, "register", err)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	form := core.Registration{
		EventID:  id,
		Name:     parser.Get("name"),
		Email:    parser.Get("email"),
		Company:  parser.Get("company"),
		Position: parser.Get("position"),
		Phone:    parser.Get("phone"),
	}

	reg, err := s.registrations.Register(ctx, form)
	var fieldErrs core.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		if parser.IsJSON() {
			writeJSON(w, r, http.StatusUnprocessableEntity, map[string]interface{}{"errors": fieldErrs})
			return
		}
		resp := NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification("Please fix the highlighted fields")
		s.render(w, r, resp, "registration_form", registrationForm{EventID: id, Values: form, Errors: fieldErrs})
		return
	case err != nil:
		s.fail(w, r, "register", err)
		return
	}

	log.NewStructuredLogger(log.FromContext(ctx)).LogRegistrationCreated(ctx, reg.EventID, reg.ID)

	if parser.IsJSON() {
		writeJSON(w, r, http.StatusCreated, map[string]interface{}{
			"id":         reg.ID,
			"event_id":   reg.EventID,
			"created_at": reg.CreatedAt,
		})
		return
	}

	resp := NewHTMXResponse().
		TriggerRegistrationCreated(reg.EventID, reg.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Registration successful")
	s.render(w, r, resp, "registration_success", registrationResult{Event: event, Registration: reg})
}

// handleInviteQR renders the invitation link as a PNG QR code
func (s *Server) handleInviteQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := r.PathValue("id")
	if _, err := s.backend.GetEvent(ctx, id); err != nil {
		s.fail(w, r, "invite_qr", err)
		return
	}

	size := invite.DefaultQRSize
	if v := strings.TrimSpace(r.URL.Query().Get("size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			size = max(minQRSize, min(n, maxQRSize))
		}
	}

	png, err := invite.QRCode(invite.InvitationURL(s.baseURL, id), size)
	if err != nil {
		s.fail(w, r, "invite_qr", err)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", "image/png").
		Header("Cache-Control", "public, max-age=3600").
		// Invitations embed the code from other origins (mail, printed pages).
		Header("Cross-Origin-Resource-Policy", "cross-origin").
		Body(png).
		Write(w)
}
