package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"eventdash/internal/core"
	"eventdash/internal/invite"
	"eventdash/internal/log"
)

// render executes a named template into a buffer first so a failing
// template never leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldTemplate, name,
			log.FieldError, err)
		InternalServerError("Failed to render page").Write(w)
		return
	}
	resp.BodyHTML(buf.String()).Write(w)
}

// fail maps domain errors onto HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	switch {
	case errors.Is(err, core.ErrNotFound):
		logger.DebugContext(ctx, "Resource not found", log.FieldOperation, op, log.FieldError, err)
		NotFoundError("Not found").Write(w)
	case errors.Is(err, core.ErrValidation):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, invite.ErrUnknownStatus),
		errors.Is(err, invite.ErrTooManyStatuses):
		logger.DebugContext(ctx, "Bad request", log.FieldOperation, op, log.FieldError, err)
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(ctx, "Request timed out",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeTimeout,
			log.FieldError, err)
		ErrorResponse(http.StatusGatewayTimeout, "The data source did not answer in time").Write(w)
	default:
		logger.ErrorContext(ctx, "Request failed",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldError, err)
		InternalServerError("Something went wrong").Write(w)
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(stripControl(s))
}

// stripControl drops control characters except tab and newlines. Unlike
// sanitizeInput it keeps surrounding whitespace, which search queries
// match literally.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// categoriesOf returns the distinct event categories, sorted.
func categoriesOf(events []core.Event) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	sort.Strings(out)
	return out
}

// countByStatus tallies events per derived status.
func countByStatus(events []core.Event) map[core.EventStatus]int {
	counts := map[core.EventStatus]int{
		core.StatusUpcoming: 0,
		core.StatusOngoing:  0,
		core.StatusPast:     0,
	}
	for _, e := range events {
		counts[e.Status]++
	}
	return counts
}
