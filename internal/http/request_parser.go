// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Malformed navigation parameters fall back to defaults; only values that
// select data the user explicitly asked for are rejected.

package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eventdash/internal/core"
	"eventdash/internal/listing"
)

// statusAll selects every event regardless of status.
const statusAll = "all"

// MonthParams holds a calendar month with a zero-based month index.
type MonthParams struct {
	Year   int
	Month0 int
}

// ListParams holds the search, category and page of a filtered list.
type ListParams struct {
	Search   string
	Category string
	Page     int
}

// EventListParams adds the status tab to ListParams.
type EventListParams struct {
	ListParams
	Status string
}

// Query encodes the parameters for the given page.
func (p ListParams) Query(page int) template.URL {
	return template.URL(p.values(page).Encode())
}

func (p ListParams) values(page int) url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	if p.Category != "" && p.Category != listing.AllCategories {
		v.Set("category", p.Category)
	}
	v.Set("page", strconv.Itoa(page))
	return v
}

// Query encodes the parameters, status tab included, for the given page.
func (p EventListParams) Query(page int) template.URL {
	v := p.ListParams.values(page)
	v.Set("status", p.Status)
	return template.URL(v.Encode())
}

// ParseMonthParams extracts year and zero-based month from query parameters.
// Missing or invalid values fall back to today's month.
func ParseMonthParams(query url.Values, today core.Date) MonthParams {
	params := MonthParams{
		Year:   today.Year(),
		Month0: today.Month() - 1,
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y > 0 && y < 10000 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 0 && m <= 11 {
			params.Month0 = m
		}
	}

	return params
}

// ParseListParams reads q, category and page. The search text is kept
// as typed apart from control characters.
func ParseListParams(query url.Values) ListParams {
	params := ListParams{
		Search:   stripControl(query.Get("q")),
		Category: sanitizeInput(query.Get("category")),
		Page:     1,
	}
	if params.Category == "" {
		params.Category = listing.AllCategories
	}
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			params.Page = p
		}
	}
	return params
}

// ParseEventListParams reads the list parameters plus the status tab,
// which defaults to upcoming.
func ParseEventListParams(query url.Values) (EventListParams, error) {
	params := EventListParams{
		ListParams: ParseListParams(query),
		Status:     sanitizeInput(query.Get("status")),
	}
	switch params.Status {
	case "":
		params.Status = string(core.StatusUpcoming)
	case statusAll:
	default:
		if !core.EventStatus(params.Status).IsValid() {
			return params, fmt.Errorf("%w: unknown status %q", core.ErrInvalidArgument, params.Status)
		}
	}
	return params, nil
}

// ParseDayParam reads the date query parameter (YYYY-MM-DD).
func ParseDayParam(query url.Values) (core.Date, error) {
	raw := strings.TrimSpace(query.Get("date"))
	if raw == "" {
		return core.Date{}, fmt.Errorf("%w: missing date", core.ErrInvalidArgument)
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	return d, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// maxBodyBytes caps request bodies read by RequestBodyParser.
const maxBodyBytes = 64 << 10

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
