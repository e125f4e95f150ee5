// Package sheets reads events from and appends registrations to a Google
// spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"eventdash/internal/core"
)

type Config struct {
	SpreadsheetID      string
	EventsSheet        string
	RegistrationsSheet string
	// One of the two credential sources must be set; inline JSON wins.
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc                *gsheet.Service
	spreadsheetID      string
	eventsSheet        string
	registrationsSheet string
	logger             *slog.Logger
}

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:                svc,
		spreadsheetID:      cfg.SpreadsheetID,
		eventsSheet:        orDefault(cfg.EventsSheet, "Events"),
		registrationsSheet: orDefault(cfg.RegistrationsSheet, "Registrations"),
		logger:             logger,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config, logger *slog.Logger) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", cfg.ServiceAccountFile)
		raw, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ListEvents reads every row of the events sheet. Statuses are left empty;
// callers derive them from today's date.
func (c *Client) ListEvents(ctx context.Context) ([]core.Event, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", c.eventsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	events, skipped, err := parseEventRows(resp.Values)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped malformed event rows", "sheet", c.eventsSheet, "skipped", skipped)
	}
	return events, nil
}

// AppendRegistration adds one row to the registrations sheet.
func (c *Client) AppendRegistration(ctx context.Context, reg core.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:H", c.registrationsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{registrationRow(reg)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.registrationsSheet, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Registration appended to sheet",
		"id", reg.ID,
		"event_id", reg.EventID,
		"range", updated)
	return nil
}

func registrationRow(reg core.Registration) []any {
	return []any{
		reg.ID,
		reg.EventID,
		reg.Name,
		reg.Email,
		reg.Company,
		reg.Position,
		reg.Phone,
		reg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
