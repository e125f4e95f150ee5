package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"eventdash/internal/core"
	"eventdash/internal/sheets"
	"eventdash/internal/store"
	"eventdash/internal/store/memory"
)

// SheetEventSource is the part of the Sheets client the adapter needs:
// one full read of the events sheet and registration appends.
type SheetEventSource interface {
	ListEvents(ctx context.Context) ([]core.Event, error)
	store.RegistrationWriter
}

var _ SheetEventSource = (*sheets.Client)(nil)

// SheetsAdapter serves events loaded from a spreadsheet. The sheet only
// holds events and registrations, so participants, feedback and QR settings
// come from the seed and live in memory alongside the loaded events.
type SheetsAdapter struct {
	*memory.Store
	sheet  SheetEventSource
	logger *slog.Logger
}

var _ store.Backend = (*SheetsAdapter)(nil)

// NewSheetsAdapter reads the events sheet once and keeps seed participants
// and feedback that belong to events present in it.
func NewSheetsAdapter(ctx context.Context, sheet SheetEventSource, seed memory.Data, today core.Date, logger *slog.Logger) (*SheetsAdapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	events, err := sheet.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events from sheet: %w", err)
	}

	known := make(map[string]bool, len(events))
	for _, e := range events {
		known[e.ID] = true
	}
	data := memory.Data{Events: events}
	for _, p := range seed.Participants {
		if known[p.EventID] {
			data.Participants = append(data.Participants, p)
		}
	}
	for _, f := range seed.Feedback {
		if known[f.EventID] {
			data.Feedback = append(data.Feedback, f)
		}
	}

	logger.InfoContext(ctx, "Loaded events from sheet",
		"events", len(data.Events),
		"participants", len(data.Participants),
		"feedback", len(data.Feedback))

	return &SheetsAdapter{
		Store:  memory.New(data, today),
		sheet:  sheet,
		logger: logger,
	}, nil
}

// AppendRegistration writes to the sheet first; the in-memory copy is only
// kept when the sheet accepted the row.
func (a *SheetsAdapter) AppendRegistration(ctx context.Context, reg core.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	if _, err := a.Store.GetEvent(ctx, reg.EventID); err != nil {
		return err
	}
	if err := a.sheet.AppendRegistration(ctx, reg); err != nil {
		return fmt.Errorf("append registration to sheet: %w", err)
	}
	return a.Store.AppendRegistration(ctx, reg)
}
