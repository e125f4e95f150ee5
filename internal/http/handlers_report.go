package http

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"eventdash/internal/core"
	"eventdash/internal/report"
)

type reportPage struct {
	page
	Summary  report.Summary
	Statuses []core.EventStatus
}

// handleReport renders the aggregate report. Events and feedback load
// concurrently; the summary is cached until an event is deleted or the
// TTL passes.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := s.reportSummary(ctx)
	if err != nil {
		s.fail(w, r, "report", err)
		return
	}

	s.render(w, r, NewHTMXResponse(), "report_page", reportPage{
		page:     page{Title: "Report", Nav: "report", Today: s.clock.Today()},
		Summary:  summary,
		Statuses: []core.EventStatus{core.StatusUpcoming, core.StatusOngoing, core.StatusPast},
	})
}

func (s *Server) reportSummary(ctx context.Context) (report.Summary, error) {
	if cached, ok := s.reportCache.Get(reportCacheKey); ok {
		return cached, nil
	}

	var (
		events   []core.Event
		feedback []core.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.events(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		feedback, err = s.backend.ListFeedback(gctx, "")
		if err != nil {
			return fmt.Errorf("list feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Summary{}, err
	}

	summary := report.BuildReport(events, feedback)
	s.reportCache.Set(reportCacheKey, summary)
	return summary, nil
}
