package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"eventdash/internal/calendar"
	"eventdash/internal/core"
	"eventdash/internal/log"
	"eventdash/internal/metrics"
	"eventdash/internal/store"
)

// StatusSource is what the refresher needs from a backend.
type StatusSource interface {
	store.StatusRefresher
	store.EventReader
}

// StatusRefresher recomputes derived event statuses on a cron schedule so
// events roll from upcoming to ongoing to past without a restart.
type StatusRefresher struct {
	source  StatusSource
	clock   calendar.Clock
	logger  *log.Logger
	timeout time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

func NewStatusRefresher(source StatusSource, clock calendar.Clock, logger *log.Logger) *StatusRefresher {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &StatusRefresher{
		source:  source,
		clock:   clock,
		logger:  logger.WithComponent(log.ComponentWorker),
		timeout: 30 * time.Second,
	}
}

// Start schedules RunOnce with a standard cron spec or @every descriptor.
// It runs once immediately so the gauges are populated at startup.
func (r *StatusRefresher) Start(ctx context.Context, schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return fmt.Errorf("status refresher is already running")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		if _, err := r.RunOnce(runCtx); err != nil {
			r.logger.ErrorContext(runCtx, "Status refresh failed", log.FieldError, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.WarnContext(ctx, "Initial status refresh failed", log.FieldError, err)
	}

	c.Start()
	r.cron = c
	r.logger.InfoContext(ctx, "Status refresher scheduled", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *StatusRefresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// RunOnce refreshes statuses against today and updates the status gauges.
// It returns how many events changed.
func (r *StatusRefresher) RunOnce(ctx context.Context) (int, error) {
	today := r.clock.Today()
	changed, err := r.source.RefreshStatuses(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("refresh statuses: %w", err)
	}
	metrics.StatusRefreshes.Inc()

	events, err := r.source.ListEvents(ctx)
	if err != nil {
		return changed, fmt.Errorf("list events: %w", err)
	}
	counts := map[core.EventStatus]int{}
	for _, e := range events {
		counts[e.Status]++
	}
	for _, st := range []core.EventStatus{core.StatusUpcoming, core.StatusOngoing, core.StatusPast} {
		metrics.EventsByStatus.WithLabelValues(string(st)).Set(float64(counts[st]))
	}

	if changed > 0 {
		r.logger.InfoContext(ctx, "Event statuses refreshed",
			"changed", changed,
			"today", today.Key())
	}
	return changed, nil
}
