package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"eventdash/internal/cache"
	"eventdash/internal/calendar"
	"eventdash/internal/core"
	"eventdash/internal/listing"
	"eventdash/internal/log"
	"eventdash/internal/metrics"
	"eventdash/internal/middleware/ratelimit"
	"eventdash/internal/middleware/security"
	"eventdash/internal/middleware/trace"
	"eventdash/internal/report"
	"eventdash/internal/services"
	"eventdash/internal/store"
	appweb "eventdash/web"
)

const (
	eventsCacheKey = "events"
	reportCacheKey = "report"

	// requestTimeout bounds backend calls made while serving one request.
	requestTimeout = 7 * time.Second
)

// Config holds the server settings that do not come from the backend.
type Config struct {
	Addr               string
	PublicBaseURL      string
	PageSize           int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	Clock              calendar.Clock
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	templates     *template.Template
	backend       store.Backend
	registrations *services.RegistrationService
	logger        *log.Logger

	clock    calendar.Clock
	pageSize int
	baseURL  string
	started  time.Time

	eventsCache *cache.LRUCache[string, []core.Event]
	reportCache *cache.LRUCache[string, report.Summary]
	caches      *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates, registers routes and wraps the
// mux in the middleware chain.
func NewServer(cfg Config, backend store.Backend, registrations *services.RegistrationService, logger *log.Logger) (*Server, error) {
	if cfg.Clock == nil {
		cfg.Clock = calendar.SystemClock
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = listing.DefaultPageSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:     t,
		backend:       backend,
		registrations: registrations,
		logger:        logger,
		clock:         cfg.Clock,
		pageSize:      cfg.PageSize,
		baseURL:       cfg.PublicBaseURL,
		started:       time.Now(),
		eventsCache: cache.NewLRUCache[string, []core.Event](4, cfg.CacheTTL,
			cache.WithObserver(metrics.CacheObserver(eventsCacheKey))),
		reportCache: cache.NewLRUCache[string, report.Summary](4, cfg.CacheTTL,
			cache.WithObserver(metrics.CacheObserver(reportCacheKey))),
		caches:   cache.NewManager(logger.WithComponent(log.ComponentCache).Slog()),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(),
	}
	s.caches.Register(s.eventsCache)
	s.caches.Register(s.reportCache)
	s.caches.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)
	tracer := trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           tracer.Middleware(s.detector.Middleware(headers.Middleware(limit(mux)))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)

	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /ui/events", s.handleEventsTable)
	mux.HandleFunc("GET /events.ics", s.handleCalendarExport)
	mux.HandleFunc("GET /events/{id}", s.handleEventDetail)
	mux.HandleFunc("DELETE /events/{id}", s.handleDeleteEvent)
	mux.HandleFunc("GET /ui/events/{id}/participants", s.handleParticipantsTable)
	mux.HandleFunc("GET /events/{id}/feedback", s.handleFeedback)
	mux.HandleFunc("POST /events/{id}/qr-status", s.handleSaveQRStatus)

	mux.HandleFunc("GET /ui/calendar", s.handleCalendar)
	mux.HandleFunc("GET /ui/calendar/day", s.handleCalendarDay)

	mux.HandleFunc("GET /report", s.handleReport)

	mux.HandleFunc("GET /invite/{id}", s.handleInvite)
	mux.HandleFunc("POST /invite/{id}/register", s.handleRegister)
	mux.HandleFunc("GET /invite/{id}/qr.png", s.handleInviteQR)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.Inc()
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification("Too many requests. Please try again in a minute.").
		Write(w)
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// events returns the cached event list, loading it on a miss.
func (s *Server) events(ctx context.Context) ([]core.Event, error) {
	if cached, ok := s.eventsCache.Get(eventsCacheKey); ok {
		return cached, nil
	}
	events, err := s.backend.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	s.eventsCache.Set(eventsCacheKey, events)
	return events, nil
}

func (s *Server) invalidate() {
	s.eventsCache.Purge()
	s.reportCache.Purge()
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"label":    report.Label,
		"longDate": func(d core.Date) string { return d.Format("Mon, Jan 2, 2006") },
		"stamp":    func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"rating": func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"hasStatus": func(list []core.QRStatus, s core.QRStatus) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
	}
}
