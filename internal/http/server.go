package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentdesk/internal/auth"
	"rentdesk/internal/cache"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
	"rentdesk/internal/middleware/ratelimit"
	"rentdesk/internal/middleware/security"
	"rentdesk/internal/middleware/trace"
	"rentdesk/internal/report"
	"rentdesk/internal/services"
	"rentdesk/internal/sheets"
	"rentdesk/internal/store"
	appweb "rentdesk/web"
)

// Config tunes the server. Zero values fall back to defaults.
type Config struct {
	Addr            string
	RateLimit       ratelimit.Config
	ReportCacheSize int
	ReportCacheTTL  time.Duration
	TrustedProxies  []string
	HSTSMaxAge      time.Duration
}

// Deps are the collaborators the handlers call. Repo and Auth are required.
type Deps struct {
	Repo     store.Repository
	Auth     *auth.JWTManager
	Payments *services.PaymentService
	// Exporter is nil when Google Sheets is not configured.
	Exporter sheets.ReportExporter
	Renderer *report.Renderer
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// renderedReport is a finished report document.
type renderedReport struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Server is the rentdesk HTTP API.
type Server struct {
	http.Server

	repo     store.Repository
	auth     *auth.JWTManager
	payments *services.PaymentService
	exporter sheets.ReportExporter
	renderer *report.Renderer
	metrics  *metrics.Metrics
	logger   *log.Logger

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	reportCache *cache.LRUCache[renderedReport]

	// version changes on every mutation so cached reports go stale.
	version atomic.Uint64
	now     func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, d Deps) (*Server, error) {
	if d.Repo == nil {
		return nil, errors.New("http server: repository is required")
	}
	if d.Auth == nil {
		return nil, errors.New("http server: auth manager is required")
	}
	if d.Logger == nil {
		d.Logger = log.Discard()
	}
	if d.Payments == nil {
		d.Payments = services.NewPaymentService(d.Repo, nil, d.Metrics, d.Logger)
	}
	if d.Renderer == nil {
		r, err := report.NewRenderer(appweb.TemplatesFS)
		if err != nil {
			return nil, fmt.Errorf("parse report templates: %w", err)
		}
		d.Renderer = r
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.ReportCacheSize <= 0 {
		cfg.ReportCacheSize = 64
	}
	if cfg.ReportCacheTTL <= 0 {
		cfg.ReportCacheTTL = 10 * time.Minute
	}

	detector := security.NewDetector()
	for _, cidr := range cfg.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		repo:        d.Repo,
		auth:        d.Auth,
		payments:    d.Payments,
		exporter:    d.Exporter,
		renderer:    d.Renderer,
		metrics:     d.Metrics,
		logger:      d.Logger.WithComponent(log.ComponentHTTP),
		detector:    detector,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		reportCache: cache.NewLRUCache[renderedReport](cfg.ReportCacheSize, cfg.ReportCacheTTL),
		now:         time.Now,
	}

	mux := http.NewServeMux()
	s.routes(mux, d.Gatherer)

	routeOf := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}
	tracer := trace.NewMiddleware(d.Logger, d.Metrics, detector.ExtractClientIP, routeOf)
	requestID := func(r *http.Request) string { return trace.GetRequestID(r.Context()) }

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimit)(h)
	h = s.screen(h)
	h = log.Middleware(d.Logger, requestID)(h)
	h = tracer.Middleware(h)
	h = security.Headers(cfg.HSTSMaxAge)(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	landlord := func(h http.HandlerFunc) http.Handler {
		return security.NoStore(s.auth.Require(s.authError, auth.RoleLandlord)(h))
	}
	tenant := func(h http.HandlerFunc) http.Handler {
		return security.NoStore(s.auth.Require(s.authError, auth.RoleTenant)(h))
	}

	mux.Handle("GET /api/properties", landlord(s.handleListProperties))
	mux.Handle("POST /api/properties", landlord(s.handleCreateProperty))
	mux.Handle("GET /api/properties/{id}", landlord(s.handleGetProperty))
	mux.Handle("PUT /api/properties/{id}", landlord(s.handleUpdateProperty))
	mux.Handle("DELETE /api/properties/{id}", landlord(s.handleDeleteProperty))

	mux.Handle("GET /api/tenants", landlord(s.handleListTenants))
	mux.Handle("POST /api/tenants", landlord(s.handleCreateTenant))
	mux.Handle("GET /api/tenants/{id}", landlord(s.handleGetTenant))
	mux.Handle("PUT /api/tenants/{id}", landlord(s.handleUpdateTenant))
	mux.Handle("DELETE /api/tenants/{id}", landlord(s.handleDeleteTenant))
	mux.Handle("GET /api/tenants/{id}/messages", landlord(s.handleListTenantMessages))
	mux.Handle("POST /api/tenants/{id}/messages", landlord(s.handleSendTenantMessage))

	mux.Handle("GET /api/payments", landlord(s.handleListPayments))
	mux.Handle("POST /api/payments", landlord(s.handleRecordPayment))
	mux.Handle("PATCH /api/payments/{id}/status", landlord(s.handleUpdatePaymentStatus))

	mux.Handle("GET /api/revenue", landlord(s.handleRevenue))
	mux.Handle("GET /api/reports/payments", landlord(s.handlePaymentReport))
	mux.Handle("POST /api/reports/payments/export", landlord(s.handleExportReport))

	mux.Handle("GET /api/me", tenant(s.handleMe))
	mux.Handle("GET /api/me/payments", tenant(s.handleMyPayments))
	mux.Handle("POST /api/me/payments", tenant(s.handleSubmitPayment))
	mux.Handle("GET /api/me/notifications", tenant(s.handleMyNotifications))
	mux.Handle("POST /api/me/notifications/{id}/read", tenant(s.handleMarkNotificationRead))
	mux.Handle("GET /api/me/messages", tenant(s.handleMyMessages))
	mux.Handle("POST /api/me/messages", tenant(s.handleSendMyMessage))
}

// screen rejects requests the detector flags as probes.
func (s *Server) screen(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Inspect(r); reason != "" {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request rejected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldPath, r.URL.Path,
				"reason", reason)
			writeError(w, http.StatusBadRequest, errors.New("request rejected"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded, please try again later"))
}

func (s *Server) authError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeError(w, status, err)
}

// changed invalidates cached reports after a mutation.
func (s *Server) changed() {
	s.version.Add(1)
}

// Caches lists the server caches for a cache.Manager to sweep.
func (s *Server) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.reportCache}
}

// Shutdown stops the HTTP server and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
