// Package http serves the fund UI: server-rendered pages over the domain
// store, with the treasurer-facing report and reminder actions.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kaskelas/internal/cache"
	"kaskelas/internal/core"
	applog "kaskelas/internal/log"
	"kaskelas/internal/metrics"
	"kaskelas/internal/report"
	"kaskelas/internal/store"
	appweb "kaskelas/web"
)

const summaryCacheKey = "summary"

// ReminderPublisher queues payment reminders for out-of-band dispatch.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, member core.Member, debt core.Money) error
}

// ReportExporter pushes a report snapshot to an external sheet.
type ReportExporter interface {
	Export(ctx context.Context, sum report.Summary) error
}

type Server struct {
	http.Server
	templates *template.Template
	store     *store.Store

	publisher ReminderPublisher // nil when AMQP is not configured
	exporter  ReportExporter    // nil when Sheets export is not configured

	rateLimiter *rateLimiter
	metrics     *metrics.Metrics

	// Dashboard aggregate, purged on every store mutation.
	summaryCache *cache.LRU[report.Summary]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. postLimit caps mutating requests per client IP per minute; zero
// means the default.
func NewServer(addr string, st *store.Store, m *metrics.Metrics, pub ReminderPublisher, exp ReportExporter, postLimit int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:            st,
		publisher:        pub,
		exporter:         exp,
		rateLimiter:      newRateLimiter(postLimit, m),
		metrics:          m,
		summaryCache:     cache.NewLRU[report.Summary](4, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	// Every request gets a component-scoped logger and a request id in its
	// context; handlers pick it up with applog.FromContext.
	httpLogger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	s.Server.Handler = applog.Middleware(httpLogger)(
		applog.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(mux))

	st.Subscribe(s.summaryCache.Purge)
	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	funcs := template.FuncMap{
		"rupiah":   report.FormatRupiah,
		"longdate": report.FormatLongDate,
	}
	t, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/members", s.withSecurityHeaders(s.handleMembers))
	mux.HandleFunc("/members/update", s.withSecurityHeaders(s.handleMemberUpdate))
	mux.HandleFunc("/members/delete", s.withSecurityHeaders(s.handleMemberDelete))
	mux.HandleFunc("/dues", s.withSecurityHeaders(s.handleDues))
	mux.HandleFunc("/dues/delete", s.withSecurityHeaders(s.handleDueDelete))
	mux.HandleFunc("/dues/toggle", s.withSecurityHeaders(s.handleDueToggle))
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.handleExpenses))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.handleExpenseDelete))
	mux.HandleFunc("/reports", s.withSecurityHeaders(s.handleReports))
	mux.HandleFunc("/reports/remind", s.withSecurityHeaders(s.handleRemind))
	mux.HandleFunc("/reports/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("/theme", s.withSecurityHeaders(s.handleTheme))
	mux.HandleFunc("/reset", s.withSecurityHeaders(s.handleReset))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// startCacheCleanup periodically drops expired dashboard entries.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r, s.metrics)
		logger := applog.FromContext(r.Context())
		structured := applog.NewStructuredLogger(logger)

		structured.LogHTTPStart(r.Context(), r, clientIP)

		// Rate limit mutations only
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			logger.Warn("Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		structured.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store hydrated at startup or the process would not be serving.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes the named page template with the shared layout data.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// summary returns the dashboard aggregate, computing it only when the cache
// was purged by a mutation or expired.
func (s *Server) summary() report.Summary {
	if sum, ok := s.summaryCache.Get(summaryCacheKey); ok {
		return sum
	}
	sum := report.BuildSummary(s.store.Snapshot(), time.Now())
	s.summaryCache.Set(summaryCacheKey, sum)
	return sum
}
