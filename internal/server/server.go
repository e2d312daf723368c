// Package server exposes the audit runner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xful-bep/crysknife/internal/analysis"
	"github.com/xful-bep/crysknife/internal/analyzer"
	"github.com/xful-bep/crysknife/internal/audit"
)

const (
	// DefaultAddr is where Serve listens when no address is configured.
	DefaultAddr = "127.0.0.1:8080"
	// maxBodyBytes bounds uploaded and pasted content.
	maxBodyBytes = 10 << 20
	// RequestIDHeader carries the per-request identifier in both directions.
	RequestIDHeader = "X-Request-ID"
	// DefaultVisitorTTL is how long an idle client keeps its limiter.
	DefaultVisitorTTL = 10 * time.Minute
)

// Config holds the HTTP server settings.
type Config struct {
	Addr string
	// RateLimit is the sustained requests per second allowed per client.
	// Zero or less disables limiting.
	RateLimit float64
	// Burst is the bucket size of each client limiter. Defaults to 3.
	Burst int
	// TrustProxy keys clients by the first X-Forwarded-For address instead
	// of the connection's remote address. Only set it behind a proxy that
	// overwrites the header.
	TrustProxy bool
	// VisitorTTL evicts limiters of clients idle for longer. Defaults to
	// DefaultVisitorTTL.
	VisitorTTL time.Duration
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// AnalyzeResponse carries either the sanitized result or an error.
type AnalyzeResponse struct {
	Data  *analysis.Result `json:"data"`
	Error string           `json:"error,omitempty"`
}

type metrics struct {
	analyses *prometheus.CounterVec
	duration *prometheus.HistogramVec
	limited  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crysknife_analyses_total",
				Help: "Analyses served, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crysknife_analysis_duration_ms",
				Help:    "Duration of analyze requests in milliseconds",
				Buckets: []float64{10, 100, 500, 1000, 2000, 5000, 10000, 30000},
			},
			[]string{"kind"},
		),
		limited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crysknife_rate_limited_total",
			Help: "Requests rejected by the per-client limiter",
		}),
	}
	reg.MustRegister(m.analyses, m.duration, m.limited)
	return m
}

// Server serves analyses over HTTP.
type Server struct {
	runner   *audit.Runner
	cfg      Config
	logger   *zap.Logger
	metrics  *metrics
	registry *prometheus.Registry
	mux      *http.ServeMux

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New builds a server around runner. Each server owns its metrics registry.
func New(runner *audit.Runner, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.VisitorTTL <= 0 {
		cfg.VisitorTTL = DefaultVisitorTTL
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		runner:   runner,
		cfg:      cfg,
		logger:   logger,
		metrics:  newMetrics(reg),
		registry: reg,
		mux:      http.NewServeMux(),
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}

	s.mux.Handle("/api/analyze", s.RateLimit(http.HandlerFunc(s.AnalyzeHandler)))
	s.mux.HandleFunc("/healthz", s.HealthHandler)
	s.mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the root handler with request IDs attached.
func (s *Server) Handler() http.Handler {
	return s.RequestID(s.mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// RequestID tags each request with an ID, reusing the caller's when given.
func (s *Server) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r.Header.Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// RateLimit applies a token bucket per client address.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	if s.cfg.RateLimit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := s.clientIP(r)
		if !s.visitor(ip).Allow() {
			s.metrics.limited.Inc()
			s.logger.Warn("rate limit exceeded", zap.String("client", ip))
			writeJSON(w, http.StatusTooManyRequests, AnalyzeResponse{Error: "Too many requests. Please wait before trying again."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) visitor(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.cfg.VisitorTTL {
		s.sweepVisitors(now)
	}

	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweepVisitors drops idle limiters. s.mu must be held.
func (s *Server) sweepVisitors(now time.Time) {
	for ip, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.cfg.VisitorTTL {
			delete(s.visitors, ip)
		}
	}
	s.lastSweep = now
}

func (s *Server) clientIP(r *http.Request) string {
	if s.cfg.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// AnalyzeHandler runs one analysis and responds with the sanitized result.
func (s *Server) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, AnalyzeResponse{Error: "method not allowed"})
		return
	}
	log := s.logger.With(zap.String("request_id", r.Header.Get(RequestIDHeader)))

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Error: "Query parameter is required"})
		return
	}
	kind, err := analyzer.ParseKind(req.Type)
	if err != nil {
		s.metrics.analyses.WithLabelValues("unknown", "rejected").Inc()
		writeJSON(w, http.StatusBadRequest, AnalyzeResponse{Error: err.Error()})
		return
	}

	log.Info("analysis requested", zap.String("kind", string(kind)))
	start := time.Now()
	res, err := s.runner.Analyze(r.Context(), kind, req.Query)
	s.metrics.duration.WithLabelValues(string(kind)).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		status := StatusFor(err)
		s.metrics.analyses.WithLabelValues(string(kind), outcome(status)).Inc()
		log.Warn("analysis error", zap.String("kind", string(kind)), zap.Int("status", status), zap.Error(err))
		writeJSON(w, status, AnalyzeResponse{Error: err.Error()})
		return
	}

	s.metrics.analyses.WithLabelValues(string(kind), string(analysis.CompromiseLevel(res))).Inc()
	writeJSON(w, http.StatusOK, AnalyzeResponse{Data: res})
}

// HealthHandler reports liveness and the registry size.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"packages": s.runner.Registry().Len(),
	})
}

// StatusFor maps analyzer errors to HTTP status codes.
func StatusFor(err error) int {
	var malformed *analyzer.MalformedInputError
	switch {
	case errors.Is(err, analyzer.ErrEmptyQuery),
		errors.Is(err, analyzer.ErrUnsupportedKind),
		errors.Is(err, analyzer.ErrDecodeFailed),
		errors.As(err, &malformed):
		return http.StatusBadRequest
	case errors.Is(err, analyzer.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func outcome(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "rejected"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
