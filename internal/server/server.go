package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/klyr/fragpath/internal/config"
	"github.com/klyr/fragpath/internal/logging"
	"github.com/klyr/fragpath/internal/normalize"
	"github.com/klyr/fragpath/internal/observability"
	"github.com/klyr/fragpath/internal/ratelimit"
	"github.com/klyr/fragpath/internal/tempfile"
)

const (
	KindAbsolute = "absolute"
	KindRelative = "relative"
	KindEmpty    = "empty"
)

type Server struct {
	mux *http.ServeMux

	base        string
	opts        normalize.Options
	tempEnabled bool
	tempDir     string

	limiter         *ratelimit.Limiter
	rateLimitStatus int
	resolutionLog   *logging.ResolutionLogger
	metrics         *observability.Metrics
	logger          *slog.Logger

	requestCount uint64
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:  http.NewServeMux(),
		base: cfg.Resolve.Base,
		opts: normalize.Options{
			MaxDecodeDepth: cfg.Resolve.MaxDecodeDepth,
			Lowercase:      cfg.Resolve.Lowercase,
		},
		tempEnabled:     cfg.TempFile.Enabled,
		tempDir:         cfg.ResolvePath(cfg.TempFile.Dir),
		rateLimitStatus: rateLimitStatus(cfg.Server.RateLimit.StatusCode),
		logger:          logger,
	}
	if cfg.Server.RateLimit.Enabled {
		s.limiter = ratelimit.NewLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
	}

	s.mux.HandleFunc("/resolve", s.handleResolve)
	s.mux.HandleFunc("/relative", s.handleRelative)
	s.mux.HandleFunc("/tempfile", s.handleTempFile)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return s, nil
}

func (s *Server) SetResolutionLogger(logger *logging.ResolutionLogger) {
	s.resolutionLog = logger
}

func (s *Server) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Limiter exposes the rate limiter so callers can prune idle buckets. It is
// nil when rate limiting is disabled.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/healthz" && !s.limiter.Allow(clientIP(r), time.Now()) {
		s.metrics.RateLimited()
		s.logger.Debug("rate limited", "client_ip", clientIP(r), "path", r.URL.Path)
		writeError(w, s.rateLimitStatus, "rate limit exceeded")
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	fragments := r.URL.Query()["f"]
	if s.base != "" {
		fragments = append([]string{s.base}, fragments...)
	}
	result := normalize.ApplyAll(fragments, s.opts)

	s.record(logging.Resolution{
		ClientIP:   clientIP(r),
		Operation:  logging.OpResolve,
		Fragments:  fragments,
		Result:     result,
		Kind:       Kind(result),
		StatusCode: http.StatusOK,
	}, start)
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleRelative(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	query := r.URL.Query()
	parent := normalize.Apply(query.Get("parent"), s.opts).Normalized
	child := normalize.Apply(query.Get("child"), s.opts).Normalized
	result := normalize.ResolveRelative(parent, child)

	s.record(logging.Resolution{
		ClientIP:   clientIP(r),
		Operation:  logging.OpRelative,
		Fragments:  []string{parent, child},
		Result:     result,
		Kind:       Kind(result),
		StatusCode: http.StatusOK,
	}, start)
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleTempFile(w http.ResponseWriter, r *http.Request) {
	if !s.tempEnabled {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	query := r.URL.Query()
	prefix, suffix := query.Get("prefix"), query.Get("suffix")
	resolution := logging.Resolution{
		ClientIP:  clientIP(r),
		Operation: logging.OpTempFile,
		Fragments: []string{prefix, suffix},
	}

	path, err := tempfile.Create(s.tempDir, prefix, suffix)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tempfile.ErrPrefixTooShort) || errors.Is(err, tempfile.ErrPatternHasSeparator) {
			status = http.StatusBadRequest
		}
		resolution.Error = err.Error()
		resolution.StatusCode = status
		s.record(resolution, start)
		s.logger.Warn("temp file creation failed", "error", err)
		writeError(w, status, err.Error())
		return
	}

	resolution.Result = path
	resolution.StatusCode = http.StatusCreated
	s.record(resolution, start)
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func (s *Server) record(resolution logging.Resolution, start time.Time) {
	elapsed := time.Since(start)
	resolution.Timestamp = start.UTC()
	resolution.RequestID = s.newRequestID()
	resolution.DurationMS = elapsed.Milliseconds()

	if err := s.resolutionLog.Write(resolution); err != nil {
		s.logger.Error("write resolution log", "error", err)
	}
	s.metrics.Observe(resolution, elapsed)
}

func (s *Server) newRequestID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return hex.EncodeToString(buf[:])
	}
	value := atomic.AddUint64(&s.requestCount, 1)
	return fmt.Sprintf("req-%d", value)
}

// Kind classifies a resolved path for logs and metrics.
func Kind(path string) string {
	switch {
	case path == "":
		return KindEmpty
	case strings.HasPrefix(path, "/"):
		return KindAbsolute
	default:
		return KindRelative
	}
}

func rateLimitStatus(code int) int {
	if code <= 0 {
		return http.StatusTooManyRequests
	}
	return code
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
