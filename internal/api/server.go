// Package api exposes the QA service over HTTP: POST /ask, GET /roles, and a
// health banner at GET /. Bodies are JSON; errors carry a {detail} object.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/rag"
	"github.com/elyxlabs/careloop/internal/ratelimit"
)

const shutdownTimeout = 5 * time.Second

// Per-IP defaults: a polite client stays well under these.
const (
	defaultRate  = 30.0 / 60.0
	defaultBurst = 10
)

// QA is the answering surface the server fronts.
type QA interface {
	Ask(ctx context.Context, question, explicitRole string, since time.Time) (*rag.Answer, error)
	Roles() ([]models.Role, models.Role)
}

// Server serves the QA API. Construct with NewServer, start with Run.
type Server struct {
	qa      QA
	log     *slog.Logger
	limiter *ratelimit.Limiter
	addr    string
}

// Option configures a Server.
type Option func(*Server)

// WithLimiter replaces the default per-IP limiter, mainly for tests.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// NewServer wires the HTTP layer over a QA implementation.
func NewServer(addr string, qa QA, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		qa:      qa,
		log:     log,
		limiter: ratelimit.NewLimiter(defaultRate, defaultBurst),
		addr:    addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed handler with request-id, logging, and rate-limit
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /roles", s.handleRoles)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	return s.withRequestID(s.withRateLimit(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down api: %w", err)
		}
		s.log.Info("api stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving api: %w", err)
	}
}

type askRequest struct {
	Question string `json:"question"`
	Role     string `json:"role,omitempty"`
	Since    string `json:"since,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	var since time.Time
	if req.Since != "" {
		var err error
		since, err = time.Parse(models.DateLayout, req.Since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
	}

	ans, err := s.qa.Ask(r.Context(), req.Question, req.Role, since)
	if err != nil {
		s.log.Error("ask failed", "error", err, "request_id", requestID(r))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	roles, def := s.qa.Roles()
	writeJSON(w, http.StatusOK, map[string]any{
		"available_roles": roles,
		"default_role":    def,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "careloop api is running"})
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", id,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
