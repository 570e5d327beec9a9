package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elyxlabs/careloop/internal/models"
	"github.com/elyxlabs/careloop/internal/rag"
	"github.com/elyxlabs/careloop/internal/ratelimit"
)

type stubQA struct {
	answer    *rag.Answer
	err       error
	lastRole  string
	lastSince time.Time
}

func (s *stubQA) Ask(ctx context.Context, question, explicitRole string, since time.Time) (*rag.Answer, error) {
	s.lastRole = explicitRole
	s.lastSince = since
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func (s *stubQA) Roles() ([]models.Role, models.Role) {
	return models.AllRoles(), models.DefaultRole
}

func testServer(qa QA) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer("127.0.0.1:0", qa, log)
}

func postAsk(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAskEndpoint(t *testing.T) {
	qa := &stubQA{answer: &rag.Answer{
		Role:    models.RoleDrWarren,
		Answer:  "LDL is trending down [lab:2025-03-26].",
		Sources: []string{"lab:2025-03-26"},
	}}
	h := testServer(qa).Handler()

	rec := postAsk(t, h, `{"question":"how is my ldl?","role":"Dr. Warren","since":"2025-02-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var got rag.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Role != models.RoleDrWarren {
		t.Errorf("role = %q, want Dr. Warren", got.Role)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "lab:2025-03-26" {
		t.Errorf("sources = %v", got.Sources)
	}

	if qa.lastRole != "Dr. Warren" {
		t.Errorf("explicit role not forwarded: %q", qa.lastRole)
	}
	want, _ := time.Parse(models.DateLayout, "2025-02-01")
	if !qa.lastSince.Equal(want) {
		t.Errorf("since = %v, want %v", qa.lastSince, want)
	}
}

func TestAskEndpointBadRequests(t *testing.T) {
	h := testServer(&stubQA{answer: &rag.Answer{}}).Handler()

	tests := []struct {
		name string
		body string
	}{
		{"empty question", `{"question":"  "}`},
		{"missing question", `{}`},
		{"invalid json", `{not json`},
		{"bad since", `{"question":"q","since":"Feb 1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAsk(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["detail"] == "" {
				t.Error("error body missing detail")
			}
		})
	}
}

func TestAskEndpointServiceError(t *testing.T) {
	qa := &stubQA{err: models.ErrIndexUnavailable}
	rec := postAsk(t, testServer(qa).Handler(), `{"question":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] == "" {
		t.Error("error body missing detail")
	}
}

func TestRolesEndpoint(t *testing.T) {
	h := testServer(&stubQA{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		AvailableRoles []string `json:"available_roles"`
		DefaultRole    string   `json:"default_role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.AvailableRoles) != 6 {
		t.Errorf("available_roles = %v, want 6 personas", body.AvailableRoles)
	}
	if body.DefaultRole != "Ruby" {
		t.Errorf("default_role = %q, want Ruby", body.DefaultRole)
	}
}

func TestRootEndpoint(t *testing.T) {
	h := testServer(&stubQA{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "careloop api is running") {
		t.Errorf("unexpected body: %s", rec.Body)
	}
}

func TestRateLimiting(t *testing.T) {
	qa := &stubQA{answer: &rag.Answer{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Zero refill: only the burst is available.
	srv := NewServer("127.0.0.1:0", qa, log, WithLimiter(ratelimit.NewLimiter(0, 2)))
	h := srv.Handler()

	for i := 0; i < 2; i++ {
		rec := postAsk(t, h, `{"question":"hi"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}
	rec := postAsk(t, h, `{"question":"hi"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRunGracefulShutdown(t *testing.T) {
	srv := testServer(&stubQA{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := testServer(&stubQA{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("clientIP = %q", got)
	}
	req.RemoteAddr = "bare-host"
	if got := clientIP(req); got != "bare-host" {
		t.Errorf("clientIP fallback = %q", got)
	}
}
