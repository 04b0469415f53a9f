package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/server"
	"textsummarizer/internal/summarizer"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubSummarizer struct {
	result summarizer.Result
	err    error
	calls  int
	min    int
	max    int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, minLength int, maxLength int) (summarizer.Result, error) {
	s.calls++
	s.min = minLength
	s.max = maxLength

	return s.result, s.err
}

type stubModel struct {
	loaded bool
}

func (m *stubModel) Loaded() bool { return m.loaded }
func (m *stubModel) Name() string { return "facebook/bart-large-cnn" }

func (m *stubModel) Info() domain.ModelInfo {
	return domain.ModelInfo{
		ModelName:      m.Name(),
		Device:         "huggingface-inference",
		MaxChunkLength: 1024,
		ModelLoaded:    m.loaded,
	}
}

func newServer(s *stubSummarizer, loaded bool) *server.Server {
	return server.New(s, &stubModel{loaded: loaded}, 50000, slog.Default())
}

func do(t *testing.T, srv *server.Server, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp domain.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}

	return resp.Detail
}

func TestSummarizeReturnsSummary(t *testing.T) {
	s := &stubSummarizer{result: summarizer.Result{Summary: "Short.", Chunks: 1}}
	srv := newServer(s, true)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"Go is a programming language designed at Google.","max_length":120,"min_length":20}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	want := domain.SummaryResponse{
		Summary:        "Short.",
		OriginalLength: 48,
		SummaryLength:  6,
		ModelUsed:      "facebook/bart-large-cnn",
	}
	if resp != want {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if s.min != 20 || s.max != 120 {
		t.Fatalf("unexpected bounds passed: min=%d max=%d", s.min, s.max)
	}
}

func TestSummarizeAppliesDefaultBounds(t *testing.T) {
	s := &stubSummarizer{result: summarizer.Result{Summary: "Short."}}
	srv := newServer(s, true)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"short but valid input text"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	if s.min != domain.DefaultMinLength || s.max != domain.DefaultMaxLength {
		t.Fatalf("expected default bounds, got min=%d max=%d", s.min, s.max)
	}
}

func TestSummarizeRejectsInvertedBounds(t *testing.T) {
	s := &stubSummarizer{}
	srv := newServer(s, true)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"short but valid input text","max_length":150,"min_length":200}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if got := detail(t, rec); got != "min_length must be less than max_length" {
		t.Fatalf("unexpected detail: %q", got)
	}

	if s.calls != 0 {
		t.Fatalf("expected no summarizer calls, got %d", s.calls)
	}
}

func TestSummarizeRejectsWhitespaceText(t *testing.T) {
	s := &stubSummarizer{}
	srv := newServer(s, true)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"   \n  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if got := detail(t, rec); got != "Text cannot be empty or contain only whitespace" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestSummarizeRejectsMalformedJSON(t *testing.T) {
	s := &stubSummarizer{}
	srv := newServer(s, true)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if got := detail(t, rec); !strings.HasPrefix(got, "Invalid request body") {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestSummarizeRejectsOutOfRangeLength(t *testing.T) {
	srv := newServer(&stubSummarizer{}, true)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"short but valid input text","max_length":900,"min_length":20}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestSummarizeModelNotLoaded(t *testing.T) {
	s := &stubSummarizer{}
	srv := newServer(s, false)

	rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"short but valid input text"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if s.calls != 0 {
		t.Fatalf("expected no summarizer calls, got %d", s.calls)
	}
}

func TestSummarizeMapsFailures(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"not loaded": {err: summarizer.ErrModelNotLoaded, status: http.StatusServiceUnavailable},
		"all failed": {err: summarizer.ErrSummarizationFailed, status: http.StatusInternalServerError},
		"no summary": {err: summarizer.ErrNoSummary, status: http.StatusInternalServerError},
		"unexpected": {err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := &stubSummarizer{
				result: summarizer.Result{Summary: summarizer.NoSummaryMessage},
				err:    tc.err,
			}
			srv := newServer(s, true)

			rec := do(t, srv, http.MethodPost, "/summarize", `{"text":"short but valid input text"}`)
			if rec.Code != tc.status {
				t.Fatalf("unexpected status %d", rec.Code)
			}

			if detail(t, rec) == "" {
				t.Fatalf("expected error detail")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := newServer(&stubSummarizer{}, true)

	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp domain.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Status != "healthy" || !resp.ModelInfo.ModelLoaded || resp.ModelInfo.MaxChunkLength != 1024 {
		t.Fatalf("unexpected health response: %+v", resp)
	}
}

func TestHealthModelNotLoaded(t *testing.T) {
	srv := newServer(&stubSummarizer{}, false)

	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if got := detail(t, rec); got != "Service unhealthy: Summarizer model not loaded" {
		t.Fatalf("unexpected detail: %q", got)
	}
}

func TestRoot(t *testing.T) {
	srv := newServer(&stubSummarizer{}, false)

	rec := do(t, srv, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp["version"] != server.ServiceVersion {
		t.Fatalf("unexpected version: %v", resp["version"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newServer(&stubSummarizer{}, true)

	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(&stubSummarizer{}, true)

	req := httptest.NewRequest(http.MethodOptions, "/summarize", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin")
	}

	if rec.Header().Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Fatalf("unexpected allowed headers: %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}
}
