package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"textsummarizer/internal/client"
	"textsummarizer/internal/domain"
)

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/summarize" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req domain.SummaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}

		if req.MaxLength != 120 || req.MinLength != 20 {
			t.Errorf("unexpected bounds: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(domain.SummaryResponse{
			Summary:        "Summary.",
			OriginalLength: 200,
			SummaryLength:  8,
			ModelUsed:      "facebook/bart-large-cnn",
		})
	}))
	defer srv.Close()

	c, err := client.New(srv.URL+"/", srv.Client(), slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Summarize(context.Background(), domain.SummaryRequest{
		Text:      "Some long text.",
		MaxLength: 120,
		MinLength: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Summary != "Summary." || resp.ModelUsed != "facebook/bart-large-cnn" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSummarizeReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"min_length must be less than max_length"}`))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, srv.Client(), slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Summarize(context.Background(), domain.SummaryRequest{Text: "x", MaxLength: 30, MinLength: 40})

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}

	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Detail != "min_length must be less than max_length" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestHealthReturnsPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, srv.Client(), slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.Health(context.Background())

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "bad gateway" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		_, _ = w.Write([]byte(`{"status":"healthy","model_info":{"model_name":"m","device":"d","max_chunk_length":1024,"model_loaded":true}}`))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL, srv.Client(), slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if health.Status != "healthy" || !health.ModelInfo.ModelLoaded {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	if _, err := client.New("::not a url", nil, slog.Default()); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}

func TestNewStats(t *testing.T) {
	stats := client.NewStats(domain.SummaryResponse{OriginalLength: 200, SummaryLength: 50, ModelUsed: "m"})

	if stats.Compression != 75 {
		t.Fatalf("unexpected compression: %v", stats.Compression)
	}

	if got := stats.String(); got != "original: 200 chars, summary: 50 chars, compression: 75.0%, model: m" {
		t.Fatalf("unexpected string: %q", got)
	}

	if empty := client.NewStats(domain.SummaryResponse{}); empty.Compression != 0 {
		t.Fatalf("expected zero compression for empty original")
	}
}
