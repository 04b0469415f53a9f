// Package client talks to the summarizer HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"textsummarizer/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:7860"
	DefaultTimeout = 10 * time.Minute

	maxErrorBodyBytes = 1 << 16
	healthTimeout     = 10 * time.Second
)

type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}

	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Detail)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func New(baseURL string, httpClient *http.Client, log *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}, nil
}

func (c *Client) Health(ctx context.Context) (domain.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var resp domain.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return domain.HealthResponse{}, err
	}

	return resp, nil
}

func (c *Client) Summarize(ctx context.Context, req domain.SummaryRequest) (domain.SummaryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.SummaryResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	var resp domain.SummaryResponse
	if err = c.do(ctx, http.MethodPost, "/summarize", body, &resp); err != nil {
		return domain.SummaryResponse{}, err
	}

	if strings.TrimSpace(resp.Summary) == "" {
		return domain.SummaryResponse{}, errors.New("empty summary in response")
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"method", method,
				"path", path)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return apiErr
	}

	var body domain.ErrorResponse
	if err = json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(raw))

	return apiErr
}
