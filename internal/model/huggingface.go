package model

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
)

const (
	HuggingFaceDevice          = "huggingface-inference"
	DefaultHuggingFaceBaseURL  = "https://api-inference.huggingface.co"
	huggingFaceMaxErrorBodyLen = 4096
)

// HuggingFace calls a hosted text2text/summarization pipeline; beam search
// runs on the inference server.
type HuggingFace struct {
	endpoint string
	token    string
	client   *http.Client
	log      *slog.Logger
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
	Options    huggingFaceOptions    `json:"options"`
}

type huggingFaceParameters struct {
	MaxLength     int     `json:"max_length"`
	MinLength     int     `json:"min_length"`
	LengthPenalty float64 `json:"length_penalty"`
	NumBeams      int     `json:"num_beams"`
	EarlyStopping bool    `json:"early_stopping"`
	DoSample      bool    `json:"do_sample"`
}

type huggingFaceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type huggingFaceOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

type huggingFaceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// NewHuggingFace builds a backend for {baseURL}/models/{modelName}. client may
// be nil; the default client applies no timeout.
func NewHuggingFace(
	baseURL string,
	modelName string,
	token string,
	client *http.Client,
	log *slog.Logger,
) (*HuggingFace, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}

	modelName = strings.Trim(strings.TrimSpace(modelName), "/")
	if modelName == "" {
		return nil, errors.New("model name is empty")
	}

	endpoint, err := url.JoinPath(baseURL, "models", modelName)
	if err != nil {
		return nil, fmt.Errorf("join endpoint URL: %w", err)
	}

	if client == nil {
		client = &http.Client{}
	}

	return &HuggingFace{
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
		client:   client,
		log:      log,
	}, nil
}

func (h *HuggingFace) Name() string {
	return HuggingFaceDevice
}

func (h *HuggingFace) Generate(ctx context.Context, input string, params Params) (string, error) {
	body, err := json.Marshal(huggingFaceRequest{
		Inputs: input,
		Parameters: huggingFaceParameters{
			MaxLength:     params.MaxLength,
			MinLength:     params.MinLength,
			LengthPenalty: params.LengthPenalty,
			NumBeams:      params.NumBeams,
			EarlyStopping: params.EarlyStopping,
			DoSample:      params.DoSample,
		},
		Options: huggingFaceOptions{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			h.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"endpoint", h.endpoint,
				"operation", "Generate")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", h.statusError(resp)
	}

	var outputs []huggingFaceOutput
	if err = json.NewDecoder(resp.Body).Decode(&outputs); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, output := range outputs {
		if text := strings.TrimSpace(output.SummaryText); text != "" {
			return text, nil
		}

		if text := strings.TrimSpace(output.GeneratedText); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("output text is missing (outputs = %d)", len(outputs))
}

func (h *HuggingFace) statusError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, huggingFaceMaxErrorBodyLen))
	if err != nil {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiErr huggingFaceError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		if apiErr.EstimatedTime > 0 {
			return fmt.Errorf("unexpected status: %d: %s (estimated time = %.0fs)",
				resp.StatusCode, apiErr.Error, apiErr.EstimatedTime)
		}

		return fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, apiErr.Error)
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, text)
	}

	return fmt.Errorf("unexpected status: %d", resp.StatusCode)
}
