package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	OpenAIDevice = "openai-responses"

	openAIInstructions = `Summarize the text provided by the user.

Rules:
- Abstractive summary in the same language as the input.
- At least %d and at most %d tokens.
- Keep the core ideas and critical context (names, dates, numbers).
- Neutral tone, no lists, no preamble.
- Output only the summary text.`
)

// OpenAI generates summaries through the Responses API. Beam search settings
// have no equivalent there; only the length bounds are forwarded.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey string, baseURL string, modelName string) (*OpenAI, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return nil, errors.New("model name is empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  modelName,
	}, nil
}

func (o *OpenAI) Name() string {
	return OpenAIDevice
}

func (o *OpenAI) Generate(ctx context.Context, input string, params Params) (string, error) {
	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(int64(params.MaxLength)),
		Instructions:    openai.String(fmt.Sprintf(openAIInstructions, params.MinLength, params.MaxLength)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(input),
		},
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	summary := strings.TrimSpace(resp.OutputText())

	if resp.Status == "incomplete" {
		// Hitting max_length is the expected way for a summary to end early.
		if resp.IncompleteDetails.Reason == "max_output_tokens" && summary != "" {
			return summary, nil
		}

		return "", fmt.Errorf(
			"response is incomplete (reason = %s, maxOutputTokens = %d)",
			resp.IncompleteDetails.Reason,
			params.MaxLength,
		)
	}

	if summary == "" {
		return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
	}

	return summary, nil
}
