// Package summarizer turns arbitrarily long text into one abstractive summary
// by chunking it to the model's token budget and summarizing chunk by chunk.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"textsummarizer/internal/chunker"
	"textsummarizer/internal/model"
)

const (
	NoTextMessage      = "No text provided for summarization."
	NoSummaryMessage   = "Unable to generate summary."
	ChunkErrorPrefix   = "Error summarizing this section: "
	condenseLengthRate = 2
)

var (
	ErrModelNotLoaded      = errors.New("summarizer model not loaded")
	ErrSummarizationFailed = errors.New("summarization failed")
	ErrNoSummary           = errors.New("no summary generated")
)

// Model is the part of the model adapter the orchestrator depends on.
type Model interface {
	Loaded() bool
	Name() string
	MaxChunkTokens() int
	CountTokens(text string) int
	Generate(ctx context.Context, input string, params model.Params) (string, error)
}

type Result struct {
	Summary      string
	Chunks       int
	FailedChunks int
	// Condensed is set when the joined chunk summaries were summarized again.
	Condensed bool
}

type Service struct {
	model Model
	log   *slog.Logger
}

func New(m Model, log *slog.Logger) *Service {
	return &Service{model: m, log: log}
}

func (s *Service) Ready() bool {
	return s.model.Loaded()
}

func (s *Service) ModelName() string {
	return s.model.Name()
}

// Summarize produces one summary for text. A failing chunk is replaced by an
// error note and does not abort the request; the returned error is set only
// when no usable summary exists.
func (s *Service) Summarize(
	ctx context.Context,
	text string,
	minLength int,
	maxLength int,
) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Summary: NoTextMessage}, nil
	}

	if !s.model.Loaded() {
		return Result{}, ErrModelNotLoaded
	}

	budget := s.model.MaxChunkTokens()
	chunks := chunker.Split(text, budget, s.model)

	s.log.InfoContext(ctx, "Text is split into chunks",
		"chunks", len(chunks),
		"textLength", len(text),
		"maxChunkLength", budget)

	params := model.NewParams(minLength, maxLength)
	summaries := make([]string, 0, len(chunks))
	var errs []error

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}

		s.log.DebugContext(ctx, "Summarizing chunk",
			"chunk", i+1,
			"chunks", len(chunks))

		summary, err := s.model.Generate(ctx, chunk, params)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to summarize chunk",
				"error", err,
				"chunk", i+1,
				"chunks", len(chunks))

			errs = append(errs, err)
			summary = ChunkErrorPrefix + err.Error()
		}

		if summary == "" {
			continue
		}
		summaries = append(summaries, summary)
	}

	result := Result{Chunks: len(chunks), FailedChunks: len(errs)}

	if len(summaries) == 0 {
		result.Summary = NoSummaryMessage
		return result, ErrNoSummary
	}

	if len(errs) == len(chunks) {
		result.Summary = summaries[0]
		return result, fmt.Errorf("%w: %w", ErrSummarizationFailed, errors.Join(errs...))
	}

	result.Summary = strings.Join(summaries, " ")

	if len(summaries) > 1 {
		if tokens := s.model.CountTokens(result.Summary); tokens > budget {
			s.log.InfoContext(ctx, "Combined summary is too long, condensing",
				"tokens", tokens,
				"maxChunkLength", budget)

			condensed, err := s.model.Generate(ctx, result.Summary, condenseParams(minLength, maxLength))
			if err != nil {
				result.Summary = ChunkErrorPrefix + err.Error()
				return result, fmt.Errorf("%w: condense: %w", ErrSummarizationFailed, err)
			}

			if condensed == "" {
				result.Summary = NoSummaryMessage
				return result, ErrNoSummary
			}

			result.Summary = condensed
			result.Condensed = true
		}
	}

	return result, nil
}

// condenseParams doubles the maximum for the second pass and keeps the minimum
// strictly below it.
func condenseParams(minLength int, maxLength int) model.Params {
	maxLength *= condenseLengthRate
	if minLength >= maxLength {
		minLength = max(maxLength-1, 0)
	}

	return model.NewParams(minLength, maxLength)
}
