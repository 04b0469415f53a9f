package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxLength = 150
	DefaultMinLength = 30

	MinTextChars  = 10
	MaxLengthLow  = 30
	MaxLengthHigh = 500
	MinLengthLow  = 10
	MinLengthHigh = 100
)

//nolint:staticcheck // Messages are part of the HTTP contract.
var (
	ErrEmptyText      = errors.New("Text cannot be empty or contain only whitespace")
	ErrInvertedBounds = errors.New("min_length must be less than max_length")
)

type SummaryRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
}

// NewSummaryRequest returns a request carrying the default length bounds so
// that JSON decoding only overrides the fields present in the body.
func NewSummaryRequest() SummaryRequest {
	return SummaryRequest{
		MaxLength: DefaultMaxLength,
		MinLength: DefaultMinLength,
	}
}

// Validate checks the request in a fixed order and reports the first problem.
// maxTextChars <= 0 disables the upper bound on text length.
func (r SummaryRequest) Validate(maxTextChars int) error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}

	if r.MinLength >= r.MaxLength {
		return ErrInvertedBounds
	}

	chars := utf8.RuneCountInString(r.Text)
	if chars < MinTextChars {
		return fmt.Errorf("text must be at least %d characters long", MinTextChars)
	}

	if maxTextChars > 0 && chars > maxTextChars {
		return fmt.Errorf("text must be at most %d characters long (got %d)", maxTextChars, chars)
	}

	return validateRanges(r.MinLength, r.MaxLength)
}

// ValidateLengths checks summary length bounds on their own, for callers
// that collect them separately from the text.
func ValidateLengths(minLength int, maxLength int) error {
	if minLength >= maxLength {
		return ErrInvertedBounds
	}

	return validateRanges(minLength, maxLength)
}

func validateRanges(minLength int, maxLength int) error {
	if maxLength < MaxLengthLow || maxLength > MaxLengthHigh {
		return fmt.Errorf("max_length must be between %d and %d", MaxLengthLow, MaxLengthHigh)
	}

	if minLength < MinLengthLow || minLength > MinLengthHigh {
		return fmt.Errorf("min_length must be between %d and %d", MinLengthLow, MinLengthHigh)
	}

	return nil
}

type SummaryResponse struct {
	Summary        string `json:"summary"`
	OriginalLength int    `json:"original_length"`
	SummaryLength  int    `json:"summary_length"`
	ModelUsed      string `json:"model_used"`
}

type ModelInfo struct {
	ModelName      string `json:"model_name"`
	Device         string `json:"device"`
	MaxChunkLength int    `json:"max_chunk_length"`
	ModelLoaded    bool   `json:"model_loaded"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	ModelInfo ModelInfo `json:"model_info"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
