package domain_test

import (
	"errors"
	"strings"
	"testing"

	"textsummarizer/internal/domain"
)

func validRequest() domain.SummaryRequest {
	req := domain.NewSummaryRequest()
	req.Text = "A sufficiently long piece of text to summarize."

	return req
}

func TestSummaryRequestDefaults(t *testing.T) {
	req := domain.NewSummaryRequest()
	if req.MaxLength != 150 || req.MinLength != 30 {
		t.Fatalf("unexpected defaults: %+v", req)
	}
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	if err := validRequest().Validate(50000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsWhitespaceText(t *testing.T) {
	req := validRequest()
	req.Text = " \n\t "

	if err := req.Validate(0); !errors.Is(err, domain.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestValidateChecksInvertedBoundsBeforeRanges(t *testing.T) {
	req := domain.SummaryRequest{
		Text:      "short but valid input text",
		MaxLength: 150,
		MinLength: 200,
	}

	err := req.Validate(0)
	if !errors.Is(err, domain.ErrInvertedBounds) {
		t.Fatalf("expected ErrInvertedBounds, got %v", err)
	}

	if err.Error() != "min_length must be less than max_length" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestValidateRejectsEqualBounds(t *testing.T) {
	req := validRequest()
	req.MinLength = 50
	req.MaxLength = 50

	if err := req.Validate(0); !errors.Is(err, domain.ErrInvertedBounds) {
		t.Fatalf("expected ErrInvertedBounds, got %v", err)
	}
}

func TestValidateRejectsShortText(t *testing.T) {
	req := validRequest()
	req.Text = "too short"

	if err := req.Validate(0); err == nil {
		t.Fatalf("expected error for short text")
	}
}

func TestValidateCountsRunesNotBytes(t *testing.T) {
	req := validRequest()
	req.Text = strings.Repeat("é", 10)

	if err := req.Validate(10); err != nil {
		t.Fatalf("expected 10 runes to pass, got %v", err)
	}
}

func TestValidateRejectsLongText(t *testing.T) {
	req := validRequest()
	req.Text = strings.Repeat("a", 101)

	if err := req.Validate(100); err == nil {
		t.Fatalf("expected error for text over limit")
	}
}

func TestValidateRejectsOutOfRangeLengths(t *testing.T) {
	req := validRequest()
	req.MaxLength = 501

	if err := req.Validate(0); err == nil {
		t.Fatalf("expected error for max_length above range")
	}

	req = validRequest()
	req.MinLength = 5

	if err := req.Validate(0); err == nil {
		t.Fatalf("expected error for min_length below range")
	}
}

func TestValidateLengths(t *testing.T) {
	if err := domain.ValidateLengths(20, 120); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := domain.ValidateLengths(120, 120); !errors.Is(err, domain.ErrInvertedBounds) {
		t.Fatalf("expected ErrInvertedBounds, got %v", err)
	}

	if err := domain.ValidateLengths(5, 120); err == nil {
		t.Fatalf("expected range error for min_length")
	}

	if err := domain.ValidateLengths(20, 501); err == nil {
		t.Fatalf("expected range error for max_length")
	}
}
