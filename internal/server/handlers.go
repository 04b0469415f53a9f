package server

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/summarizer"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Text Summarizer API",
		"version":     ServiceVersion,
		"description": "Abstractive summarization of long text with a sequence-to-sequence model",
		"model":       s.model.Name(),
		"endpoints": gin.H{
			"POST /summarize": "Summarize text with customizable parameters",
			"GET /health":     "Check API health and model status",
		},
		"example_usage": gin.H{
			"url":    "/summarize",
			"method": http.MethodPost,
			"body": gin.H{
				"text":       "Your text to summarize...",
				"max_length": domain.DefaultMaxLength,
				"min_length": domain.DefaultMinLength,
			},
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	if !s.model.Loaded() {
		s.log.WarnContext(c.Request.Context(), "Health check failed",
			"requestID", c.GetString(requestIDKey),
			"error", summarizer.ErrModelNotLoaded)

		abortWithDetail(c, http.StatusServiceUnavailable, unhealthyDetail)
		return
	}

	c.JSON(http.StatusOK, domain.HealthResponse{
		Status:    "healthy",
		ModelInfo: s.model.Info(),
	})
}

func (s *Server) handleSummarize(c *gin.Context) {
	ctx := c.Request.Context()
	requestID := c.GetString(requestIDKey)

	req := domain.NewSummaryRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if err := req.Validate(s.maxTextChars); err != nil {
		abortWithDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	if !s.model.Loaded() {
		s.log.ErrorContext(ctx, "Summarizer is not loaded",
			"requestID", requestID)

		abortWithDetail(c, http.StatusServiceUnavailable, notLoadedDetail)
		return
	}

	originalLength := utf8.RuneCountInString(req.Text)

	s.log.InfoContext(ctx, "Summarization request is received",
		"requestID", requestID,
		"textLength", originalLength,
		"maxLength", req.MaxLength,
		"minLength", req.MinLength)

	result, err := s.summarizer.Summarize(ctx, req.Text, req.MinLength, req.MaxLength)
	if err != nil {
		s.log.ErrorContext(ctx, "Summarization failed",
			"error", err,
			"requestID", requestID,
			"chunks", result.Chunks,
			"failedChunks", result.FailedChunks)

		status, detail := errorDetail(err, result)
		abortWithDetail(c, status, detail)

		return
	}

	summaryLength := utf8.RuneCountInString(result.Summary)

	s.log.InfoContext(ctx, "Summarization is completed",
		"requestID", requestID,
		"summaryLength", summaryLength,
		"chunks", result.Chunks,
		"failedChunks", result.FailedChunks,
		"condensed", result.Condensed)

	c.JSON(http.StatusOK, domain.SummaryResponse{
		Summary:        result.Summary,
		OriginalLength: originalLength,
		SummaryLength:  summaryLength,
		ModelUsed:      s.model.Name(),
	})
}

func errorDetail(err error, result summarizer.Result) (int, string) {
	switch {
	case errors.Is(err, summarizer.ErrModelNotLoaded):
		return http.StatusServiceUnavailable, notLoadedDetail
	case errors.Is(err, summarizer.ErrSummarizationFailed), errors.Is(err, summarizer.ErrNoSummary):
		return http.StatusInternalServerError, "Summarization failed: " + result.Summary
	default:
		return http.StatusInternalServerError, fmt.Sprintf(internalErrFormat, err)
	}
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, domain.ErrorResponse{Detail: detail})
}
