// Package server exposes the summarizer over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/summarizer"
)

const (
	ServiceVersion = "1.0.0"

	unhealthyDetail   = "Service unhealthy: Summarizer model not loaded"
	notLoadedDetail   = "Summarizer model not loaded. Please try again later."
	requestIDHeader   = "X-Request-ID"
	requestIDKey      = "requestID"
	internalErrFormat = "Internal server error: %v"
)

type Summarizer interface {
	Summarize(ctx context.Context, text string, minLength int, maxLength int) (summarizer.Result, error)
}

type Model interface {
	Loaded() bool
	Name() string
	Info() domain.ModelInfo
}

type Server struct {
	engine       *gin.Engine
	summarizer   Summarizer
	model        Model
	maxTextChars int
	log          *slog.Logger
}

func New(s Summarizer, m Model, maxTextChars int, log *slog.Logger) *Server {
	srv := &Server{
		summarizer:   s,
		model:        m,
		maxTextChars: maxTextChars,
		log:          log,
	}

	r := gin.New()

	r.Use(requestIDMiddleware())
	r.Use(gin.CustomRecovery(srv.recover))
	r.Use(corsMiddleware())
	r.Use(loggingMiddleware(log))

	r.GET("/", srv.handleRoot)
	r.GET("/health", srv.handleHealth)
	r.POST("/summarize", srv.handleSummarize)

	srv.engine = r

	return srv
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.log.ErrorContext(c.Request.Context(), "Recovered from panic",
		"error", recovered,
		"requestID", c.GetString(requestIDKey),
		"path", c.Request.URL.Path)

	c.AbortWithStatusJSON(http.StatusInternalServerError, domain.ErrorResponse{
		Detail: fmt.Sprintf(internalErrFormat, recovered),
	})
}
