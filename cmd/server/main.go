package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"textsummarizer/internal/config"
	"textsummarizer/internal/model"
	"textsummarizer/internal/scheduler"
	"textsummarizer/internal/server"
	"textsummarizer/internal/summarizer"
)

const (
	startupLoadTimeout = 5 * time.Minute
	shutdownTimeout    = 30 * time.Second
	readHeaderTimeout  = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadServer()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err)

		return 1
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	backend, err := newBackend(cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize model backend",
			"error", err,
			"backend", cfg.Backend,
			"modelName", cfg.ModelName)

		return 1
	}

	adapter := model.NewAdapter(model.Config{
		Name:           cfg.ModelName,
		MaxChunkTokens: cfg.MaxChunkTokens,
		Backend:        backend,
		NewTokenizer:   model.TiktokenFactory(cfg.TokenEncoding),
	}, log)

	loadCtx, loadCancel := context.WithTimeout(ctx, startupLoadTimeout)
	if err = adapter.Load(loadCtx); err != nil {
		log.WarnContext(ctx, "Model is not loaded at startup, scheduler will retry",
			"error", err,
			"modelName", cfg.ModelName)
	} else {
		log.InfoContext(ctx, "Model is loaded",
			"modelName", cfg.ModelName,
			"device", backend.Name(),
			"loadSeconds", time.Since(start).Seconds())
	}
	loadCancel()

	sched := scheduler.New(ctx, adapter, cfg.ReloadSpec, cfg.WarmupSpec, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"reloadSpec", cfg.ReloadSpec,
			"warmupSpec", cfg.WarmupSpec)

		return 1
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"reloadSpec", cfg.ReloadSpec,
		"warmupSpec", cfg.WarmupSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	if config.LogLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(summarizer.New(adapter, log), adapter, cfg.MaxTextChars, log)

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", httpServer.Addr,
		"modelName", cfg.ModelName,
		"maxChunkTokens", cfg.MaxChunkTokens)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server failed",
				"error", err,
				"addr", httpServer.Addr)

			return 1
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down server",
			"error", err)
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return 0
}

func newBackend(cfg config.Server, log *slog.Logger) (model.Backend, error) {
	if cfg.Backend == config.BackendOpenAI {
		backend, err := model.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("create openai backend: %w", err)
		}

		return backend, nil
	}

	backend, err := model.NewHuggingFace(cfg.HFBaseURL, cfg.ModelName, cfg.HFToken, nil, log)
	if err != nil {
		return nil, fmt.Errorf("create huggingface backend: %w", err)
	}

	return backend, nil
}
