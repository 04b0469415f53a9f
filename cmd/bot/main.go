package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"textsummarizer/internal/bot"
	"textsummarizer/internal/client"
	"textsummarizer/internal/config"
	"textsummarizer/internal/page"
)

func main() {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadBot()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err,
			"envVar", "TOKEN")

		return
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	api, err := client.New(cfg.APIURL, nil, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize API client",
			"error", err,
			"apiURL", cfg.APIURL)

		return
	}

	health, err := api.Health(ctx)
	if err != nil {
		log.WarnContext(ctx, "Summarizer API is not healthy yet",
			"error", err,
			"apiURL", cfg.APIURL)
	} else {
		log.InfoContext(ctx, "Summarizer API is healthy",
			"apiURL", cfg.APIURL,
			"modelName", health.ModelInfo.ModelName)
	}

	extractor := page.NewExtractor(nil, log)

	botInst, err := bot.New(cfg.Token, api, extractor, cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}
