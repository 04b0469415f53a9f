package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultReloadSpec = "* * * * *"
	DefaultWarmupSpec = "*/10 * * * *"
	Timezone          = "UTC"

	TimezoneOffsetSeconds = 0

	reloadTimeout = 2 * time.Minute
	warmupTimeout = time.Minute
)

// Model is what the scheduler keeps alive.
type Model interface {
	Loaded() bool
	Load(ctx context.Context) error
	Warmup(ctx context.Context) error
}

type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	model      Model
	reloadSpec string
	warmupSpec string
	log        *slog.Logger
}

func New(ctx context.Context, model Model, reloadSpec string, warmupSpec string, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	if reloadSpec == "" {
		reloadSpec = DefaultReloadSpec
	}

	if warmupSpec == "" {
		warmupSpec = DefaultWarmupSpec
	}

	return &Scheduler{
		ctx:        ctx,
		cron:       c,
		model:      model,
		reloadSpec: reloadSpec,
		warmupSpec: warmupSpec,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.reloadSpec, s.reloadModel); err != nil {
		return fmt.Errorf("add reload job (spec = %q): %w", s.reloadSpec, err)
	}

	if _, err := s.cron.AddFunc(s.warmupSpec, s.warmupModel); err != nil {
		return fmt.Errorf("add warmup job (spec = %q): %w", s.warmupSpec, err)
	}

	s.cron.Start()

	return nil
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) reloadModel() {
	if s.model.Loaded() {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, reloadTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	}

	if err := s.model.Load(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to reload model",
			"error", err,
			"spec", s.reloadSpec)
		return
	}

	s.log.InfoContext(ctx, "Model is reloaded",
		"spec", s.reloadSpec)
}

func (s *Scheduler) warmupModel() {
	if !s.model.Loaded() {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, warmupTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	}

	start := time.Now()

	if err := s.model.Warmup(ctx); err != nil {
		s.log.WarnContext(ctx, "Failed to warm up model",
			"error", err,
			"spec", s.warmupSpec)
		return
	}

	s.log.DebugContext(ctx, "Model is warmed up",
		"latencyMs", time.Since(start).Milliseconds())
}
