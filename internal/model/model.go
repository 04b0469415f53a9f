// Package model wraps a tokenizer and a sequence-to-sequence generation
// backend behind a single adapter that is loaded once per process.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"textsummarizer/internal/domain"
)

const (
	DefaultNumBeams      = 4
	DefaultLengthPenalty = 2.0

	probeText      = "This is a brief health check for the summarization model."
	probeMaxLength = 20
	probeMinLength = 5
)

var ErrNotLoaded = errors.New("model is not loaded")

// Params are the decoding parameters forwarded to the backend.
type Params struct {
	MaxLength     int
	MinLength     int
	NumBeams      int
	LengthPenalty float64
	EarlyStopping bool
	DoSample      bool
}

// NewParams returns deterministic beam-search parameters for the given bounds.
func NewParams(minLength, maxLength int) Params {
	return Params{
		MaxLength:     maxLength,
		MinLength:     minLength,
		NumBeams:      DefaultNumBeams,
		LengthPenalty: DefaultLengthPenalty,
		EarlyStopping: true,
		DoSample:      false,
	}
}

// Tokenizer turns text into model token ids and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
}

// Backend runs generation for a single, already truncated input.
type Backend interface {
	Name() string
	Generate(ctx context.Context, input string, params Params) (string, error)
}

type Config struct {
	Name           string
	MaxChunkTokens int
	Backend        Backend
	NewTokenizer   func() (Tokenizer, error)
}

type loadedState struct {
	tokenizer Tokenizer
}

type Adapter struct {
	name           string
	maxChunkTokens int
	backend        Backend
	newTokenizer   func() (Tokenizer, error)

	loadMu sync.Mutex
	state  atomic.Pointer[loadedState]

	log *slog.Logger
}

func NewAdapter(cfg Config, log *slog.Logger) *Adapter {
	return &Adapter{
		name:           cfg.Name,
		maxChunkTokens: cfg.MaxChunkTokens,
		backend:        cfg.Backend,
		newTokenizer:   cfg.NewTokenizer,
		log:            log,
	}
}

// Load builds the tokenizer and probes the backend. It is a no-op once the
// adapter is loaded and may be retried after a failure.
func (a *Adapter) Load(ctx context.Context) error {
	a.loadMu.Lock()
	defer a.loadMu.Unlock()

	if a.state.Load() != nil {
		return nil
	}

	a.log.InfoContext(ctx, "Loading model",
		"modelName", a.name,
		"device", a.backend.Name())

	tokenizer, err := a.newTokenizer()
	if err != nil {
		return fmt.Errorf("create tokenizer: %w", err)
	}

	if _, err = a.backend.Generate(ctx, probeText, NewParams(probeMinLength, probeMaxLength)); err != nil {
		return fmt.Errorf("probe backend: %w", err)
	}

	a.state.Store(&loadedState{tokenizer: tokenizer})

	a.log.InfoContext(ctx, "Model is loaded",
		"modelName", a.name,
		"device", a.backend.Name(),
		"maxChunkLength", a.maxChunkTokens)

	return nil
}

func (a *Adapter) Loaded() bool {
	return a.state.Load() != nil
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) MaxChunkTokens() int {
	return a.maxChunkTokens
}

func (a *Adapter) Info() domain.ModelInfo {
	return domain.ModelInfo{
		ModelName:      a.name,
		Device:         a.backend.Name(),
		MaxChunkLength: a.maxChunkTokens,
		ModelLoaded:    a.Loaded(),
	}
}

// Encode returns nil until the adapter is loaded.
func (a *Adapter) Encode(text string) []int {
	st := a.state.Load()
	if st == nil {
		return nil
	}

	return st.tokenizer.Encode(text)
}

func (a *Adapter) Decode(ids []int) string {
	st := a.state.Load()
	if st == nil {
		return ""
	}

	return st.tokenizer.Decode(ids)
}

func (a *Adapter) CountTokens(text string) int {
	return len(a.Encode(text))
}

// Generate truncates input to the chunk budget and asks the backend for a
// summary.
func (a *Adapter) Generate(ctx context.Context, input string, params Params) (string, error) {
	st := a.state.Load()
	if st == nil {
		return "", ErrNotLoaded
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if a.maxChunkTokens > 0 {
		ids := st.tokenizer.Encode(input)
		if len(ids) > a.maxChunkTokens {
			a.log.DebugContext(ctx, "Input is truncated to chunk budget",
				"tokens", len(ids),
				"maxChunkLength", a.maxChunkTokens)

			input = st.tokenizer.Decode(ids[:a.maxChunkTokens])
		}
	}

	output, err := a.backend.Generate(ctx, input, params)
	if err != nil {
		return "", fmt.Errorf("generate (backend = %s): %w", a.backend.Name(), err)
	}

	return strings.TrimSpace(output), nil
}

// Warmup sends a short generation request so that hosted models stay hot.
func (a *Adapter) Warmup(ctx context.Context) error {
	_, err := a.Generate(ctx, probeText, NewParams(probeMinLength, probeMaxLength))
	return err
}
