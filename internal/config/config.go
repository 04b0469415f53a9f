package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
)

type Server struct {
	ModelName      string `env:"MODEL_NAME"       envDefault:"facebook/bart-large-cnn"`
	Port           int    `env:"PORT"             envDefault:"7860"`
	Backend        string `env:"MODEL_BACKEND"    envDefault:"huggingface"`
	HFToken        string `env:"HF_TOKEN"`
	HFBaseURL      string `env:"HF_INFERENCE_URL" envDefault:"https://api-inference.huggingface.co"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	TokenEncoding  string `env:"TOKEN_ENCODING"   envDefault:"cl100k_base"`
	MaxChunkTokens int    `env:"MAX_CHUNK_LENGTH" envDefault:"1024"`
	MaxTextChars   int    `env:"MAX_TEXT_LENGTH"  envDefault:"50000"`
	ReloadSpec     string `env:"RELOAD_SPEC"      envDefault:"* * * * *"`
	WarmupSpec     string `env:"WARMUP_SPEC"      envDefault:"*/10 * * * *"`
	LogLevel       string `env:"LOG_LEVEL"        envDefault:"info"`
}

type Bot struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	APIURL       string  `env:"API_URL"                 envDefault:"http://localhost:7860"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	LogLevel     string  `env:"LOG_LEVEL"               envDefault:"info"`
}

func LoadServer() (Server, error) {
	return parseServer(env.Options{})
}

func parseServer(opts env.Options) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.ModelName = strings.TrimSpace(cfg.ModelName)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.validate(); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

func (c Server) validate() error {
	var errs []error

	if c.ModelName == "" {
		errs = append(errs, errors.New("MODEL_NAME is empty"))
	}

	switch c.Backend {
	case BackendHuggingFace:
	case BackendOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for openai backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MODEL_BACKEND %q", c.Backend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	if c.MaxChunkTokens <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CHUNK_LENGTH must be positive: %d", c.MaxChunkTokens))
	}

	if c.MaxTextChars <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TEXT_LENGTH must be positive: %d", c.MaxTextChars))
	}

	return errors.Join(errs...)
}

func LoadBot() (Bot, error) {
	return parseBot(env.Options{})
}

func parseBot(opts env.Options) (Bot, error) {
	var cfg Bot
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Bot{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	return cfg, nil
}

// LogLevel maps LOG_LEVEL values onto slog levels, falling back to info.
func LogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}

	return level
}
