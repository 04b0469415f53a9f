package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"textsummarizer/internal/client"
	"textsummarizer/internal/config"
	"textsummarizer/internal/domain"
)

type cli struct {
	APIURL   string `name:"api-url"   env:"API_URL"   default:"http://localhost:7860" help:"Summarizer service base URL."`
	LogLevel string `name:"log-level" env:"LOG_LEVEL" default:"warn"                  help:"Log level (debug, info, warn, error)."`

	Run    runCmd    `cmd:"" default:"withargs" help:"Summarize text from --text, a file or stdin."`
	Health healthCmd `cmd:"" help:"Show service health and model info."`
}

type app struct {
	ctx    context.Context
	client *client.Client
	out    io.Writer
	in     io.Reader
}

type runCmd struct {
	Text      string `short:"t" help:"Text to summarize."`
	File      string `arg:"" optional:"" help:"File to summarize. Reads stdin when omitted or '-'."`
	MaxLength int    `name:"max-length" default:"150" help:"Maximum summary length in tokens."`
	MinLength int    `name:"min-length" default:"30"  help:"Minimum summary length in tokens."`
	Stats     bool   `default:"true" negatable:"" help:"Print compression statistics."`
}

func (r *runCmd) Run(a *app) error {
	text, err := r.input(a.in)
	if err != nil {
		return err
	}

	req := domain.SummaryRequest{
		Text:      text,
		MaxLength: r.MaxLength,
		MinLength: r.MinLength,
	}

	if err = domain.ValidateLengths(req.MinLength, req.MaxLength); err != nil {
		return err
	}

	resp, err := a.client.Summarize(a.ctx, req)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	if _, err = fmt.Fprintln(a.out, resp.Summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if r.Stats {
		if _, err = fmt.Fprintf(a.out, "\n%s\n", client.NewStats(resp)); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}

	return nil
}

func (r *runCmd) input(stdin io.Reader) (string, error) {
	if strings.TrimSpace(r.Text) != "" {
		return r.Text, nil
	}

	var (
		data []byte
		err  error
	)

	if r.File == "" || r.File == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(r.File)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no input text")
	}

	return string(data), nil
}

type healthCmd struct{}

func (healthCmd) Run(a *app) error {
	health, err := a.client.Health(a.ctx)
	if err != nil {
		return fmt.Errorf("check health: %w", err)
	}

	info := health.ModelInfo

	_, err = fmt.Fprintf(a.out, "status: %s\nmodel: %s\ndevice: %s\nmax chunk length: %d\nloaded: %t\n",
		health.Status, info.ModelName, info.Device, info.MaxChunkLength, info.ModelLoaded)
	if err != nil {
		return fmt.Errorf("write health: %w", err)
	}

	return nil
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("summarize"),
		kong.Description("Command line client for the text summarization service."),
		kong.UsageOnError(),
	)

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel(c.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := client.New(c.APIURL, nil, log)
	kctx.FatalIfErrorf(err)

	err = kctx.Run(&app{
		ctx:    ctx,
		client: api,
		out:    os.Stdout,
		in:     os.Stdin,
	})
	kctx.FatalIfErrorf(err)
}
