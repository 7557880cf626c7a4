package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/mimic/internal/api"
	"github.com/MikeSquared-Agency/mimic/internal/config"
	"github.com/MikeSquared-Agency/mimic/internal/corpus"
	"github.com/MikeSquared-Agency/mimic/internal/events"
	"github.com/MikeSquared-Agency/mimic/internal/fireworks"
	"github.com/MikeSquared-Agency/mimic/internal/runner"
	"github.com/MikeSquared-Agency/mimic/internal/store"
	"github.com/MikeSquared-Agency/mimic/internal/tokenizer"
	"github.com/MikeSquared-Agency/mimic/internal/transcript"
)

const usage = `usage: mimic <command>

commands:
  format   build the fine-tuning corpus from exported chats
  chat     talk to the fine-tuned persona model interactively
  serve    run the HTTP status/chat API
`

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "format":
		runFormat(ctx, cfg)
	case "chat":
		runChat(ctx, cfg)
	case "serve":
		runServe(ctx, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runFormat(ctx context.Context, cfg config.Config) {
	counter, err := newCounter(cfg.Encoding)
	if err != nil {
		slog.Error("failed to load tokenizer", "encoding", cfg.Encoding, "error", err)
		os.Exit(1)
	}

	var st *store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer st.Close()
		slog.Info("database connected")
	}

	var ev *events.Publisher
	if cfg.NatsURL != "" {
		ev, err = events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer ev.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	run := runner.New(runner.Config{
		DataDir:   cfg.DataDir,
		OutputDir: cfg.OutputDir,
		MaxTokens: cfg.MaxContextLength,
		Filters:   append(transcript.DefaultFilters(), cfg.ExtraFilters...),
		SenderMap: cfg.SenderMap,
	}, counter, st, ev, slog.Default())

	report, err := run.Run(ctx)
	if err != nil {
		slog.Error("corpus build failed", "error", err)
		os.Exit(1)
	}
	fmt.Print(report.Summary())
}

func runChat(ctx context.Context, cfg config.Config) {
	client := chatClient(cfg)
	session := fireworks.NewSession(cfg.ChatName, cfg.SenderName, cfg.RespondAs, cfg.MaxReplyTokens)

	fmt.Printf("chatting with %s (ctrl-d or \"exit\" to quit)\n", cfg.RespondAs)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", cfg.SenderName)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := session.Chat(ctx, client, line)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("chat failed", "error", err)
			continue
		}
		fmt.Printf("%s> %s\n", cfg.RespondAs, reply)
	}
	fmt.Println()
}

func runServe(ctx context.Context, cfg config.Config) {
	var client *fireworks.Client
	if cfg.FireworksAPIKey != "" && cfg.FireworksModel != "" {
		client = fireworks.NewClient(cfg.FireworksAPIKey, cfg.FireworksModel)
		slog.Info("fireworks client ready", "model", cfg.FireworksModel)
	} else {
		slog.Warn("fireworks not configured, chat endpoint disabled")
	}

	srv := api.NewServer(cfg.Port, client, cfg.ChatName, cfg.SenderName, cfg.RespondAs, cfg.MaxReplyTokens)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("mimic ready", "port", cfg.Port)
	<-ctx.Done()
	slog.Info("mimic stopped")
}

func chatClient(cfg config.Config) *fireworks.Client {
	for _, missing := range []struct{ name, value string }{
		{"FIREWORKS_API_KEY", cfg.FireworksAPIKey},
		{"MIMIC_MODEL", cfg.FireworksModel},
		{"MIMIC_SENDER_NAME", cfg.SenderName},
		{"MIMIC_RESPOND_AS", cfg.RespondAs},
	} {
		if missing.value == "" {
			slog.Error(missing.name + " is required")
			os.Exit(1)
		}
	}
	return fireworks.NewClient(cfg.FireworksAPIKey, cfg.FireworksModel)
}

// newCounter picks the token counter: a real BPE encoding by default, or the
// chars/4 estimator when the encoding is set to "estimate".
func newCounter(encoding string) (corpus.TokenCounter, error) {
	if encoding == "estimate" {
		return tokenizer.Estimator{}, nil
	}
	return tokenizer.NewTiktoken(encoding)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
