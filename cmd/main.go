package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"textsummarizer/internal/assistant"
	"textsummarizer/internal/bot"
	"textsummarizer/internal/config"
	"textsummarizer/internal/database"
	"textsummarizer/internal/domain"
	"textsummarizer/internal/extractor"
	"textsummarizer/internal/ratelimiter"
	"textsummarizer/internal/scheduler"
	"textsummarizer/internal/session"
	"textsummarizer/internal/summarizer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	ext := extractor.New(extractor.Options{
		FetchTimeout:     cfg.FetchTimeout,
		MaxDownloadBytes: cfg.MaxUploadBytes,
	}, log)

	dispatcher, err := initDispatcher(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize summarizers",
			"error", err)

		return
	}

	sessions := session.NewStore(cfg.SessionMaxEntries, cfg.SessionIdleTTL)
	a := assistant.New(sessions, ext, dispatcher, log)

	limiter := ratelimiter.New(log)

	botInst, err := bot.New(cfg.Token, limiter, a, db, ext, cfg.AllowedUsers, cfg.MaxUploadBytes, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers),
		"extensions", ext.Extensions())

	sched := scheduler.New(ctx, sessions, limiter, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.SessionSweepSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.SessionSweepSpec,
		"sessionIdleTTL", cfg.SessionIdleTTL.String(),
		"sessionMaxEntries", cfg.SessionMaxEntries)

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started")

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

// initDispatcher registers every provider. Missing API keys only produce a
// warning: such a provider fails when it is used.
func initDispatcher(ctx context.Context, cfg config.Config, log *slog.Logger) (*summarizer.Dispatcher, error) {
	dispatcher := summarizer.NewDispatcher(log)

	if cfg.GeminiAPIKey == "" {
		log.WarnContext(ctx, "Gemini_api_key is missing so Gemini summaries will fail",
			"envVar", "Gemini_api_key")
	}

	gemini, err := summarizer.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL)
	if err != nil {
		return nil, err
	}
	dispatcher.Register(domain.ProviderGemini, gemini)

	if cfg.GroqAPIKey == "" {
		log.WarnContext(ctx, "Groq_api_key is missing so Groq summaries will fail",
			"envVar", "Groq_api_key")
	}
	dispatcher.Register(domain.ProviderGroq, summarizer.NewGroqSummarizer(cfg.GroqAPIKey, cfg.GroqBaseURL))

	dispatcher.Register(domain.ProviderLocal, summarizer.NewLocalSummarizer(cfg.LocalBaseURL, cfg.LocalModel))

	log.InfoContext(ctx, "Summarizers are initialized",
		"providers", dispatcher.Providers(),
		"localBaseURL", cfg.LocalBaseURL,
		"localModel", cfg.LocalModel)

	return dispatcher, nil
}
