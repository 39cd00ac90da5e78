package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"WellnessTips_V1.0/internal/admin"
	"WellnessTips_V1.0/internal/config"
	"WellnessTips_V1.0/internal/geminiservice"
	"WellnessTips_V1.0/internal/openaiservice"
	"WellnessTips_V1.0/internal/server"
	"WellnessTips_V1.0/internal/utility"
	"WellnessTips_V1.0/internal/wellness"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func buildEngine(cfg *config.Config, hub *utility.Hub) (*wellness.Engine, error) {
	cache, err := wellness.NewCache(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	// BroadcastJSON only queues; slow websocket clients drop events.
	opts := []wellness.Option{
		wellness.WithNotifier(func(ev wellness.Event) { hub.BroadcastJSON(ev) }),
	}

	if !cfg.ModelEnabled() {
		log.Warn().Str("provider", cfg.ModelProvider).Msg("Model API key not found. AI tips will use fallback responses.")
		return wellness.NewEngine(cache, opts...), nil
	}

	model, err := buildModel(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, wellness.WithModel(model, cfg.OpenAITimeout))
	log.Info().Str("provider", cfg.ModelProvider).Str("model", model.Model()).Msg("Model API key found - using model for tips")

	return wellness.NewEngine(cache, opts...), nil
}

func buildModel(cfg *config.Config) (wellness.Generator, error) {
	logger := log.With().Str("component", cfg.ModelProvider).Logger()

	switch cfg.ModelProvider {
	case config.ProviderGemini:
		return geminiservice.NewClient(context.Background(), &logger, geminiservice.ClientConfig{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.OpenAIMaxTokens,
			Temperature: cfg.OpenAITemperature,
		})
	default:
		return openaiservice.NewClient(&logger, openaiservice.ClientConfig{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			MaxTokens:   cfg.OpenAIMaxTokens,
			Temperature: cfg.OpenAITemperature,
		})
	}
}

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogger(cfg)

	log.Info().Str("service", "AI Tips Service").Msg("Service starting up...")
	log.Info().Bool("openai_available", cfg.ModelEnabled()).Msg("Model integration")

	hub := utility.NewHub()
	engine, err := buildEngine(cfg, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not initialize tips engine")
	}

	monitor := admin.NewMonitor(startTime, engine.Cache(), hub)
	apiServer := server.New(cfg, startTime, engine, hub, monitor).HTTPServer()

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("HTTP server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		monitor.StartBroadcaster(gctx, 3*time.Second)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
		stop() // Allow Ctrl+C to force shutdown

		// The server has 5 seconds to finish the requests it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Int("cache_entries", engine.Cache().Len()).Msg("Cache entries at shutdown")
	log.Info().Msg("Graceful shutdown complete.")
}
