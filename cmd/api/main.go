package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/mediatranslator/internal/api"
	"github.com/nikhilbhutani/mediatranslator/internal/api/handlers"
	"github.com/nikhilbhutani/mediatranslator/internal/cache"
	"github.com/nikhilbhutani/mediatranslator/internal/config"
	"github.com/nikhilbhutani/mediatranslator/internal/llm"
	"github.com/nikhilbhutani/mediatranslator/internal/media"
	"github.com/nikhilbhutani/mediatranslator/internal/pipeline"
	"github.com/nikhilbhutani/mediatranslator/internal/result"
	"github.com/nikhilbhutani/mediatranslator/internal/stt"
	"github.com/nikhilbhutani/mediatranslator/internal/translate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	instanceID := uuid.New()

	// Result store
	var store result.Store = result.NewMemoryStore()
	deps := map[string]handlers.Pinger{}
	if cfg.Result.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		c := cache.NewCache(rdb)
		if err := c.Ping(ctx); err != nil {
			slog.Warn("redis unavailable at startup", "addr", cfg.Redis.Addr, "error", err)
		}
		rs := result.NewRedisStore(c, instanceID, cfg.Result.TTL)
		defer func() {
			if err := rs.Close(context.Background()); err != nil {
				slog.Warn("failed to drop last result", "key", rs.Key(), "error", err)
			}
		}()
		store = rs
		deps["redis"] = c
	}

	// Speech-to-text
	sttProvider, err := stt.New(cfg.STT)
	if err != nil {
		slog.Error("failed to init stt", "error", err)
		os.Exit(1)
	}

	// Translation
	var backend translate.Translator
	switch cfg.Translate.Backend {
	case "lambda":
		backend, err = translate.NewLambdaTranslatorFromEnv(ctx, cfg.Translate.LambdaFunction)
		if err != nil {
			slog.Error("failed to init lambda translator", "error", err)
			os.Exit(1)
		}
	default:
		provider, err := llm.New(cfg.LLM, cfg.Translate.Provider)
		if err != nil {
			slog.Error("failed to init llm provider", "error", err)
			os.Exit(1)
		}
		backend = translate.NewLLMTranslator(provider, cfg.Translate.Model)
	}

	normalizer := media.NewNormalizer(media.NewFFmpeg(cfg.Media.FFmpegBin), cfg.Media.TempDir)
	translator := translate.NewService(backend).WithChunkSize(cfg.Translate.ChunkChars)
	proc := pipeline.NewProcessor(normalizer, sttProvider, translator, store)

	router := api.NewRouter(cfg, proc, store, deps)
	handler := router.Setup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"instance_id", instanceID,
			"result_store", cfg.Result.Backend,
			"stt", sttProvider.Name(),
			"translator", backend.Name(),
			"trust_proxy", cfg.Server.TrustProxy,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
