package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"qihuang-chef/internal/chef"
	"qihuang-chef/internal/config"
	"qihuang-chef/internal/database"
	"qihuang-chef/internal/llm"
	"qihuang-chef/internal/metrics"
	"qihuang-chef/internal/storage"
	"qihuang-chef/internal/telegram"
)

func main() {
	_ = godotenv.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.NewFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		logger.Fatal().Msg("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL must be set")
	}

	ctx := context.Background()

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create llm client")
	}
	if closer, ok := client.(llm.Closer); ok {
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	stateStore := storage.NewStore(db.SQL, logger)
	metricsStore := metrics.NewStore(db.SQL)
	chefSvc := chef.NewService(client, logger)
	sessions := telegram.NewManager(stateStore, cfg.DefaultLocation, logger)

	bot, err := telegram.NewBot(cfg, chefSvc, sessions, metricsStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    cfg.TelegramListenAddr,
		Handler: nil,
	}

	go func() {
		logger.Info().Str("addr", cfg.TelegramListenAddr).Msg("telegram bot server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exiting")
}
