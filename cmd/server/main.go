package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-ausbildung-automation/internal/ai"
	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/database"
	"go-ausbildung-automation/internal/logging"
	"go-ausbildung-automation/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Getenv("APP_ENV") != "production")
	defer logger.Sync()

	ctx := context.Background()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	defer repo.Close()
	logger.Info("✅ Database connected")

	textgen, err := ai.NewGeminiClient(ctx, cfg.Letters.GeminiAPIKey, cfg.Letters.GeminiModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	logger.Info("✅ Gemini initialized")

	srv, err := server.New(cfg, repo, textgen, logger)
	if err != nil {
		log.Fatalf("❌ Failed to build server: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("🛑 Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			logger.Errorw("server forced to shutdown", "error", err)
		}
	}()

	if err := srv.Listen(); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
