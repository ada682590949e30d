package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go-ausbildung-automation/internal/ai"
	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/database"
	"go-ausbildung-automation/internal/letters"
	"go-ausbildung-automation/internal/logging"
	"go-ausbildung-automation/internal/pdf"
	"go-ausbildung-automation/internal/reporter"
)

func main() {
	cvPath := flag.String("cv", "", "path to the applicant's CV (PDF)")
	userID := flag.String("user", "", "owning user id (empty: all users)")
	flag.Parse()

	if *cvPath == "" {
		log.Fatal("❌ -cv is required")
	}

	cfg := config.Load()
	logger := logging.New(true)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	defer repo.Close()

	tg, err := reporter.NewTelegramReporter(&cfg.Telegram)
	if err != nil {
		logger.Warnw("telegram reporter unavailable", "error", err)
	}

	textgen, err := ai.NewGeminiClient(ctx, cfg.Letters.GeminiAPIKey, cfg.Letters.GeminiModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	renderer, err := pdf.NewGenerator()
	if err != nil {
		log.Fatalf("❌ Failed to initialize PDF generator: %v", err)
	}

	gen := letters.NewGenerator(&cfg.Letters, cfg.Paths.OutputDir,
		repo, textgen, renderer, letters.NewCVReader(), logger)

	count, err := gen.GenerateAll(ctx, *cvPath, *userID)
	if err != nil {
		tg.SendError(err)
		log.Fatalf("❌ Letter generation failed: %v", err)
	}

	if err := tg.SendLetterSummary(count); err != nil {
		logger.Warnw("failed to send telegram summary", "error", err)
	}
}
