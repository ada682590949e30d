package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/database"
	"go-ausbildung-automation/internal/dispatch"
	"go-ausbildung-automation/internal/logging"
	"go-ausbildung-automation/internal/mailer"
	"go-ausbildung-automation/internal/reporter"
)

func main() {
	userID := flag.String("user", "", "owning user id")
	campaignID := flag.String("campaign", "", "campaign id (empty: send all ready jobs)")
	flag.Parse()

	if *userID == "" {
		log.Fatal("❌ -user is required")
	}

	cfg := config.Load()
	logger := logging.New(true)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
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

	user, err := repo.GetUserByID(ctx, *userID)
	if err != nil {
		log.Fatalf("❌ Could not load user: %v", err)
	}
	sender := dispatch.Sender{
		Name:  user.FirstName + " " + user.LastName,
		Email: user.Email,
	}

	engine := dispatch.NewEngine(repo, mailer.NewSMTPMailer(&cfg.Email), logger)

	if *campaignID != "" {
		sent, failed, err := engine.SendCampaign(ctx, *campaignID, *userID, sender)
		if err != nil {
			tg.SendError(err)
			log.Fatalf("❌ Campaign dispatch failed: %v", err)
		}
		logger.Infof("Campaign dispatch done: %d sent, %d failed", sent, failed)
		return
	}

	result, err := engine.SendForUser(ctx, *userID, sender)
	if err != nil {
		tg.SendError(err)
		log.Fatalf("❌ Dispatch failed: %v", err)
	}
	if err := tg.SendDispatchSummary(result); err != nil {
		logger.Warnw("failed to send telegram summary", "error", err)
	}
}
