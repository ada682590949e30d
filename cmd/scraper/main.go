package main

import (
	"context"
	"flag"
	"log"
	"net/url"
	"time"

	"go-ausbildung-automation/internal/browser"
	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/database"
	"go-ausbildung-automation/internal/logging"
	"go-ausbildung-automation/internal/reporter"
	"go-ausbildung-automation/internal/scraper"
)

func main() {
	term := flag.String("term", "", "search term, e.g. Fachinformatiker")
	location := flag.String("location", "", "location filter, e.g. Berlin")
	pages := flag.Int("pages", 0, "number of result pages to crawl")
	userID := flag.String("user", "", "owning user id")
	flag.Parse()

	if *term == "" || *userID == "" {
		log.Fatal("❌ -term and -user are required")
	}

	cfg := config.Load()
	logger := logging.New(true)
	defer logger.Sync()

	if *pages <= 0 {
		*pages = cfg.Scraping.DefaultPages
	}

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

	mgr, err := browser.NewManager(ctx, siteOrigin(cfg.Scraping.BaseURL), cfg.Scraping.UserAgent)
	if err != nil {
		tg.SendError(err)
		log.Fatalf("❌ Failed to start browser: %v", err)
	}
	defer mgr.Close()

	summary, err := scraper.New(&cfg.Scraping, repo, mgr, logger).
		Run(ctx, *term, *location, *pages, *userID)
	if err != nil {
		tg.SendError(err)
		log.Fatalf("❌ Scrape run failed: %v", err)
	}

	if err := tg.SendScrapeSummary(*term, *location, summary); err != nil {
		logger.Warnw("failed to send telegram summary", "error", err)
	}
}

func siteOrigin(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return baseURL
	}
	return u.Scheme + "://" + u.Host
}
