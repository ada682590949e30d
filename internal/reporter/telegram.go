package reporter

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/dispatch"
	"go-ausbildung-automation/internal/scraper"
)

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramReporter returns nil when no token is configured; every method
// is safe to call on a nil reporter so callers do not need to guard.
func NewTelegramReporter(cfg *config.TelegramConfig) (*TelegramReporter, error) {
	if cfg.Token == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramReporter{
		bot:    bot,
		chatID: cfg.ChatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	if t == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendScrapeSummary(term, location string, summary *scraper.Summary) error {
	text := fmt.Sprintf(
		"🔍 <b>Scrape finished</b>\n"+
			"Suchbegriff: %s (%s)\n"+
			"💾 Gespeichert: %d\n"+
			"🌐 Besuchte Seiten: %d\n"+
			"⚠️ Fehler: %d",
		term, location, summary.SavedJobs, summary.VisitedURLs, len(summary.Errors))
	return t.SendMessage(text)
}

func (t *TelegramReporter) SendLetterSummary(generated int) error {
	return t.SendMessage(fmt.Sprintf("📝 <b>Letters generated</b>: %d", generated))
}

func (t *TelegramReporter) SendDispatchSummary(result *dispatch.Result) error {
	return t.SendMessage(fmt.Sprintf(
		"📧 <b>Dispatch finished</b>\n✅ Gesendet: %d\n⚠️ Fehler: %d",
		result.SentCount, len(result.Errors)))
}

func (t *TelegramReporter) SendError(errReq error) error {
	return t.SendMessage(fmt.Sprintf("⚠️ <b>Pipeline Error</b>:\n%v", errReq))
}
