// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ScrapingConfig struct {
	BaseURL              string `yaml:"base_url"`
	UserAgent            string `yaml:"user_agent"`
	RequestTimeoutMs     int    `yaml:"request_timeout_ms"`
	MaxRetries           int    `yaml:"max_retries"`
	RetryInitialDelayMs  int    `yaml:"retry_initial_delay_ms"`
	DelayBetweenRequests int    `yaml:"delay_between_requests_ms"`
	DelayBetweenPages    int    `yaml:"delay_between_pages_ms"`
	DefaultPages         int    `yaml:"default_pages"`
	DescriptionLimit     int    `yaml:"description_limit"`
}

type LettersConfig struct {
	GeminiAPIKey            string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel             string `yaml:"gemini_model"`
	DelayBetweenGenerations int    `yaml:"delay_between_generations_ms"`
	MaxRetries              int    `yaml:"max_retries"`
	RetryInitialDelayMs     int    `yaml:"retry_initial_delay_ms"`
}

type EmailConfig struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

type PathsConfig struct {
	OutputDir    string `yaml:"output_dir"`
	CVUploadsDir string `yaml:"cv_uploads_dir"`
	UploadsDir   string `yaml:"uploads_dir"`
	LogsDir      string `yaml:"logs_dir"`
}

type TelegramConfig struct {
	Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

type Config struct {
	DatabaseURL string         `yaml:"database_url" env:"DATABASE_URL"`
	Scraping    ScrapingConfig `yaml:"scraping"`
	Letters     LettersConfig  `yaml:"letters"`
	Email       EmailConfig    `yaml:"email"`
	Paths       PathsConfig    `yaml:"paths"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Server      ServerConfig   `yaml:"server"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	//Override with env vars
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Letters.GeminiAPIKey = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid SMTP_PORT: %v", err)
		}
		cfg.Email.SMTPPort = port
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		cfg.Email.SMTPPass = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.Telegram.ChatID = id
	}

	//Set default values if not set
	if cfg.Scraping.BaseURL == "" {
		cfg.Scraping.BaseURL = "https://www.ausbildung.de/suche"
	}
	if cfg.Scraping.RequestTimeoutMs == 0 {
		cfg.Scraping.RequestTimeoutMs = 30000
	}
	if cfg.Scraping.MaxRetries == 0 {
		cfg.Scraping.MaxRetries = 3
	}
	if cfg.Scraping.RetryInitialDelayMs == 0 {
		cfg.Scraping.RetryInitialDelayMs = 1000
	}
	if cfg.Scraping.DelayBetweenRequests == 0 {
		cfg.Scraping.DelayBetweenRequests = 1500
	}
	if cfg.Scraping.DelayBetweenPages == 0 {
		cfg.Scraping.DelayBetweenPages = 4000
	}
	if cfg.Scraping.DefaultPages == 0 {
		cfg.Scraping.DefaultPages = 3
	}
	if cfg.Scraping.DescriptionLimit == 0 {
		cfg.Scraping.DescriptionLimit = 1000
	}
	if cfg.Letters.GeminiModel == "" {
		cfg.Letters.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.Letters.DelayBetweenGenerations == 0 {
		cfg.Letters.DelayBetweenGenerations = 3000
	}
	if cfg.Letters.MaxRetries == 0 {
		cfg.Letters.MaxRetries = 3
	}
	if cfg.Letters.RetryInitialDelayMs == 0 {
		cfg.Letters.RetryInitialDelayMs = 2000
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 465
	}
	if cfg.Paths.OutputDir == "" {
		cfg.Paths.OutputDir = "output/letters"
	}
	if cfg.Paths.CVUploadsDir == "" {
		cfg.Paths.CVUploadsDir = "uploads/cv"
	}
	if cfg.Paths.UploadsDir == "" {
		cfg.Paths.UploadsDir = "uploads"
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = "logs"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	//Validate required fields
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	return cfg
}
