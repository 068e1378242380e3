package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // workshop time zones must resolve in slim containers

	"github.com/joho/godotenv"
)

// SMTPConfig holds outgoing mail settings. Email alerts are disabled while Host is empty.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// CronSpecs holds the schedule of every in-process scan job.
type CronSpecs struct {
	Documents  string
	Processes  string
	Coex       string
	Payments   string
	Milestones string
}

// IntegrationKeys are third-party credentials used by sibling functions. They are
// only reported at startup here.
type IntegrationKeys struct {
	WhatsAppAPIURL    string
	WhatsAppAPIKey    string
	ActiveCampaignURL string
	ActiveCampaignKey string
	ClickSignToken    string
	MetaWebhookToken  string
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL      string
	FunctionsAPIKey  string
	HTTPPort         string
	LogLevel         string
	Environment      string
	Timezone         string
	Location         *time.Location
	RedisURL         string
	TelegramToken    string
	AppBaseURL       string
	SchedulerEnabled bool
	RunMigrations    bool
	ScanTimeout      time.Duration
	Cron             CronSpecs
	SMTP             SMTPConfig
	Integrations     IntegrationKeys
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.FunctionsAPIKey = os.Getenv("FUNCTIONS_API_KEY")
	if cfg.FunctionsAPIKey == "" {
		return nil, fmt.Errorf("FUNCTIONS_API_KEY is not set")
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", "8080")
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.Timezone = getEnv("TIMEZONE", "America/Sao_Paulo")
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	cfg.ScanTimeout, err = time.ParseDuration(getEnv("SCAN_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCAN_TIMEOUT: %w", err)
	}
	if cfg.ScanTimeout <= 0 {
		return nil, fmt.Errorf("SCAN_TIMEOUT must be positive")
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.AppBaseURL = strings.TrimRight(getEnv("APP_BASE_URL", "https://app.oficinasmaster.com.br"), "/")
	cfg.SchedulerEnabled = getEnvBool("SCHEDULER_ENABLED", true)
	cfg.RunMigrations = getEnvBool("RUN_MIGRATIONS", true)

	cfg.Cron = CronSpecs{
		Documents:  getEnv("CRON_SPEC_DOCUMENTS", "0 8 * * *"),
		Processes:  getEnv("CRON_SPEC_PROCESSES", "0 8 * * *"),
		Coex:       getEnv("CRON_SPEC_COEX", "30 8 * * *"),
		Payments:   getEnv("CRON_SPEC_PAYMENTS", "0 9 * * *"),
		Milestones: getEnv("CRON_SPEC_MILESTONES", "0 */6 * * *"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		FromName: getEnv("SMTP_FROM_NAME", "Oficinas Master"),
	}

	cfg.Integrations = IntegrationKeys{
		WhatsAppAPIURL:    os.Getenv("WHATSAPP_API_URL"),
		WhatsAppAPIKey:    os.Getenv("WHATSAPP_API_KEY"),
		ActiveCampaignURL: os.Getenv("ACTIVECAMPAIGN_API_URL"),
		ActiveCampaignKey: os.Getenv("ACTIVECAMPAIGN_API_KEY"),
		ClickSignToken:    os.Getenv("CLICKSIGN_ACCESS_TOKEN"),
		MetaWebhookToken:  os.Getenv("META_WEBHOOK_VERIFY_TOKEN"),
	}

	return cfg, nil
}

// Configured reports which integrations have credentials, keyed by name.
func (k IntegrationKeys) Configured() map[string]bool {
	return map[string]bool{
		"whatsapp":       k.WhatsAppAPIURL != "" && k.WhatsAppAPIKey != "",
		"activecampaign": k.ActiveCampaignURL != "" && k.ActiveCampaignKey != "",
		"clicksign":      k.ClickSignToken != "",
		"meta_webhook":   k.MetaWebhookToken != "",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
