package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Telegram struct {
		BotToken string
		ChatID   int64
	}
	API struct {
		Port     string
		BasePath string
	}
	Alerting struct {
		PollInterval   time.Duration
		SummaryDelay   time.Duration
		BillFetchLimit int
		MediumPushCap  int
		SummaryMin     int
	}
	RateLimit struct {
		TelegramPerSecond int
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	// Kafka settings (optional; refresh trigger disabled when broker unset)
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Telegram settings (optional)
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Alerting settings
	if d, err := time.ParseDuration(os.Getenv("POLL_INTERVAL")); err == nil {
		cfg.Alerting.PollInterval = d
	}
	if d, err := time.ParseDuration(os.Getenv("SUMMARY_DELAY")); err == nil {
		cfg.Alerting.SummaryDelay = d
	}
	if n, err := strconv.Atoi(os.Getenv("BILL_FETCH_LIMIT")); err == nil {
		cfg.Alerting.BillFetchLimit = n
	}

	if n, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.RateLimit.TelegramPerSecond = n
	}

	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}
	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		return Config{}, fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKER is set")
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "rentdesk-alerting"
	}
	if cfg.Alerting.PollInterval == 0 {
		cfg.Alerting.PollInterval = 2 * time.Minute
	}
	if cfg.Alerting.SummaryDelay == 0 {
		cfg.Alerting.SummaryDelay = 2 * time.Second
	}
	if cfg.Alerting.BillFetchLimit == 0 {
		cfg.Alerting.BillFetchLimit = 100
	}
	if cfg.Alerting.MediumPushCap == 0 {
		cfg.Alerting.MediumPushCap = 3
	}
	if cfg.Alerting.SummaryMin == 0 {
		cfg.Alerting.SummaryMin = 5
	}
	if cfg.RateLimit.TelegramPerSecond == 0 {
		cfg.RateLimit.TelegramPerSecond = 1
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
