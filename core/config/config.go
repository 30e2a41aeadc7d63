package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Whatsapp   WhatsappConfig
	AI         AIConfig
	Pipeline   PipelineConfig
	WorkerPool WorkerPoolConfig
	Log        LogConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	Environment    string
	BasePath       string
	TrustedProxies []string
	// WebhookToken, when set, must be presented by the messaging provider.
	WebhookToken string
	// WebhookRateLimit caps callbacks per minute and IP; 0 disables it.
	WebhookRateLimit int
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// WhatsappConfig describes the outbound HTTP messaging provider.
type WhatsappConfig struct {
	APIURL      string
	InstanceID  string
	Token       string
	SendRate    float64 // messages per second, 0 disables limiting
	SendTimeout time.Duration
}

// HasCredentials reports whether the provider can be called at all.
func (w WhatsappConfig) HasCredentials() bool {
	return w.APIURL != "" && w.InstanceID != "" && w.Token != ""
}

type AIConfig struct {
	Provider        string // openai | gemini
	OpenAIKey       string
	OpenAIModel     string
	GeminiKey       string
	GeminiModel     string
	RunPollInterval time.Duration
	RunTimeout      time.Duration
	RunTemperature  float64
}

type PipelineConfig struct {
	DedupWindow       time.Duration
	ReminderEvery     int
	WelcomeRetryDelay time.Duration
	HistoryTurns      int
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Global provides access to the loaded configuration for the wiring layer.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	var trusted []string
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		trusted = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:        "v1.4.0",
		Port:           getEnv("APP_PORT", "3000"),
		Debug:          getEnvBool("APP_DEBUG", false),
		Environment:    getEnv("APP_ENV", "development"),
		BasePath:       getEnv("APP_BASE_PATH", ""),
		TrustedProxies: trusted,
		WebhookToken:   getEnv("WEBHOOK_TOKEN", ""),

		WebhookRateLimit: getEnvInt("WEBHOOK_RATE_LIMIT", 3000),
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join("storages", "devocional.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "devocional:"),
	}

	waCfg := WhatsappConfig{
		APIURL:      strings.TrimRight(getEnv("WHATSAPP_API_URL", "https://api.w-api.app/v1"), "/"),
		InstanceID:  getEnv("WHATSAPP_INSTANCE_ID", ""),
		Token:       getEnv("WHATSAPP_TOKEN", ""),
		SendRate:    getEnvFloat("WHATSAPP_SEND_RATE", 5),
		SendTimeout: getEnvDuration("WHATSAPP_SEND_TIMEOUT_MS", 15*time.Second),
	}

	aiCfg := AIConfig{
		Provider:        strings.ToLower(getEnv("AI_PROVIDER", "openai")),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RunPollInterval: getEnvDuration("AI_RUN_POLL_INTERVAL_MS", 800*time.Millisecond),
		RunTimeout:      getEnvDuration("AI_RUN_TIMEOUT_MS", 30*time.Second),
		RunTemperature:  getEnvFloat("AI_RUN_TEMPERATURE", 0.3),
	}

	pipelineCfg := PipelineConfig{
		DedupWindow:       time.Duration(getEnvInt("DEDUP_WINDOW_SECONDS", 60)) * time.Second,
		ReminderEvery:     getEnvInt("REMINDER_EVERY", 5),
		WelcomeRetryDelay: getEnvDuration("WELCOME_RETRY_DELAY_MS", 2*time.Second),
		HistoryTurns:      getEnvInt("AI_HISTORY_TURNS", 3),
	}

	cfg := &Config{
		App:        appCfg,
		Database:   dbCfg,
		Whatsapp:   waCfg,
		AI:         aiCfg,
		Pipeline:   pipelineCfg,
		WorkerPool: WorkerPoolConfig{Size: getEnvInt("MESSAGE_WORKER_POOL_SIZE", 8), QueueSize: getEnvInt("MESSAGE_WORKER_QUEUE_SIZE", 500)},
		Log: LogConfig{
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
	}

	Global = cfg
	return cfg, nil
}
