package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	NotifyWhatsApp = "whatsapp"
	NotifyEvent    = "event"
	NotifyNone     = "none"

	DispatchWebhook = "webhook"
	DispatchQueue   = "queue"
)

type Config struct {
	// Server
	ServerPort    int           `envconfig:"SERVER_PORT" default:"8081"`
	AppURL        string        `envconfig:"APP_URL"`
	WebhookSecret string        `envconfig:"WEBHOOK_SECRET"`
	IntakeTimeout time.Duration `envconfig:"INTAKE_TIMEOUT" default:"60s"`
	AuditLogPath  string        `envconfig:"AUDIT_LOG_PATH" default:"data/logs/publish.log"`
	RulesPath     string        `envconfig:"RULES_PATH"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`

	// Analyzer
	AnalyzerProvider string `envconfig:"ANALYZER_PROVIDER" default:"groq"`
	GroqAPIKey       string `envconfig:"GROQ_API_KEY"`
	GroqModel        string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	MaxPDFPages      int    `envconfig:"MAX_PDF_PAGES" default:"30"`

	// Document store
	NotionToken      string  `envconfig:"NOTION_API_KEY"`
	NotionDatabaseID string  `envconfig:"NOTION_DATABASE_ID"`
	NotionRPS        float64 `envconfig:"NOTION_RPS" default:"3"`

	// Notifier
	NotifyChannel      string `envconfig:"NOTIFY_CHANNEL" default:"whatsapp"`
	TwilioAccountSID   string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom string `envconfig:"TWILIO_WHATSAPP_FROM"`
	TwilioWhatsAppTo   string `envconfig:"TWILIO_WHATSAPP_TO"`

	// Queue
	NSQDHost          string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP          string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`
	EnableQueue       bool   `envconfig:"ENABLE_QUEUE" default:"false"`
	IntakeChannel     string `envconfig:"INTAKE_CHANNEL" default:"decoder"`
	IntakeMaxAttempts uint16 `envconfig:"INTAKE_MAX_ATTEMPTS" default:"5"`

	// Postgres holds the processed-message ledger and the failed intake jobs.
	// An empty DB_HOST runs without either.
	DBHost        string `envconfig:"DB_HOST"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"decoder"`
	DBPass        string `envconfig:"DB_PASS" default:"password"`
	DBName        string `envconfig:"DB_NAME" default:"decoder"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Mailbox watcher
	GoogleClientID      string        `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string        `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI   string        `envconfig:"GOOGLE_REDIRECT_URI"`
	GoogleRefreshToken  string        `envconfig:"GOOGLE_REFRESH_TOKEN"`
	PollInterval        time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	DispatchMode        string        `envconfig:"DISPATCH_MODE" default:"webhook"`
	WebhookURL          string        `envconfig:"WEBHOOK_URL" default:"http://localhost:8081/automation/webhook"`
	AutoReplyIndicators []string      `envconfig:"AUTO_REPLY_INDICATORS"` // comma separated; empty keeps the built-in list

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings every command shares. Credentials are
// checked by the command that needs them.
func (c *Config) Validate() error {
	switch c.AnalyzerProvider {
	case ProviderGroq, ProviderGemini:
	default:
		return fmt.Errorf("%w: ANALYZER_PROVIDER=%q", ErrInvalidValue, c.AnalyzerProvider)
	}
	switch c.NotifyChannel {
	case NotifyWhatsApp, NotifyEvent, NotifyNone:
	default:
		return fmt.Errorf("%w: NOTIFY_CHANNEL=%q", ErrInvalidValue, c.NotifyChannel)
	}
	switch c.DispatchMode {
	case DispatchWebhook, DispatchQueue:
	default:
		return fmt.Errorf("%w: DISPATCH_MODE=%q", ErrInvalidValue, c.DispatchMode)
	}
	if c.IntakeTimeout <= 0 {
		return fmt.Errorf("%w: INTAKE_TIMEOUT must be positive", ErrInvalidValue)
	}
	if c.HasDatabase() {
		if c.DBUser == "" {
			return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
		}
		if c.DBName == "" {
			return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
		}
	}
	return nil
}

// ValidateServer checks what the serve command needs beyond Validate. The
// document store and analyzer credentials are optional: requests fail with a
// not-configured error until they are set.
func (c *Config) ValidateServer() error {
	if c.ServerPort <= 0 {
		return fmt.Errorf("%w: SERVER_PORT=%d", ErrInvalidValue, c.ServerPort)
	}
	if c.NotifyChannel == NotifyEvent && c.NSQDHost == "" {
		return fmt.Errorf("%w: NSQD_HOST", ErrMissingRequired)
	}
	if c.EnableQueue && c.NSQDHost == "" {
		return fmt.Errorf("%w: NSQD_HOST", ErrMissingRequired)
	}
	return nil
}

// ValidateWatcher checks what the watch command needs.
func (c *Config) ValidateWatcher() error {
	if c.GoogleClientID == "" {
		return fmt.Errorf("%w: GOOGLE_CLIENT_ID", ErrMissingRequired)
	}
	if c.GoogleClientSecret == "" {
		return fmt.Errorf("%w: GOOGLE_CLIENT_SECRET", ErrMissingRequired)
	}
	if c.GoogleRefreshToken == "" {
		return fmt.Errorf("%w: GOOGLE_REFRESH_TOKEN", ErrMissingRequired)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: POLL_INTERVAL must be positive", ErrInvalidValue)
	}
	switch c.DispatchMode {
	case DispatchWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("%w: WEBHOOK_URL", ErrMissingRequired)
		}
		if c.WebhookSecret == "" {
			return fmt.Errorf("%w: WEBHOOK_SECRET", ErrMissingRequired)
		}
	case DispatchQueue:
		if c.NSQDHost == "" {
			return fmt.Errorf("%w: NSQD_HOST", ErrMissingRequired)
		}
	}
	return nil
}

func (c *Config) HasDatabase() bool {
	return c.DBHost != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}
