package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"decoder/internal/config"
)

func baseConfig() config.Config {
	return config.Config{
		ServerPort:       8081,
		IntakeTimeout:    time.Minute,
		AnalyzerProvider: config.ProviderGroq,
		NotifyChannel:    config.NotifyWhatsApp,
		DispatchMode:     config.DispatchWebhook,
		NSQDHost:         "nsqd:4150",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errIs  error
	}{
		{name: "Valid Config", modify: func(*config.Config) {}},
		{name: "Unknown Provider", modify: func(c *config.Config) { c.AnalyzerProvider = "x" }, errIs: config.ErrInvalidValue},
		{name: "Unknown Notify Channel", modify: func(c *config.Config) { c.NotifyChannel = "sms" }, errIs: config.ErrInvalidValue},
		{name: "Unknown Dispatch Mode", modify: func(c *config.Config) { c.DispatchMode = "imap" }, errIs: config.ErrInvalidValue},
		{name: "Zero Timeout", modify: func(c *config.Config) { c.IntakeTimeout = 0 }, errIs: config.ErrInvalidValue},
		{name: "Database Without User", modify: func(c *config.Config) { c.DBHost = "pg"; c.DBName = "d" }, errIs: config.ErrMissingRequired},
		{name: "Database Without Name", modify: func(c *config.Config) { c.DBHost = "pg"; c.DBUser = "u" }, errIs: config.ErrMissingRequired},
		{name: "Database Complete", modify: func(c *config.Config) { c.DBHost = "pg"; c.DBUser = "u"; c.DBName = "d" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateServer(t *testing.T) {
	cfg := baseConfig()
	assert.NoError(t, cfg.ValidateServer())

	cfg.EnableQueue = true
	cfg.NSQDHost = ""
	assert.ErrorIs(t, cfg.ValidateServer(), config.ErrMissingRequired)

	cfg = baseConfig()
	cfg.ServerPort = 0
	assert.ErrorIs(t, cfg.ValidateServer(), config.ErrInvalidValue)
}

func TestConfig_ValidateWatcher(t *testing.T) {
	watcher := func() config.Config {
		c := baseConfig()
		c.GoogleClientID = "id"
		c.GoogleClientSecret = "secret"
		c.GoogleRefreshToken = "refresh"
		c.PollInterval = 30 * time.Second
		c.WebhookURL = "http://localhost:8081/automation/webhook"
		c.WebhookSecret = "s3cret"
		return c
	}

	tests := []struct {
		name   string
		modify func(*config.Config)
		errIs  error
	}{
		{name: "Valid Webhook Mode", modify: func(*config.Config) {}},
		{name: "Valid Queue Mode", modify: func(c *config.Config) { c.DispatchMode = config.DispatchQueue; c.WebhookSecret = "" }},
		{name: "Missing Client ID", modify: func(c *config.Config) { c.GoogleClientID = "" }, errIs: config.ErrMissingRequired},
		{name: "Missing Client Secret", modify: func(c *config.Config) { c.GoogleClientSecret = "" }, errIs: config.ErrMissingRequired},
		{name: "Missing Refresh Token", modify: func(c *config.Config) { c.GoogleRefreshToken = "" }, errIs: config.ErrMissingRequired},
		{name: "Missing Webhook Secret", modify: func(c *config.Config) { c.WebhookSecret = "" }, errIs: config.ErrMissingRequired},
		{name: "Missing Webhook URL", modify: func(c *config.Config) { c.WebhookURL = "" }, errIs: config.ErrMissingRequired},
		{name: "Queue Without NSQ", modify: func(c *config.Config) { c.DispatchMode = config.DispatchQueue; c.NSQDHost = "" }, errIs: config.ErrMissingRequired},
		{name: "Zero Poll Interval", modify: func(c *config.Config) { c.PollInterval = 0 }, errIs: config.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := watcher()
			tt.modify(&cfg)
			err := cfg.ValidateWatcher()
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
