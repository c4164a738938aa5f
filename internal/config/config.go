package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// AppConfig holds the settings loaded from the TOML config file. Database,
// redis and storage endpoints come from the environment; this file carries
// the payment-provider and reminder-queue tuning.
type AppConfig struct {
	Payments  PaymentsConfig  `toml:"payments"`
	Reminders RemindersConfig `toml:"reminders"`
}

// PaymentsConfig contains the hosted-checkout provider credentials.
type PaymentsConfig struct {
	APIKey        string `toml:"api_key"`
	APISecret     string `toml:"api_secret"`
	WebhookSecret string `toml:"webhook_secret"`
	BaseURL       string `toml:"base_url"`
}

// RemindersConfig contains asynq queue and dispatch settings for
// appointment reminders.
type RemindersConfig struct {
	RedisAddr       string         `toml:"redis_addr"`
	RedisPassword   string         `toml:"redis_password"`
	RedisDB         int            `toml:"redis_db"`
	Concurrency     int            `toml:"concurrency"`
	QueuePriorities map[string]int `toml:"queue_priorities"`
	LookaheadHours  int            `toml:"lookahead_hours"`
}

// Load reads configuration from a TOML file. An empty filename yields
// defaults so the server can boot without one.
func Load(filename string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if cfg.Reminders.Concurrency <= 0 {
		cfg.Reminders.Concurrency = 5
	}
	if cfg.Reminders.LookaheadHours <= 0 {
		cfg.Reminders.LookaheadHours = 24
	}
	if len(cfg.Reminders.QueuePriorities) == 0 {
		cfg.Reminders.QueuePriorities = map[string]int{"reminders": 5, "default": 1}
	}
	return cfg, nil
}
