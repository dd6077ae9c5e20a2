// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Prices    PricesConfig    `mapstructure:"prices"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// CalendarConfig holds economic-calendar scraping and filtering configuration
type CalendarConfig struct {
	URL                 string        `mapstructure:"url"`
	Country             string        `mapstructure:"country"`
	MinImpact           string        `mapstructure:"min_impact"`
	ViewerOffsetMinutes int           `mapstructure:"viewer_offset_minutes"`
	WindowStartHour     int           `mapstructure:"window_start_hour"`
	WindowEndHour       int           `mapstructure:"window_end_hour"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// PricesConfig holds price-fetching configuration
type PricesConfig struct {
	QuoteAPIURL       string        `mapstructure:"quote_api_url"`
	CryptoAPIURL      string        `mapstructure:"crypto_api_url"`
	SymbolTimeout     time.Duration `mapstructure:"symbol_timeout"`
	SecondaryTimeout  time.Duration `mapstructure:"secondary_timeout"`
	Jitter            bool          `mapstructure:"jitter"`
	EstimateOnFailure bool          `mapstructure:"estimate_on_failure"`
}

// SentimentConfig holds sentiment-index configuration
type SentimentConfig struct {
	IndexAPIURL string        `mapstructure:"index_api_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DeliveryConfig holds chat-delivery configuration. Provider selects the
// transport: "feishu", "telegram", or "none".
type DeliveryConfig struct {
	Provider       string        `mapstructure:"provider"`
	Token          string        `mapstructure:"token"`
	ChatID         string        `mapstructure:"chat_id"`
	FeishuBaseURL  string        `mapstructure:"feishu_base_url"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ScheduleConfig holds the daily-run schedule
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	// Secrets (delivery token, chat ID) are expected via
	// MARKETBRIEF_DELIVERY_TOKEN / MARKETBRIEF_DELIVERY_CHAT_ID.
	v.SetEnvPrefix("MARKETBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Calendar defaults
	v.SetDefault("calendar.url", "https://www.forexfactory.com/calendar")
	v.SetDefault("calendar.country", "US")
	v.SetDefault("calendar.min_impact", "medium")
	v.SetDefault("calendar.viewer_offset_minutes", 780) // exchange local +13h
	v.SetDefault("calendar.window_start_hour", 20)
	v.SetDefault("calendar.window_end_hour", 23)
	v.SetDefault("calendar.timeout", "15s")

	// Prices defaults
	v.SetDefault("prices.quote_api_url", "https://query1.finance.yahoo.com")
	v.SetDefault("prices.crypto_api_url", "https://api.coingecko.com")
	v.SetDefault("prices.symbol_timeout", "5s")
	v.SetDefault("prices.secondary_timeout", "3s")
	v.SetDefault("prices.jitter", true)
	v.SetDefault("prices.estimate_on_failure", true)

	// Sentiment defaults
	v.SetDefault("sentiment.index_api_url", "https://api.alternative.me")
	v.SetDefault("sentiment.timeout", "5s")

	// Delivery defaults. Token and chat ID default to empty so the env
	// override (MARKETBRIEF_DELIVERY_TOKEN etc.) is picked up on unmarshal.
	v.SetDefault("delivery.provider", "feishu")
	v.SetDefault("delivery.token", "")
	v.SetDefault("delivery.chat_id", "")
	v.SetDefault("delivery.feishu_base_url", "https://open.feishu.cn")
	v.SetDefault("delivery.max_retries", 3)
	v.SetDefault("delivery.retry_delay_base", "1s")
	v.SetDefault("delivery.timeout", "10s")

	// Schedule defaults: every day at 18:30 viewer time
	v.SetDefault("schedule.cron", "30 18 * * *")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Calendar.URL == "" {
		return fmt.Errorf("calendar.url is required")
	}
	if c.Calendar.Country == "" {
		return fmt.Errorf("calendar.country is required")
	}
	validImpacts := map[string]bool{"low": true, "medium": true, "high": true}
	if !validImpacts[c.Calendar.MinImpact] {
		return fmt.Errorf("calendar.min_impact must be one of: low, medium, high")
	}
	if c.Calendar.ViewerOffsetMinutes <= -1440 || c.Calendar.ViewerOffsetMinutes >= 1440 {
		return fmt.Errorf("calendar.viewer_offset_minutes must be within (-1440, 1440)")
	}
	if c.Calendar.WindowStartHour < 0 || c.Calendar.WindowStartHour > 23 {
		return fmt.Errorf("calendar.window_start_hour must be between 0 and 23")
	}
	if c.Calendar.WindowEndHour < 0 || c.Calendar.WindowEndHour > 23 {
		return fmt.Errorf("calendar.window_end_hour must be between 0 and 23")
	}
	if c.Calendar.WindowStartHour > c.Calendar.WindowEndHour {
		return fmt.Errorf("calendar.window_start_hour must not exceed calendar.window_end_hour")
	}

	if c.Prices.QuoteAPIURL == "" {
		return fmt.Errorf("prices.quote_api_url is required")
	}
	if c.Prices.CryptoAPIURL == "" {
		return fmt.Errorf("prices.crypto_api_url is required")
	}
	if c.Prices.SymbolTimeout < time.Second {
		return fmt.Errorf("prices.symbol_timeout must be at least 1 second")
	}
	if c.Prices.SecondaryTimeout < time.Second {
		return fmt.Errorf("prices.secondary_timeout must be at least 1 second")
	}

	if c.Sentiment.IndexAPIURL == "" {
		return fmt.Errorf("sentiment.index_api_url is required")
	}
	if c.Sentiment.Timeout < time.Second {
		return fmt.Errorf("sentiment.timeout must be at least 1 second")
	}

	switch c.Delivery.Provider {
	case "feishu", "telegram":
		if c.Delivery.Token == "" {
			return fmt.Errorf("delivery.token is required when delivery.provider is %q", c.Delivery.Provider)
		}
		if c.Delivery.ChatID == "" {
			return fmt.Errorf("delivery.chat_id is required when delivery.provider is %q", c.Delivery.Provider)
		}
	case "none":
	default:
		return fmt.Errorf("delivery.provider must be one of: feishu, telegram, none")
	}
	if c.Delivery.MaxRetries < 1 {
		return fmt.Errorf("delivery.max_retries must be at least 1")
	}

	if c.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
