package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockScreener/internal/collector"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// DefaultIndices are the constituents pages of the supported indices.
var DefaultIndices = map[string]string{
	"FTSE_100": "https://www.lse.co.uk/share-prices/indices/ftse-100/constituents.html",
	"FTSE_250": "https://www.lse.co.uk/share-prices/indices/ftse-250/constituents.html",
	"AIM_100":  "https://www.lse.co.uk/share-prices/indices/ftse-aim-100/constituents.html",
}

// Config holds all application configuration.
type Config struct {
	Indices map[string]string `yaml:"indices"`
	Fetch   struct {
		Concurrency       int            `yaml:"concurrency"`
		RequestDelay      *time.Duration `yaml:"request_delay"`
		Timeout           time.Duration  `yaml:"timeout"`
		RequestsPerSecond float64        `yaml:"requests_per_second"`
		UserAgent         string         `yaml:"user_agent"`
		FailurePolicy     string         `yaml:"failure_policy"`
	} `yaml:"fetch"`
	Cache struct {
		Dir string `yaml:"dir"`
	} `yaml:"cache"`
	Report struct {
		Path string `yaml:"path"`
		Open *bool  `yaml:"open"`
	} `yaml:"report"`
	Filters struct {
		MinPeriods int `yaml:"min_periods"`
	} `yaml:"filters"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Screens []model.Screen `yaml:"screens"`
	Proxy   string         `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCREENER_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SCREENER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SCREENER_CONCURRENCY: %w", err)
		}
		cfg.Fetch.Concurrency = n
	}
	if v := os.Getenv("SCREENER_FAILURE_POLICY"); v != "" {
		cfg.Fetch.FailurePolicy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_SCREEN"); v != "" {
		cfg.Schedule.Cron = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Indices) == 0 {
		c.Indices = make(map[string]string, len(DefaultIndices))
		for k, v := range DefaultIndices {
			c.Indices[k] = v
		}
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 5
	}
	// an explicit 0 disables the delay; only a missing key gets the default
	if c.Fetch.RequestDelay == nil {
		delay := 500 * time.Millisecond
		c.Fetch.RequestDelay = &delay
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.FailurePolicy == "" {
		c.Fetch.FailurePolicy = string(collector.PolicyAbort)
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Report.Path == "" {
		c.Report.Path = "data/report.html"
	}
	if c.Report.Open == nil {
		open := true
		c.Report.Open = &open
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 7 * * 1-5"
	}
}

// Validate checks the settings every mode needs.
func (c *Config) Validate() error {
	if len(c.Indices) == 0 {
		return fmt.Errorf("indices: at least one index is required")
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1")
	}
	if *c.Fetch.RequestDelay < 0 {
		return fmt.Errorf("fetch.request_delay must not be negative")
	}
	if c.Fetch.RequestsPerSecond < 0 {
		return fmt.Errorf("fetch.requests_per_second must not be negative")
	}
	switch collector.FailurePolicy(c.Fetch.FailurePolicy) {
	case collector.PolicyAbort, collector.PolicySkip:
	default:
		return fmt.Errorf("fetch.failure_policy must be %q or %q, got %q",
			collector.PolicyAbort, collector.PolicySkip, c.Fetch.FailurePolicy)
	}
	if c.Filters.MinPeriods < 0 {
		return fmt.Errorf("filters.min_periods must not be negative")
	}

	seen := make(map[string]bool, len(c.Screens))
	for i, s := range c.Screens {
		if s.Name == "" {
			return fmt.Errorf("screens[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("screens[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if _, ok := c.Indices[s.Index]; !ok {
			return fmt.Errorf("screens[%d] %q: %w: %q", i, s.Name, collector.ErrUnknownIndex, s.Index)
		}
		if _, err := strategy.BuildChain(s.Filters, c.StrategyOptions()); err != nil {
			return fmt.Errorf("screens[%d] %q: %w", i, s.Name, err)
		}
	}
	return nil
}

// ValidateWatch checks the extra settings needed by the scheduled mode.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Screens) == 0 {
		return fmt.Errorf("screens: at least one saved screen is required")
	}
	return nil
}

// CollectorOptions maps the fetch settings onto the collector.
func (c *Config) CollectorOptions() collector.Options {
	return collector.Options{
		Indices:      c.Indices,
		Concurrency:  c.Fetch.Concurrency,
		RequestDelay: *c.Fetch.RequestDelay,
		Policy:       collector.FailurePolicy(c.Fetch.FailurePolicy),
	}
}

// StrategyOptions maps the filter settings onto the filter engine.
func (c *Config) StrategyOptions() strategy.Options {
	return strategy.Options{MinPeriods: c.Filters.MinPeriods}
}

// Screen returns the saved screen with the given name.
func (c *Config) Screen(name string) (model.Screen, bool) {
	for _, s := range c.Screens {
		if s.Name == name {
			return s, true
		}
	}
	return model.Screen{}, false
}
