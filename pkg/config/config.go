package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Binance struct {
		BaseURL        string        `yaml:"base_url"`
		APIKey         string        `yaml:"api_key"`
		SecretKey      string        `yaml:"secret_key"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		FetchWorkers   int           `yaml:"fetch_workers"`
		MaxRequestsSec float64       `yaml:"max_requests_per_second"`
	} `yaml:"binance"`
	Refresh struct {
		Mode           string        `yaml:"mode"` // lazy or eager
		Interval       time.Duration `yaml:"interval"`
		Cron           string        `yaml:"cron"`
		QuoteAsset     string        `yaml:"quote_asset"`
		SymbolCacheTTL time.Duration `yaml:"symbol_cache_ttl"`
		KlineLimit     int           `yaml:"kline_limit"`
		Windows        []int         `yaml:"windows"`
		TopK           int           `yaml:"top_k"`
	} `yaml:"refresh"`
	Strong struct {
		Lookback          int     `yaml:"lookback"`
		MinPosRatio       float64 `yaml:"min_pos_ratio"`
		MinCumChangePct   float64 `yaml:"min_cum_change_pct"`
		VolumeSpikeRatio  float64 `yaml:"volume_spike_ratio"`
		MinSpikeChangePct float64 `yaml:"min_spike_change_pct"`
	} `yaml:"strong"`
	Pullback struct {
		RiseThresholdPct float64 `yaml:"rise_threshold_pct"`
		RetraceRatio     float64 `yaml:"retrace_ratio"`
	} `yaml:"pullback"`
	Alerts struct {
		Interval        time.Duration `yaml:"interval"`
		DefaultCooldown int           `yaml:"default_cooldown_seconds"`
		Store           struct {
			Type  string `yaml:"type"` // file or redis
			Path  string `yaml:"path"`
			Key   string `yaml:"key"`
			Redis struct {
				Addr     string `yaml:"addr"`
				Password string `yaml:"password"`
				DB       int    `yaml:"db"`
			} `yaml:"redis"`
		} `yaml:"store"`
	} `yaml:"alerts"`
	Notifier struct {
		Type     string `yaml:"type"` // wxpusher or telegram
		WxPusher struct {
			URL   string `yaml:"url"`
			Token string `yaml:"token"`
		} `yaml:"wxpusher"`
		Telegram struct {
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
	} `yaml:"notifier"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Binance.SecretKey = v
	}
	if v := os.Getenv("NOTIFIER"); v != "" {
		c.Notifier.Type = v
	}
	if v := os.Getenv("WXPUSHER_TOKEN"); v != "" {
		c.Notifier.WxPusher.Token = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notifier.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Notifier.Telegram.ChatID = v
	}
	if v := os.Getenv("RULE_STORE"); v != "" {
		c.Alerts.Store.Type = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Alerts.Store.Redis.Addr = v
	}
	if v := os.Getenv("REFRESH_MODE"); v != "" {
		c.Refresh.Mode = strings.ToLower(v)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 4567
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://fapi.binance.com"
	}
	if c.Binance.RequestTimeout == 0 {
		c.Binance.RequestTimeout = 10 * time.Second
	}
	if c.Binance.FetchWorkers == 0 {
		c.Binance.FetchWorkers = 50
	}
	if c.Refresh.Mode == "" {
		c.Refresh.Mode = "lazy"
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = 35 * time.Second
	}
	if c.Refresh.Cron == "" {
		c.Refresh.Cron = "*/40 * * * * *"
	}
	if c.Refresh.QuoteAsset == "" {
		c.Refresh.QuoteAsset = "USDT"
	}
	if c.Refresh.SymbolCacheTTL == 0 {
		c.Refresh.SymbolCacheTTL = time.Hour
	}
	if c.Refresh.KlineLimit == 0 {
		c.Refresh.KlineLimit = 100
	}
	if len(c.Refresh.Windows) == 0 {
		c.Refresh.Windows = []int{5, 10, 15, 30, 40, 50, 60, 120, 240}
	}
	if c.Refresh.TopK == 0 {
		c.Refresh.TopK = 20
	}
	if c.Strong.Lookback == 0 {
		c.Strong.Lookback = 6
	}
	if c.Strong.MinPosRatio == 0 {
		c.Strong.MinPosRatio = 0.7
	}
	if c.Strong.MinCumChangePct == 0 {
		c.Strong.MinCumChangePct = 9
	}
	if c.Strong.VolumeSpikeRatio == 0 {
		c.Strong.VolumeSpikeRatio = 4
	}
	if c.Strong.MinSpikeChangePct == 0 {
		c.Strong.MinSpikeChangePct = 5
	}
	if c.Pullback.RiseThresholdPct == 0 {
		c.Pullback.RiseThresholdPct = 4
	}
	if c.Pullback.RetraceRatio == 0 {
		c.Pullback.RetraceRatio = 0.98
	}
	if c.Alerts.Interval == 0 {
		c.Alerts.Interval = 3 * time.Second
	}
	if c.Alerts.DefaultCooldown == 0 {
		c.Alerts.DefaultCooldown = 60
	}
	if c.Alerts.Store.Type == "" {
		c.Alerts.Store.Type = "file"
	}
	if c.Alerts.Store.Path == "" {
		c.Alerts.Store.Path = "price_alerts.json"
	}
	if c.Alerts.Store.Key == "" {
		c.Alerts.Store.Key = "perpscan:alert_rules"
	}
	if c.Notifier.Type == "" {
		c.Notifier.Type = "wxpusher"
	}
	if c.Notifier.WxPusher.URL == "" {
		c.Notifier.WxPusher.URL = "https://wxpusher.zjiecode.com/api/send/message/simple-push"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Refresh.Mode != "lazy" && c.Refresh.Mode != "eager" {
		return fmt.Errorf("refresh.mode must be 'lazy' or 'eager', got '%s'", c.Refresh.Mode)
	}
	if c.Alerts.Store.Type != "file" && c.Alerts.Store.Type != "redis" {
		return fmt.Errorf("alerts.store.type must be 'file' or 'redis', got '%s'", c.Alerts.Store.Type)
	}
	if c.Notifier.Type != "wxpusher" && c.Notifier.Type != "telegram" {
		return fmt.Errorf("notifier.type must be 'wxpusher' or 'telegram', got '%s'", c.Notifier.Type)
	}
	for _, w := range c.Refresh.Windows {
		if w <= 0 || w%5 != 0 {
			return fmt.Errorf("refresh.windows entries must be positive multiples of 5, got %d", w)
		}
	}
	if c.Strong.Lookback < 2 {
		return fmt.Errorf("strong.lookback must be at least 2")
	}
	return nil
}
