// Package config loads runtime configuration from a YAML file and RA_
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/sinnsyakai/research-assistant/internal/bot"
	"github.com/sinnsyakai/research-assistant/internal/history"
)

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Search  SearchConfig  `mapstructure:"search"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Bot     BotConfig     `mapstructure:"bot"`
	History HistoryConfig `mapstructure:"history"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
}

type GeminiConfig struct {
	APIKey string  `mapstructure:"api_key"`
	Model  string  `mapstructure:"model"`
	RPS    float64 `mapstructure:"rps"`
}

type BotConfig struct {
	Enabled        bool        `mapstructure:"enabled"`
	TelegramToken  string      `mapstructure:"telegram_token"`
	TelegramChatID string      `mapstructure:"telegram_chat_id"`
	SearchPeriod   string      `mapstructure:"search_period"`
	Genres         []bot.Genre `mapstructure:"genres"`
}

type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	Cap     int    `mapstructure:"cap"`
}

// Load reads configuration. path may be empty; environment variables alone
// can configure the process (RA_SEARCH_API_KEY, RA_BOT_TELEGRAM_TOKEN, ...).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("log.level", "info")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.rps", 0.5)
	v.SetDefault("bot.enabled", true)
	v.SetDefault("bot.search_period", "d1")
	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", "data/history.json")
	v.SetDefault("history.cap", history.DefaultCap)

	// Credentials have no meaningful defaults; registering the keys keeps
	// them visible to environment overrides during Unmarshal.
	for _, key := range []string{
		"search.api_key", "search.engine_id",
		"gemini.api_key",
		"bot.telegram_token", "bot.telegram_chat_id",
		"history.dsn",
	} {
		v.SetDefault(key, "")
	}

	v.SetEnvPrefix("RA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.History.Backend {
	case "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if c.History.Backend == "postgres" && c.History.DSN == "" {
		return fmt.Errorf("history.dsn is required for the postgres backend")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// ValidateBot checks the fields the notification run needs.
func (c *Config) ValidateBot() error {
	if c.Search.APIKey == "" || c.Search.EngineID == "" {
		return fmt.Errorf("search.api_key and search.engine_id are required for notifications")
	}
	if c.Bot.TelegramToken == "" || c.Bot.TelegramChatID == "" {
		return fmt.Errorf("bot.telegram_token and bot.telegram_chat_id are required for notifications")
	}
	return nil
}
