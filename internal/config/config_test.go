package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.MetricsPort != 9090 {
		t.Errorf("ports = %d/%d, want 8080/9090", cfg.Server.Port, cfg.Server.MetricsPort)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.History.Backend != "file" || cfg.History.Cap != 2000 {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("gemini model = %q", cfg.Gemini.Model)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
log:
  level: debug
search:
  api_key: key123
  engine_id: cx456
history:
  backend: sqlite
  path: /tmp/test-history.db
  cap: 500
bot:
  telegram_token: tok
  telegram_chat_id: chat
  genres:
    - id: tech
      name: テクノロジー
      keywords: ["AI", "半導体"]
      max_items: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Log.Level != "debug" {
		t.Errorf("server/log = %+v / %+v", cfg.Server, cfg.Log)
	}
	if cfg.Search.APIKey != "key123" || cfg.Search.EngineID != "cx456" {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.History.Backend != "sqlite" || cfg.History.Cap != 500 {
		t.Errorf("history = %+v", cfg.History)
	}
	if len(cfg.Bot.Genres) != 1 || cfg.Bot.Genres[0].ID != "tech" || len(cfg.Bot.Genres[0].Keywords) != 2 {
		t.Errorf("genres = %+v", cfg.Bot.Genres)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RA_SERVER_PORT", "7070")
	t.Setenv("RA_SEARCH_API_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Search.APIKey != "env-key" {
		t.Errorf("api key = %q, want env override", cfg.Search.APIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown history backend", "history:\n  backend: redis\n"},
		{"postgres without dsn", "history:\n  backend: postgres\n"},
		{"port out of range", "server:\n  port: 99999\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateBot(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateBot(); err == nil {
		t.Fatal("expected error without search credentials")
	}

	cfg.Search = SearchConfig{APIKey: "k", EngineID: "cx"}
	if err := cfg.ValidateBot(); err == nil {
		t.Fatal("expected error without telegram settings")
	}

	cfg.Bot = BotConfig{TelegramToken: "tok", TelegramChatID: "chat"}
	if err := cfg.ValidateBot(); err != nil {
		t.Fatalf("fully configured: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
