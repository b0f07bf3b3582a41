package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

const secretsService = "autoreply"

type Config struct {
	Model   ModelConfig
	Style   StyleConfig
	Rules   RulesConfig
	Storage StorageConfig
	Server  ServerConfig
	Log     LogConfig
}

type ModelConfig struct {
	Provider string
	Name     string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

type StyleConfig struct {
	ProfilePath string
}

// RulesConfig points at an optional YAML rule set. Empty means built-in rules.
type RulesConfig struct {
	Path string
}

type StorageConfig struct {
	DataDir    string
	LogReplies bool
}

type ServerConfig struct {
	Port  int
	Token string
}

type LogConfig struct {
	Level string
}

// SlogLevel maps Level to a slog.Level. Unknown values select warn.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Model: ModelConfig{
			Provider: "gemini",
			Timeout:  15 * time.Second,
		},
		Style: StyleConfig{
			ProfilePath: "communication_style.json",
		},
		Storage: StorageConfig{
			DataDir:    defaultDataDir(),
			LogReplies: true,
		},
		Server: ServerConfig{
			Port: 4100,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/autoreply/config.json, then applies AUTOREPLY_* environment
// overrides. Secrets come from the environment or the secrets file.
//
// A missing API key is not an error: the caller degrades to canned replies.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), secretsFile{path: secretsFilePath()})
}

// secretStore abstracts secret lookup for testing.
type secretStore interface {
	Get(service, account string) (string, error)
}

func loadWith(b Backend, secrets secretStore) (Config, error) {
	cfg := Defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = providerKeyFromEnv(cfg.Model.Provider)
	}
	if cfg.Model.APIKey == "" {
		if key, err := secrets.Get(secretsService, "model_api_key"); err == nil {
			cfg.Model.APIKey = strings.TrimSpace(key)
		}
	}
	if cfg.Server.Token == "" {
		if tok, err := secrets.Get(secretsService, "server_token"); err == nil {
			cfg.Server.Token = strings.TrimSpace(tok)
		}
	}

	return cfg, nil
}

// providerKeyFromEnv reads the conventional key variable of each provider.
func providerKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "", "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}
