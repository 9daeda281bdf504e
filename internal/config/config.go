// Package config loads host configuration for the tendril commands.
// Values are resolved in three layers: built-in defaults, then a YAML or
// JSON file, then environment variables. Later layers win.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gratitude5dee/tendril/internal/logging"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

// DefaultPath is consulted when no config file is named explicitly.
const DefaultPath = "tendril.yaml"

// Config holds runtime settings for the tendril host commands.
type Config struct {
	SecretName string `yaml:"secret_name" json:"secret_name"`
	Model      string `yaml:"model" json:"model"`

	Fal     FalConfig     `yaml:"fal" json:"fal"`
	Secrets SecretsConfig `yaml:"secrets" json:"secrets"`
	Session SessionConfig `yaml:"session" json:"session"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// FalConfig points the inference client at an endpoint.
type FalConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	App     string `yaml:"app" json:"app"`
	Sync    bool   `yaml:"sync" json:"sync"`
}

// SecretsConfig locates the platform secrets service.
type SecretsConfig struct {
	URL string `yaml:"url" json:"url"`
}

// SessionConfig tells the host where to find the editor session token.
type SessionConfig struct {
	TokenEnv  string `yaml:"token_env" json:"token_env"`
	TokenFile string `yaml:"token_file" json:"token_file"`
}

// StoreConfig selects the credential storage backend.
type StoreConfig struct {
	Backend       string      `yaml:"backend" json:"backend"`
	Path          string      `yaml:"path" json:"path"`
	EncryptionKey string      `yaml:"encryption_key" json:"encryption_key"`
	Redis         RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// ServerConfig holds settings for the HTTP host.
type ServerConfig struct {
	Address string `yaml:"address" json:"address"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	JSON  bool   `yaml:"json" json:"json"`
}

func defaults() *Config {
	return &Config{
		SecretName: "FAL_KEY",
		Session: SessionConfig{
			TokenEnv: "TENDRIL_ACCESS_TOKEN",
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load resolves the configuration. An empty path means "use DefaultPath if
// it exists"; a named path must exist.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Unmarshalling over the defaults keeps absent keys untouched.
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	case os.IsNotExist(err) && !explicit:
		// No file is fine; defaults plus environment apply.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	overlayEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayEnv(cfg *Config) {
	envString("TENDRIL_SECRET_NAME", &cfg.SecretName)
	envString("TENDRIL_MODEL", &cfg.Model)
	envString("TENDRIL_FAL_URL", &cfg.Fal.BaseURL)
	envString("TENDRIL_FAL_APP", &cfg.Fal.App)
	envBool("TENDRIL_FAL_SYNC", &cfg.Fal.Sync)
	envString("TENDRIL_SECRETS_URL", &cfg.Secrets.URL)
	envString("TENDRIL_SESSION_TOKEN_FILE", &cfg.Session.TokenFile)
	envString("TENDRIL_STORE", &cfg.Store.Backend)
	envString("TENDRIL_STORE_PATH", &cfg.Store.Path)
	envString("TENDRIL_ENCRYPTION_KEY", &cfg.Store.EncryptionKey)
	envString("TENDRIL_REDIS_ADDR", &cfg.Store.Redis.Address)
	envString("TENDRIL_REDIS_PASSWORD", &cfg.Store.Redis.Password)
	envInt("TENDRIL_REDIS_DB", &cfg.Store.Redis.DB)
	envString("TENDRIL_ADDR", &cfg.Server.Address)
	envString("TENDRIL_LOG_LEVEL", &cfg.Log.Level)
	envBool("TENDRIL_LOG_JSON", &cfg.Log.JSON)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file or redis)", c.Store.Backend)
	}

	if key := c.Store.EncryptionKey; key != "" && len(key) != 32 {
		return fmt.Errorf("encryption key must be exactly 32 bytes, got %d", len(key))
	}

	if c.Model != "" && !domain.Model(c.Model).Supported() {
		return fmt.Errorf("model %q is not in the catalog", c.Model)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}
