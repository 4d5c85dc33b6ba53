package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API      APIConfig
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
}

// APIConfig holds remote service settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	PublicURL string        `mapstructure:"public_url"`
	TokenEnv  string        `mapstructure:"token_env"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig controls the zap file logger.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme      string
	StartRoute string `mapstructure:"start_route"`
	PageSize   int    `mapstructure:"page_size"`
}

// ResolveToken returns the bearer token, preferring the configured env var.
func (c APIConfig) ResolveToken() string {
	if env := strings.TrimSpace(c.TokenEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.Token)
}

// Path returns the config file location. STUDYDECK_CONFIG wins over the
// per-user default.
func Path() string {
	if p := os.Getenv("STUDYDECK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix STUDYDECK_.
func Load() (Config, error) {
	return LoadFile(os.Getenv("STUDYDECK_CONFIG"))
}

// LoadFile is Load with an explicit config file. An empty path searches the
// per-user config directory.
func LoadFile(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.public_url", "http://localhost:3000")
	v.SetDefault("api.token_env", "STUDYDECK_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.retries", 0)
	v.SetDefault("database.path", filepath.Join(dataDir(), "studydeck.db"))
	v.SetDefault("log.path", filepath.Join(dataDir(), "studydeck.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.theme", "dark")
	v.SetDefault("ui.start_route", "/home")
	v.SetDefault("ui.page_size", 6)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STUDYDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if c.API.Retries < 0 {
		return fmt.Errorf("config: api.retries must be >= 0, got %d", c.API.Retries)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light":
	default:
		return fmt.Errorf("config: ui.theme must be dark or light, got %q", c.UI.Theme)
	}
	if !strings.HasPrefix(c.UI.StartRoute, "/") {
		return fmt.Errorf("config: ui.start_route must start with /, got %q", c.UI.StartRoute)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("config: ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The token is never written; it belongs in the environment.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.public_url", cfg.API.PublicURL)
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.retries", cfg.API.Retries)
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.start_route", cfg.UI.StartRoute)
	v.Set("ui.page_size", cfg.UI.PageSize)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.Database.Path, err = homedir.Expand(c.Database.Path); err != nil {
		return fmt.Errorf("expand database.path: %w", err)
	}
	if c.Log.Path, err = homedir.Expand(c.Log.Path); err != nil {
		return fmt.Errorf("expand log.path: %w", err)
	}
	return nil
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "studydeck")
	}
	home, _ := homedir.Dir()
	return filepath.Join(home, ".config", "studydeck")
}

func dataDir() string {
	home, _ := homedir.Dir()
	return filepath.Join(home, ".local", "share", "studydeck")
}
