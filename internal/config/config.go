// Package config loads deepcut settings from an optional YAML file, a .env
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deepcut/internal/playlist"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRedirectURL       = "http://127.0.0.1:8080/callback"
	DefaultMarket            = "US"
	DefaultBatchPause        = 500 * time.Millisecond
	DefaultDetailConcurrency = 4
)

// Config is the full application configuration.
type Config struct {
	ClientID          string        `yaml:"client_id"`
	ClientSecret      string        `yaml:"client_secret"`
	RedirectURL       string        `yaml:"redirect_url"`
	TokenPath         string        `yaml:"token_path"`
	Market            string        `yaml:"market"`
	BatchPause        time.Duration `yaml:"batch_pause"`
	DetailConcurrency int           `yaml:"detail_concurrency"`
	Log               LogConfig     `yaml:"log"`
	Defaults          Defaults      `yaml:"defaults"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Defaults are used for build options the user does not pass.
type Defaults struct {
	AlbumTypes   []string `yaml:"album_types"`
	ExcludeShort bool     `yaml:"exclude_short"`
	Public       bool     `yaml:"public"`
	Strategy     string   `yaml:"strategy"`
	Mode         string   `yaml:"mode"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		RedirectURL:       DefaultRedirectURL,
		TokenPath:         filepath.Join(home, ".deepcut_token.json"),
		Market:            DefaultMarket,
		BatchPause:        DefaultBatchPause,
		DetailConcurrency: DefaultDetailConcurrency,
		Log: LogConfig{
			Path:       filepath.Join(home, ".cache", "deepcut", "deepcut.log"),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Defaults: Defaults{
			AlbumTypes: []string{"album", "single"},
			Strategy:   string(playlist.StrategyTrack),
			Mode:       string(playlist.ModeNew),
		},
	}
}

// DefaultPath is where the config file is looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "deepcut.yaml"
	}
	return filepath.Join(dir, "deepcut", "config.yaml")
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path means DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(expandHome(path))
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case errors.Is(err, os.ErrNotExist):
		return nil, &playlist.ConfigError{Message: fmt.Sprintf("configuration file not found: %s", path)}
	case err != nil:
		return nil, &playlist.ConfigError{Message: fmt.Sprintf("error reading configuration file: %v", err)}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &playlist.ConfigError{Message: fmt.Sprintf("error parsing YAML file %s: %v", path, err)}
		}
	}

	cfg.applyEnv()
	cfg.TokenPath = expandHome(cfg.TokenPath)
	cfg.Log.Path = expandHome(cfg.Log.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads .env files into the environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SPOTIFY_ID"); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_SECRET"); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv("DEEPCUT_REDIRECT_URL"); v != "" {
		c.RedirectURL = v
	}
	if v := os.Getenv("DEEPCUT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RedirectURL == "" {
		return &playlist.ConfigError{Message: "redirect_url is required"}
	}
	if c.TokenPath == "" {
		return &playlist.ConfigError{Message: "token_path is required"}
	}
	if c.BatchPause < 0 {
		return &playlist.ConfigError{Message: fmt.Sprintf("batch_pause must not be negative, got %s", c.BatchPause)}
	}
	if c.DetailConcurrency < 1 {
		return &playlist.ConfigError{Message: fmt.Sprintf("detail_concurrency must be at least 1, got %d", c.DetailConcurrency)}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &playlist.ConfigError{Message: fmt.Sprintf("invalid log level %q", c.Log.Level)}
	}
	if _, err := playlist.ParseAlbumTypes(c.Defaults.AlbumTypes); err != nil {
		return err
	}
	if _, err := playlist.ParseStrategy(c.Defaults.Strategy); err != nil {
		return err
	}
	if _, err := playlist.ParseMode(c.Defaults.Mode); err != nil {
		return err
	}
	return nil
}

// RequireCredentials reports a ConfigError when the app credentials are missing.
func (c *Config) RequireCredentials() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return &playlist.ConfigError{Message: "spotify client ID and secret must be provided in the config file or set in SPOTIFY_ID and SPOTIFY_SECRET"}
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
