package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Player    PlayerConfig    `mapstructure:"player"`
	Library   LibraryConfig   `mapstructure:"library"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the Xtream panel credentials
type ServerConfig struct {
	URL      string `mapstructure:"url"` // Panel base URL, no trailing slash
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // empty for auto-detection
	Args    []string `mapstructure:"args"`
}

// LibraryConfig holds catalog cache and sync settings
type LibraryConfig struct {
	CacheDir          string        `mapstructure:"cache_dir"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// RecommendConfig holds recommendation settings
type RecommendConfig struct {
	PrimaryLanguage string `mapstructure:"primary_language"` // category-name prefix, e.g. "en -"
	Limit           int    `mapstructure:"limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Args: []string{},
		},
		Library: LibraryConfig{
			CacheDir:          defaultCachePath(),
			RequestTimeout:    30 * time.Second,
			RequestsPerSecond: 5,
		},
		Recommend: RecommendConfig{
			PrimaryLanguage: "en -",
			Limit:           40,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel", "reel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "reel.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "cache")
	}
}

// ConfigStore reads and writes the config file through a viper instance
type ConfigStore struct {
	v   *viper.Viper
	dir string
}

// NewConfigStore creates a store rooted at dir. An empty dir uses the OS default.
func NewConfigStore(dir string) *ConfigStore {
	if dir == "" {
		dir = defaultConfigPath()
	}
	return &ConfigStore{v: viper.New(), dir: dir}
}

// Path returns the config file path
func (s *ConfigStore) Path() string {
	return filepath.Join(s.dir, "config.yaml")
}

// Load reads configuration from file and environment
func (s *ConfigStore) Load() (*Config, error) {
	cfg := DefaultConfig()
	v := s.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(s.dir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. REEL_SERVER_URL
	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"server.url", "server.username", "server.password", "logging.level", "library.cache_dir"} {
		_ = v.BindEnv(key)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Server.URL = NormalizeServerURL(cfg.Server.URL)
	return cfg, nil
}

// Save writes the configuration to file
func (s *ConfigStore) Save(cfg *Config) error {
	v := s.v

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", NormalizeServerURL(cfg.Server.URL))
	v.Set("server.username", cfg.Server.Username)
	v.Set("server.password", cfg.Server.Password)

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	v.Set("library.cache_dir", cfg.Library.CacheDir)
	v.Set("library.request_timeout", cfg.Library.RequestTimeout.String())
	v.Set("library.requests_per_second", cfg.Library.RequestsPerSecond)

	v.Set("recommend.primary_language", cfg.Recommend.PrimaryLanguage)
	v.Set("recommend.limit", cfg.Recommend.Limit)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	return s.write()
}

// ClearServer removes the server URL and credentials while preserving
// other settings (player, library, logging)
func (s *ConfigStore) ClearServer() error {
	s.v.Set("server.url", "")
	s.v.Set("server.username", "")
	s.v.Set("server.password", "")
	return s.write()
}

func (s *ConfigStore) write() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.Path()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds the panel password
	if err := os.Chmod(s.Path(), 0o600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}
	return nil
}

// NormalizeServerURL trims whitespace and trailing slashes
func NormalizeServerURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// IsConfigured returns true if the server URL and credentials are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Username != "" && c.Server.Password != ""
}

// CachePath returns the cache directory, expanding a leading ~
func (c *Config) CachePath() string {
	if c.Library.CacheDir == "" {
		return defaultCachePath()
	}
	return expandHome(c.Library.CacheDir)
}

// ClearCache removes a cache directory and everything in it
func ClearCache(cachePath string) error {
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
