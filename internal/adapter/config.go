package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/mmcdole/vinyl/internal/rowcache"
	"github.com/mmcdole/vinyl/internal/store"
)

// Config holds all application configuration
type Config struct {
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	PlayCounts PlayCountsConfig `mapstructure:"playcounts"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Collation  CollationConfig  `mapstructure:"collation"`
	Debug      DebugConfig      `mapstructure:"debug"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// CatalogConfig locates the SQLite catalog
type CatalogConfig struct {
	Path      string `mapstructure:"path"`
	MusicRoot string `mapstructure:"music_root"` // Default directory for "index"
}

// PlayCountsConfig holds play-count ledger configuration
type PlayCountsConfig struct {
	Path     string `mapstructure:"path"`      // Empty keeps counts in memory only
	TopLimit int    `mapstructure:"top_limit"` // Songs ranked by the "most played" sort
}

// CacheConfig holds artwork cache configuration
type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// CollationConfig selects the locale of collation keys
type CollationConfig struct {
	Language string `mapstructure:"language"` // BCP 47 tag, "und" for none
}

// DebugConfig holds diagnostic switches
type DebugConfig struct {
	DumpQueries bool `mapstructure:"dump_queries"` // Log every query and its rows
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Catalog: CatalogConfig{
			Path:      filepath.Join(defaultDataPath(), "catalog.db"),
			MusicRoot: filepath.Join(home, "Music"),
		},
		PlayCounts: PlayCountsConfig{
			Path:     filepath.Join(defaultDataPath(), "playcounts.db"),
			TopLimit: store.DefaultTopLimit,
		},
		Cache: CacheConfig{
			Capacity: rowcache.DefaultCapacity,
		},
		Collation: CollationConfig{
			Language: "und",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "vinyl.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "vinyl")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vinyl")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vinyl")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vinyl")
	}
}

// ConfigPath returns the directory config.yaml is read from and written to
func ConfigPath() string {
	return defaultConfigPath()
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(defaultConfigPath())
}

// LoadConfigFrom loads config.yaml from dir (or the working directory),
// applying VINYL_* environment overrides such as VINYL_CATALOG_PATH.
func LoadConfigFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	// Defaults must be registered for AutomaticEnv to reach Unmarshal
	setAll(v, cfg)

	// Environment variable overrides
	v.SetEnvPrefix("VINYL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(defaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as dir/config.yaml
func SaveConfigTo(dir string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	// Set fields individually to ensure correct key names (snake_case)
	for key, value := range keys(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setAll(v *viper.Viper, cfg *Config) {
	for key, value := range keys(cfg) {
		v.SetDefault(key, value)
	}
}

func keys(cfg *Config) map[string]any {
	return map[string]any{
		"catalog.path":         cfg.Catalog.Path,
		"catalog.music_root":   cfg.Catalog.MusicRoot,
		"playcounts.path":      cfg.PlayCounts.Path,
		"playcounts.top_limit": cfg.PlayCounts.TopLimit,
		"cache.capacity":       cfg.Cache.Capacity,
		"collation.language":   cfg.Collation.Language,
		"debug.dump_queries":   cfg.Debug.DumpQueries,
		"logging.file":         cfg.Logging.File,
		"logging.level":        cfg.Logging.Level,
	}
}
