package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPageSize          = 25
	DefaultMaxPostLength     = 280
	DefaultCacheLimit        = 15
	DefaultRequestsPerMinute = 60
	DefaultTimeoutSeconds    = 30
)

type Config struct {
	Account       AccountConfig       `toml:"account"`
	API           APIConfig           `toml:"api"`
	Options       OptionsConfig       `toml:"options"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type AccountConfig struct {
	AuthToken string `toml:"auth_token"`
	UserAgent string `toml:"user_agent"`
}

type APIConfig struct {
	BaseURL           string `toml:"base_url"`
	StreamURL         string `toml:"stream_url"` // Optional, live updates are off when empty
	PageSize          int    `toml:"page_size"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

type OptionsConfig struct {
	SaveLocation  string `toml:"save_location"`
	MaxPostLength int    `toml:"max_post_length"` // 140 on older API revisions
	CacheLimit    int    `toml:"cache_limit"`
}

type NotificationsConfig struct {
	Enabled      bool `toml:"enabled"`
	SystemNotify bool `toml:"system_notify"`
}

// Timeout returns the per-request timeout for API calls.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func GetConfigPath() string {
	currentDirConfig := "config.toml"
	if _, err := os.Stat(currentDirConfig); err == nil {
		return currentDirConfig
	}
	return filepath.Join(GetConfigDir(), "config.toml")
}

func GetConfigDir() string {
	var configDir string
	var err error

	if runtime.GOOS == "darwin" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		configDir = filepath.Join(homeDir, ".config")
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			log.Fatal(err)
		}
	}

	return filepath.Join(configDir, "chirp")
}

// SaveConfig writes cfg to path, creating the parent directory if needed.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(cfg)
}

func LoadConfig(configPath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, err
	}

	if config.Account.AuthToken == "" {
		return nil, fmt.Errorf("auth_token is empty in %v", configPath)
	}
	if config.Account.UserAgent == "" {
		return nil, fmt.Errorf("user_agent is empty in %v", configPath)
	}
	if config.Options.SaveLocation == "" {
		return nil, fmt.Errorf("save_location is empty in %v", configPath)
	}
	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("base_url is empty in %v", configPath)
	}

	config.Options.SaveLocation = filepath.ToSlash(config.Options.SaveLocation)
	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/") + "/"
	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.PageSize <= 0 {
		cfg.API.PageSize = DefaultPageSize
	}
	if cfg.API.RequestsPerMinute <= 0 {
		cfg.API.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Options.MaxPostLength <= 0 {
		cfg.Options.MaxPostLength = DefaultMaxPostLength
	}
	if cfg.Options.CacheLimit <= 0 {
		cfg.Options.CacheLimit = DefaultCacheLimit
	}
}

func CreateDefaultConfig() *Config {
	saveLocation := filepath.ToSlash(GetConfigDir())
	return &Config{
		Account: AccountConfig{
			AuthToken: "",
			UserAgent: "chirp/1.0",
		},
		API: APIConfig{
			BaseURL:           "https://api.twitter.com/1.1/",
			StreamURL:         "",
			PageSize:          DefaultPageSize,
			RequestsPerMinute: DefaultRequestsPerMinute,
			TimeoutSeconds:    DefaultTimeoutSeconds,
		},
		Options: OptionsConfig{
			SaveLocation:  saveLocation,
			MaxPostLength: DefaultMaxPostLength,
			CacheLimit:    DefaultCacheLimit,
		},
		Notifications: NotificationsConfig{
			Enabled:      false,
			SystemNotify: true,
		},
	}
}
