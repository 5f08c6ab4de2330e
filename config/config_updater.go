package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// example config copied over when no config exists yet
var exampleConfigPath = "example-config.toml"

// VerifyConfigOnStartup makes sure a config file exists and carries every field
// the current version knows about. Errors are logged, LoadConfig reports the
// rest.
func VerifyConfigOnStartup(configPath string) {
	if err := EnsureConfigExists(configPath); err != nil {
		log.Printf("Error ensuring config exists: %v", err)
		return
	}
	if err := EnsureConfigUpdated(configPath); err != nil {
		log.Printf("Error updating config: %v", err)
	}
}

// EnsureConfigExists creates configPath when missing, copying a local
// example-config.toml if present and falling back to the defaults.
func EnsureConfigExists(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), os.ModePerm); err != nil {
		return err
	}

	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		return err
	}

	if _, err := os.Stat(exampleConfigPath); err == nil {
		copyErr := copyFile(exampleConfigPath, configPath)
		if copyErr == nil {
			return nil
		}
		log.Printf("Failed to copy example config: %v. Writing defaults instead.", copyErr)
	}

	return SaveConfig(configPath, CreateDefaultConfig())
}

// EnsureConfigUpdated fills in keys added after the file was written. Values the
// user set explicitly are never touched.
func EnsureConfigUpdated(configPath string) error {
	var raw map[string]any
	if _, err := toml.DecodeFile(configPath, &raw); err != nil {
		return err
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return err
	}

	defaults := CreateDefaultConfig()
	isUpdated := false

	missing := func(section, key string) bool {
		m, ok := raw[section].(map[string]any)
		if !ok {
			return true
		}
		_, exists := m[key]
		return !exists
	}

	if missing("api", "base_url") {
		cfg.API.BaseURL = defaults.API.BaseURL
		isUpdated = true
	}
	if missing("api", "stream_url") {
		cfg.API.StreamURL = defaults.API.StreamURL
		isUpdated = true
	}
	if missing("api", "page_size") {
		cfg.API.PageSize = defaults.API.PageSize
		isUpdated = true
	}
	if missing("api", "requests_per_minute") {
		cfg.API.RequestsPerMinute = defaults.API.RequestsPerMinute
		isUpdated = true
	}
	if missing("api", "timeout_seconds") {
		cfg.API.TimeoutSeconds = defaults.API.TimeoutSeconds
		isUpdated = true
	}
	if missing("options", "save_location") {
		cfg.Options.SaveLocation = defaults.Options.SaveLocation
		isUpdated = true
	}
	if missing("options", "max_post_length") {
		cfg.Options.MaxPostLength = defaults.Options.MaxPostLength
		isUpdated = true
	}
	if missing("options", "cache_limit") {
		cfg.Options.CacheLimit = defaults.Options.CacheLimit
		isUpdated = true
	}
	if _, ok := raw["notifications"]; !ok {
		cfg.Notifications = defaults.Notifications
		isUpdated = true
	}

	if !isUpdated {
		return nil
	}
	return SaveConfig(configPath, &cfg)
}

func copyFile(srcPath, dstPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
