/*
Package config manages the TOML config for TopicServe.

A missing file is created with the defaults. A file that fails to decode is
read again section by section so that valid values still apply.
*/
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/topicserve/internal/utils"
	"github.com/charmbracelet/log"
)

const FileName = "config.toml"

// MaxLimitCap bounds server.max_limit; suggestion ranks go out as uint16.
const MaxLimitCap = math.MaxUint16

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Suggest SuggestConfig `toml:"suggest"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Store   StoreConfig   `toml:"store"`
}

// ServerConfig bounds IPC requests.
type ServerConfig struct {
	MaxLimit  int `toml:"max_limit"`
	MaxPrefix int `toml:"max_prefix"`
	MaxTopic  int `toml:"max_topic"`
}

// SuggestConfig controls the keyword dropdown.
type SuggestConfig struct {
	Limit       int    `toml:"limit"`
	Order       string `toml:"order"`
	History     bool   `toml:"history"`
	HistorySize int    `toml:"history_size"`
}

// GeminiConfig selects models and throttles calls to the AI service.
type GeminiConfig struct {
	Model         string `toml:"model"`
	ImageModel    string `toml:"image_model"`
	APIKeyEnv     string `toml:"api_key_env"`
	Images        bool   `toml:"images"`
	RatePerMinute int    `toml:"rate_per_minute"`
	ImageWorkers  int    `toml:"image_workers"`
	Timeout       string `toml:"timeout"`
}

// StoreConfig locates the reader database. A relative path is resolved
// against the config directory.
type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:  64,
			MaxPrefix: 60,
			MaxTopic:  120,
		},
		Suggest: SuggestConfig{
			Limit:       5,
			Order:       "traversal",
			History:     true,
			HistorySize: 200,
		},
		Gemini: GeminiConfig{
			Model:         "gemini-2.5-flash",
			ImageModel:    "imagen-4.0-generate-001",
			APIKeyEnv:     "GEMINI_API_KEY",
			Images:        true,
			RatePerMinute: 10,
			ImageWorkers:  3,
			Timeout:       "90s",
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "topicserve.db",
		},
	}
}

// TimeoutDuration parses Gemini.Timeout, falling back to 90s.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d < 0 {
		if c.Gemini.Timeout != "" {
			log.Warnf("Invalid gemini.timeout %q, using 90s", c.Gemini.Timeout)
		}
		return 90 * time.Second
	}
	return d
}

// APIKey reads the key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.Gemini.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Gemini.APIKeyEnv)
}

// Validate rejects values that cannot work at all.
func (c *Config) Validate() error {
	if c.Server.MaxLimit < 1 || c.Server.MaxLimit > MaxLimitCap {
		return fmt.Errorf("server.max_limit must be within 1..%d, got %d", MaxLimitCap, c.Server.MaxLimit)
	}
	if c.Server.MaxPrefix < 1 {
		return fmt.Errorf("server.max_prefix must be positive, got %d", c.Server.MaxPrefix)
	}
	if c.Suggest.Limit < 1 || c.Suggest.Limit > c.Server.MaxLimit {
		return fmt.Errorf("suggest.limit must be within 1..%d, got %d", c.Server.MaxLimit, c.Suggest.Limit)
	}
	if c.Gemini.RatePerMinute < 0 {
		return fmt.Errorf("gemini.rate_per_minute must not be negative")
	}
	return nil
}

// DefaultConfigPath returns [config dir]/topicserve/config.toml or a fallback.
func DefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config
// 2. Default path: [UserConfigDir]/topicserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every section that still decodes
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		extractSuggestConfig(section, &config.Suggest)
	}
	if section, ok := utils.ExtractSection(tempConfig, "gemini"); ok {
		extractGeminiConfig(section, &config.Gemini)
	}
	if section, ok := utils.ExtractSection(tempConfig, "store"); ok {
		extractStoreConfig(section, &config.Store)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_topic"); ok {
		server.MaxTopic = val
	}
}

func extractSuggestConfig(data map[string]any, s *SuggestConfig) {
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		s.Limit = val
	}
	if val, ok := utils.ExtractString(data, "order"); ok {
		s.Order = val
	}
	if val, ok := utils.ExtractBool(data, "history"); ok {
		s.History = val
	}
	if val, ok := utils.ExtractInt64(data, "history_size"); ok {
		s.HistorySize = val
	}
}

func extractGeminiConfig(data map[string]any, g *GeminiConfig) {
	if val, ok := utils.ExtractString(data, "model"); ok {
		g.Model = val
	}
	if val, ok := utils.ExtractString(data, "image_model"); ok {
		g.ImageModel = val
	}
	if val, ok := utils.ExtractString(data, "api_key_env"); ok {
		g.APIKeyEnv = val
	}
	if val, ok := utils.ExtractBool(data, "images"); ok {
		g.Images = val
	}
	if val, ok := utils.ExtractInt64(data, "rate_per_minute"); ok {
		g.RatePerMinute = val
	}
	if val, ok := utils.ExtractInt64(data, "image_workers"); ok {
		g.ImageWorkers = val
	}
	if val, ok := utils.ExtractString(data, "timeout"); ok {
		g.Timeout = val
	}
}

func extractStoreConfig(data map[string]any, s *StoreConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		s.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "path"); ok {
		s.Path = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := DefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
