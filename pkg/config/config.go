package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the archive enricher
type Config struct {
	// Twitter API and authorization settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Archive input settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Bulk fetch settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Result cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds API and authorization configuration
type TwitterConfig struct {
	// ClientID is the OAuth2 public client identifier.
	ClientID string `yaml:"client_id" json:"client_id"`

	// CallbackPort is the loopback port the authorization redirect
	// listener binds. The provider's redirect allow-list must include
	// it, so it defaults to a fixed port rather than a free one.
	CallbackPort int `yaml:"callback_port" json:"callback_port"`

	// Timeout bounds individual API requests.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ArchiveConfig holds archive input configuration
type ArchiveConfig struct {
	// Path to the account archive .zip. Usually given on the command
	// line instead.
	Path string `yaml:"path" json:"path"`
}

// FetchConfig holds bulk fetch configuration
type FetchConfig struct {
	// PageSize is the number of ids per bulk lookup request.
	PageSize int `yaml:"page_size" json:"page_size"`

	// Budget is the number of requests allowed per rate window.
	Budget int `yaml:"budget" json:"budget"`

	// Window is the length of the server's rate window.
	Window time.Duration `yaml:"window" json:"window"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	Path string `yaml:"path" json:"path"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	// Top is the number of entries shown per statistic.
	Top int `yaml:"top" json:"top"`

	// ReportPath is where the HTML report is written.
	ReportPath string `yaml:"report_path" json:"report_path"`

	// OpenBrowser controls whether the report opens automatically.
	OpenBrowser bool `yaml:"open_browser" json:"open_browser"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	OnComplete  bool   `yaml:"on_complete" json:"on_complete"`
	OnError     bool   `yaml:"on_error" json:"on_error"`
	OnRateLimit bool   `yaml:"on_rate_limit" json:"on_rate_limit"`
	Type        string `yaml:"type" json:"type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			ClientID:     "SUtlNTYydEhnVDJEOW5uSmh3Q0g6MTpjaQ",
			CallbackPort: 8180,
			Timeout:      30 * time.Second,
		},
		Archive: ArchiveConfig{
			Path: "",
		},
		Fetch: FetchConfig{
			PageSize: 100,
			Budget:   900,
			Window:   15 * time.Minute,
		},
		Cache: CacheConfig{
			Path: "cache.json",
		},
		Output: OutputConfig{
			Top:         5,
			ReportPath:  "ornithology.html",
			OpenBrowser: true,
		},
		Notifications: NotificationConfig{
			Enabled:     true,
			OnComplete:  true,
			OnError:     true,
			OnRateLimit: true,
			Type:        "terminal",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if clientID := os.Getenv("ORNITHOLOGY_CLIENT_ID"); clientID != "" {
		c.Twitter.ClientID = clientID
	}
	if port := os.Getenv("ORNITHOLOGY_CALLBACK_PORT"); port != "" {
		var val int
		fmt.Sscanf(port, "%d", &val)
		if val > 0 {
			c.Twitter.CallbackPort = val
		}
	}

	if archive := os.Getenv("ORNITHOLOGY_ARCHIVE"); archive != "" {
		c.Archive.Path = archive
	}
	if cache := os.Getenv("ORNITHOLOGY_CACHE"); cache != "" {
		c.Cache.Path = cache
	}

	if top := os.Getenv("ORNITHOLOGY_TOP"); top != "" {
		var val int
		fmt.Sscanf(top, "%d", &val)
		if val > 0 {
			c.Output.Top = val
		}
	}
	if report := os.Getenv("ORNITHOLOGY_REPORT"); report != "" {
		c.Output.ReportPath = report
	}

	if notifEnabled := os.Getenv("ORNITHOLOGY_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("ORNITHOLOGY_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("ORNITHOLOGY_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".ornithology.yaml",
		".ornithology.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "ornithology", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "ornithology", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".ornithology.yaml"),
		filepath.Join(os.Getenv("HOME"), ".ornithology.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.ClientID == "" {
		errs = append(errs, errors.New("OAuth client ID is required"))
	}
	if c.Twitter.CallbackPort < 0 || c.Twitter.CallbackPort > 65535 {
		errs = append(errs, errors.New("callback port must be between 0 and 65535"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Fetch.PageSize <= 0 {
		errs = append(errs, errors.New("fetch page size must be positive"))
	}
	if c.Fetch.PageSize > 100 {
		errs = append(errs, errors.New("fetch page size cannot exceed the server maximum of 100"))
	}
	if c.Fetch.Budget <= 0 {
		errs = append(errs, errors.New("fetch budget must be positive"))
	}
	if c.Fetch.Window <= 0 {
		errs = append(errs, errors.New("fetch window must be positive"))
	}

	if c.Cache.Path == "" {
		errs = append(errs, errors.New("cache path is required"))
	}

	if c.Output.Top <= 0 {
		errs = append(errs, errors.New("top count must be positive"))
	}
	if c.Output.ReportPath == "" {
		errs = append(errs, errors.New("report path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.Type)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if clientID, ok := flags["client-id"].(string); ok && clientID != "" {
		c.Twitter.ClientID = clientID
	}
	if port, ok := flags["callback-port"].(int); ok && port > 0 {
		c.Twitter.CallbackPort = port
	}
	if archive, ok := flags["archive"].(string); ok && archive != "" {
		c.Archive.Path = archive
	}
	if cache, ok := flags["cache"].(string); ok && cache != "" {
		c.Cache.Path = cache
	}
	if top, ok := flags["top"].(int); ok && top > 0 {
		c.Output.Top = top
	}
	if report, ok := flags["report"].(string); ok && report != "" {
		c.Output.ReportPath = report
	}
	if noBrowser, ok := flags["no-browser"].(bool); ok && noBrowser {
		c.Output.OpenBrowser = false
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".ornithology.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
