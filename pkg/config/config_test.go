package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Twitter.ClientID == "" {
		t.Error("Expected a default client ID")
	}

	if config.Twitter.CallbackPort != 8180 {
		t.Errorf("Expected default callback port to be 8180, got %d", config.Twitter.CallbackPort)
	}

	if config.Fetch.PageSize != 100 {
		t.Errorf("Expected default page size to be 100, got %d", config.Fetch.PageSize)
	}

	if config.Fetch.Budget != 900 {
		t.Errorf("Expected default budget to be 900, got %d", config.Fetch.Budget)
	}

	if config.Fetch.Window != 15*time.Minute {
		t.Errorf("Expected default window to be 15m, got %v", config.Fetch.Window)
	}

	if config.Cache.Path != "cache.json" {
		t.Errorf("Expected default cache path to be cache.json, got %s", config.Cache.Path)
	}

	if config.Output.Top != 5 {
		t.Errorf("Expected default top count to be 5, got %d", config.Output.Top)
	}

	if config.Output.ReportPath != "ornithology.html" {
		t.Errorf("Expected default report path to be ornithology.html, got %s", config.Output.ReportPath)
	}

	if !config.Output.OpenBrowser {
		t.Error("Expected the report to open by default")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected the default config to validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("ORNITHOLOGY_CLIENT_ID", "env-client-id")
	os.Setenv("ORNITHOLOGY_CALLBACK_PORT", "9000")
	os.Setenv("ORNITHOLOGY_ARCHIVE", "/tmp/archive.zip")
	os.Setenv("ORNITHOLOGY_CACHE", "/tmp/cache.json")
	os.Setenv("ORNITHOLOGY_TOP", "12")
	os.Setenv("ORNITHOLOGY_REPORT", "/tmp/report.html")
	os.Setenv("ORNITHOLOGY_NOTIFICATIONS_ENABLED", "false")
	os.Setenv("ORNITHOLOGY_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("ORNITHOLOGY_CLIENT_ID")
		os.Unsetenv("ORNITHOLOGY_CALLBACK_PORT")
		os.Unsetenv("ORNITHOLOGY_ARCHIVE")
		os.Unsetenv("ORNITHOLOGY_CACHE")
		os.Unsetenv("ORNITHOLOGY_TOP")
		os.Unsetenv("ORNITHOLOGY_REPORT")
		os.Unsetenv("ORNITHOLOGY_NOTIFICATIONS_ENABLED")
		os.Unsetenv("ORNITHOLOGY_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Twitter.ClientID != "env-client-id" {
		t.Errorf("Expected client ID to be env-client-id, got %s", config.Twitter.ClientID)
	}

	if config.Twitter.CallbackPort != 9000 {
		t.Errorf("Expected callback port to be 9000, got %d", config.Twitter.CallbackPort)
	}

	if config.Archive.Path != "/tmp/archive.zip" {
		t.Errorf("Expected archive path to be /tmp/archive.zip, got %s", config.Archive.Path)
	}

	if config.Cache.Path != "/tmp/cache.json" {
		t.Errorf("Expected cache path to be /tmp/cache.json, got %s", config.Cache.Path)
	}

	if config.Output.Top != 12 {
		t.Errorf("Expected top count to be 12, got %d", config.Output.Top)
	}

	if config.Output.ReportPath != "/tmp/report.html" {
		t.Errorf("Expected report path to be /tmp/report.html, got %s", config.Output.ReportPath)
	}

	if config.Notifications.Enabled != false {
		t.Errorf("Expected notifications to be disabled, got %v", config.Notifications.Enabled)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
twitter:
  client_id: file-client-id
  callback_port: 8181
fetch:
  page_size: 50
  budget: 450
  window: 10m
output:
  top: 7
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Twitter.ClientID != "file-client-id" {
		t.Errorf("Expected client ID to be file-client-id, got %s", config.Twitter.ClientID)
	}

	if config.Twitter.CallbackPort != 8181 {
		t.Errorf("Expected callback port to be 8181, got %d", config.Twitter.CallbackPort)
	}

	if config.Fetch.PageSize != 50 {
		t.Errorf("Expected page size to be 50, got %d", config.Fetch.PageSize)
	}

	if config.Fetch.Window != 10*time.Minute {
		t.Errorf("Expected window to be 10m, got %v", config.Fetch.Window)
	}

	if config.Output.Top != 7 {
		t.Errorf("Expected top count to be 7, got %d", config.Output.Top)
	}

	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level to be warn, got %s", config.Logging.Level)
	}

	// Untouched sections keep their defaults.
	if config.Cache.Path != "cache.json" {
		t.Errorf("Expected cache path to keep its default, got %s", config.Cache.Path)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	err := config.LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected an error for a missing explicit config file")
	}
}

func TestLoadFromFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("twitter: [not, a, mapping"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	err := config.LoadFromFile(path)
	if err == nil {
		t.Error("Expected an error for a malformed config file")
	}
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*Config)) *Config {
		config := DefaultConfig()
		f(config)
		return config
	}

	tests := []struct {
		name      string
		config    *Config
		wantError string
	}{
		{
			name:   "valid config",
			config: DefaultConfig(),
		},
		{
			name:      "missing client ID",
			config:    mutate(func(c *Config) { c.Twitter.ClientID = "" }),
			wantError: "client ID",
		},
		{
			name:      "negative callback port",
			config:    mutate(func(c *Config) { c.Twitter.CallbackPort = -1 }),
			wantError: "callback port",
		},
		{
			name:      "zero page size",
			config:    mutate(func(c *Config) { c.Fetch.PageSize = 0 }),
			wantError: "page size",
		},
		{
			name:      "oversized page",
			config:    mutate(func(c *Config) { c.Fetch.PageSize = 101 }),
			wantError: "server maximum",
		},
		{
			name:      "zero budget",
			config:    mutate(func(c *Config) { c.Fetch.Budget = 0 }),
			wantError: "budget",
		},
		{
			name:      "zero window",
			config:    mutate(func(c *Config) { c.Fetch.Window = 0 }),
			wantError: "window",
		},
		{
			name:      "empty cache path",
			config:    mutate(func(c *Config) { c.Cache.Path = "" }),
			wantError: "cache path",
		},
		{
			name:      "zero top count",
			config:    mutate(func(c *Config) { c.Output.Top = 0 }),
			wantError: "top count",
		},
		{
			name:      "bad log level",
			config:    mutate(func(c *Config) { c.Logging.Level = "verbose" }),
			wantError: "log level",
		},
		{
			name:      "bad notification type",
			config:    mutate(func(c *Config) { c.Notifications.Type = "carrier-pigeon" }),
			wantError: "notification type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Expected config to validate, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected a validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantError, err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Twitter.ClientID = "saved-client-id"
	config.Output.Top = 9

	if err := config.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.Twitter.ClientID != "saved-client-id" {
		t.Errorf("Expected reloaded client ID to be saved-client-id, got %s", reloaded.Twitter.ClientID)
	}

	if reloaded.Output.Top != 9 {
		t.Errorf("Expected reloaded top count to be 9, got %d", reloaded.Output.Top)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"client-id":     "flag-client-id",
		"callback-port": 8282,
		"archive":       "tweets.zip",
		"cache":         "other-cache.json",
		"top":           3,
		"report":        "out.html",
		"no-browser":    true,
		"log-level":     "error",
		"log-file":      "/tmp/ornithology.log",
	})

	if config.Twitter.ClientID != "flag-client-id" {
		t.Errorf("Expected client ID to be flag-client-id, got %s", config.Twitter.ClientID)
	}
	if config.Twitter.CallbackPort != 8282 {
		t.Errorf("Expected callback port to be 8282, got %d", config.Twitter.CallbackPort)
	}
	if config.Archive.Path != "tweets.zip" {
		t.Errorf("Expected archive path to be tweets.zip, got %s", config.Archive.Path)
	}
	if config.Cache.Path != "other-cache.json" {
		t.Errorf("Expected cache path to be other-cache.json, got %s", config.Cache.Path)
	}
	if config.Output.Top != 3 {
		t.Errorf("Expected top count to be 3, got %d", config.Output.Top)
	}
	if config.Output.ReportPath != "out.html" {
		t.Errorf("Expected report path to be out.html, got %s", config.Output.ReportPath)
	}
	if config.Output.OpenBrowser {
		t.Error("Expected no-browser flag to disable opening the report")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
	if config.Logging.File != "/tmp/ornithology.log" {
		t.Errorf("Expected log file to be /tmp/ornithology.log, got %s", config.Logging.File)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
twitter:
  client_id: file-client-id
output:
  top: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	os.Setenv("ORNITHOLOGY_CLIENT_ID", "env-client-id")
	defer os.Unsetenv("ORNITHOLOGY_CLIENT_ID")

	// Flags beat the environment, which beats the file.
	config, err := Load(path, map[string]interface{}{
		"top": 3,
	})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Twitter.ClientID != "env-client-id" {
		t.Errorf("Expected environment to override the file, got %s", config.Twitter.ClientID)
	}

	if config.Output.Top != 3 {
		t.Errorf("Expected flag to override the file, got %d", config.Output.Top)
	}
}
