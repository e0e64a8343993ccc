// Package config provides configuration management for the category page monitor.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearTwilioEnv isolates tests from credentials set in the environment.
func clearTwilioEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvTwilioAccountSID, EnvTwilioAuthToken, EnvTwilioPhoneFrom, EnvTwilioPhoneTo} {
		t.Setenv(name, "")
	}
}

// writeTempFile writes content to a file in a per-test directory.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	clearTwilioEnv(t)
	content := `
monitor:
  min_subcategories: 6
  targets:
    - "https://www.example.com/eu/mens/"
state:
  path: "/tmp/state.json"
`
	path := writeTempFile(t, "config.yaml", content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify file values
	if cfg.Monitor.MinSubcategories != 6 {
		t.Errorf("MinSubcategories = %v, want 6", cfg.Monitor.MinSubcategories)
	}
	if len(cfg.Monitor.Targets) != 1 || cfg.Monitor.Targets[0] != "https://www.example.com/eu/mens/" {
		t.Errorf("Targets = %v, want single mens URL", cfg.Monitor.Targets)
	}
	if cfg.State.Path != "/tmp/state.json" {
		t.Errorf("State.Path = %v, want /tmp/state.json", cfg.State.Path)
	}

	// Verify defaults
	if cfg.Monitor.Selector != DefaultSelector {
		t.Errorf("Selector = %v, want %v", cfg.Monitor.Selector, DefaultSelector)
	}
	if cfg.Browser.NavigationTimeout != 60*time.Second {
		t.Errorf("NavigationTimeout = %v, want 60s", cfg.Browser.NavigationTimeout)
	}
	if cfg.Browser.SelectorTimeout != 30*time.Second {
		t.Errorf("SelectorTimeout = %v, want 30s", cfg.Browser.SelectorTimeout)
	}
	if cfg.Browser.ViewportWidth != 1920 || cfg.Browser.ViewportHeight != 1080 {
		t.Errorf("Viewport = %dx%d, want 1920x1080", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.Notify.SMS.Prefix != "MW Alert" {
		t.Errorf("SMS prefix = %v, want MW Alert", cfg.Notify.SMS.Prefix)
	}
	if cfg.Monitor.RealertAfter != 0 {
		t.Errorf("RealertAfter = %v, want 0", cfg.Monitor.RealertAfter)
	}
	if cfg.Notify.SMS.IsConfigured() {
		t.Error("SMS should not be configured without credentials")
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearTwilioEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Monitor.Targets) != len(DefaultTargets) {
		t.Errorf("Targets = %d, want %d", len(cfg.Monitor.Targets), len(DefaultTargets))
	}
	if cfg.Notify.Webhook.MaxRetries != 0 || cfg.Notify.Webhook.RetryDelay != time.Second {
		t.Errorf("Webhook retry = %d/%v, want 0/1s", cfg.Notify.Webhook.MaxRetries, cfg.Notify.Webhook.RetryDelay)
	}
	if cfg.Monitor.MinSubcategories != 8 {
		t.Errorf("MinSubcategories = %v, want 8", cfg.Monitor.MinSubcategories)
	}
	if cfg.State.Path != "alert_state.json" {
		t.Errorf("State.Path = %v, want alert_state.json", cfg.State.Path)
	}
	if len(cfg.Report.Formats) != 0 {
		t.Errorf("Report.Formats = %v, want none", cfg.Report.Formats)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "monitor: [unclosed")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestLoad_TwilioEnv(t *testing.T) {
	clearTwilioEnv(t)
	t.Setenv(EnvTwilioAccountSID, "AC123")
	t.Setenv(EnvTwilioAuthToken, "secret")
	t.Setenv(EnvTwilioPhoneFrom, "+15550000001")
	t.Setenv(EnvTwilioPhoneTo, "+15550000002")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sms := cfg.Notify.SMS
	if sms.AccountSID != "AC123" || sms.AuthToken != "secret" {
		t.Errorf("credentials = %q/%q, want AC123/secret", sms.AccountSID, sms.AuthToken)
	}
	if sms.From != "+15550000001" || sms.To != "+15550000002" {
		t.Errorf("numbers = %q -> %q", sms.From, sms.To)
	}
	if !sms.IsConfigured() {
		t.Errorf("IsConfigured() = false, missing %v", sms.Missing())
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	clearTwilioEnv(t)
	content := `
monitor:
  min_subcategories: 6
`
	path := writeTempFile(t, "config.yaml", content)

	t.Setenv("PLPMON_MONITOR_MIN_SUBCATEGORIES", "12")
	t.Setenv("PLPMON_STATE_PATH", "env_state.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Monitor.MinSubcategories != 12 {
		t.Errorf("MinSubcategories = %v, want 12 (env override)", cfg.Monitor.MinSubcategories)
	}
	if cfg.State.Path != "env_state.json" {
		t.Errorf("State.Path = %v, want env_state.json (env override)", cfg.State.Path)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearTwilioEnv(t)
	content := `
monitor:
  min_subcategories: 0
`
	path := writeTempFile(t, "config.yaml", content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail validation for min_subcategories 0")
	}
	if _, ok := err.(ValidationErrors); !ok {
		t.Errorf("error type = %T, want ValidationErrors", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("PLPMON_TEST_DOTENV", "")
	os.Unsetenv("PLPMON_TEST_DOTENV")

	path := writeTempFile(t, ".env", "PLPMON_TEST_DOTENV=from-file\n")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("PLPMON_TEST_DOTENV"); got != "from-file" {
		t.Errorf("PLPMON_TEST_DOTENV = %q, want from-file", got)
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadEnvFile() on missing file error = %v, want nil", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Errorf("LoadEnvFile(\"\") error = %v, want nil", err)
	}
}
