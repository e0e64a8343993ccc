// Package config provides configuration management for the category page monitor.
package config

import (
	"strings"
	"testing"
	"time"
)

// newValidConfig creates a valid configuration for testing.
func newValidConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Targets:          []string{"https://www.example.com/eu/mens/"},
			Selector:         DefaultSelector,
			MinSubcategories: 8,
		},
		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			UserAgent:         DefaultUserAgent,
			NavigationTimeout: 60 * time.Second,
			SelectorTimeout:   30 * time.Second,
		},
		State: StateConfig{Path: "alert_state.json"},
		Notify: NotifyConfig{
			SMS: SMSConfig{Prefix: "MW Alert"},
		},
		Report: ReportConfig{
			OutputDir: "./reports",
			Formats:   []string{"excel", "html"},
			Timezone:  "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// hasFieldError reports whether err contains a validation error for field.
func hasFieldError(err error, field string) bool {
	verrs, ok := err.(ValidationErrors)
	if !ok {
		return false
	}
	for _, e := range verrs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{
			name:   "empty selector",
			modify: func(c *Config) { c.Monitor.Selector = "" },
			field:  "monitor.selector",
		},
		{
			name:   "invalid selector",
			modify: func(c *Config) { c.Monitor.Selector = "a[class*=" },
			field:  "monitor.selector",
		},
		{
			name:   "zero minimum",
			modify: func(c *Config) { c.Monitor.MinSubcategories = 0 },
			field:  "monitor.minsubcategories",
		},
		{
			name:   "invalid target url",
			modify: func(c *Config) { c.Monitor.Targets = []string{"not a url"} },
			field:  "monitor.targets[0]",
		},
		{
			name:   "no targets",
			modify: func(c *Config) { c.Monitor.Targets = nil },
			field:  "monitor.targets",
		},
		{
			name:   "zero navigation timeout",
			modify: func(c *Config) { c.Browser.NavigationTimeout = 0 },
			field:  "browser.navigation_timeout",
		},
		{
			name:   "negative selector timeout",
			modify: func(c *Config) { c.Browser.SelectorTimeout = -time.Second },
			field:  "browser.selector_timeout",
		},
		{
			name:   "empty user agent",
			modify: func(c *Config) { c.Browser.UserAgent = "" },
			field:  "browser.useragent",
		},
		{
			name:   "empty state path",
			modify: func(c *Config) { c.State.Path = "" },
			field:  "state.path",
		},
		{
			name:   "webhook enabled without url",
			modify: func(c *Config) { c.Notify.Webhook.Enabled = true },
			field:  "notify.webhook.url",
		},
		{
			name:   "unknown report format",
			modify: func(c *Config) { c.Report.Formats = []string{"pdf"} },
			field:  "report.formats[0]",
		},
		{
			name:   "invalid timezone",
			modify: func(c *Config) { c.Report.Timezone = "Mars/Olympus" },
			field:  "report.timezone",
		},
		{
			name:   "invalid log level",
			modify: func(c *Config) { c.Logging.Level = "trace" },
			field:  "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() should return error")
			}
			if !hasFieldError(err, tt.field) {
				t.Errorf("Validate() error = %v, want error for field %s", err, tt.field)
			}
		})
	}
}

func TestValidate_TargetsFileWithoutTargets(t *testing.T) {
	cfg := newValidConfig()
	cfg.Monitor.Targets = nil
	cfg.Monitor.TargetsFile = "configs/targets.yaml"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil when targets_file is set", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "monitor.selector", Message: "this field is required"},
		{Field: "state.path", Message: "this field is required"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "config validation failed") {
		t.Errorf("Error() = %q, want header", msg)
	}
	if !strings.Contains(msg, "monitor.selector: this field is required") {
		t.Errorf("Error() = %q, want selector line", msg)
	}
	if ValidationErrors(nil).Error() != "" {
		t.Error("empty ValidationErrors should render as empty string")
	}
}

func TestFormatFieldName(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{"Config.Monitor.Selector", "monitor.selector"},
		{"Config.Notify.Webhook.URL", "notify.webhook.url"},
		{"Selector", "selector"},
	}

	for _, tt := range tests {
		if got := formatFieldName(tt.namespace); got != tt.want {
			t.Errorf("formatFieldName(%q) = %q, want %q", tt.namespace, got, tt.want)
		}
	}
}

func TestSMSConfig_Missing(t *testing.T) {
	cfg := SMSConfig{AccountSID: "AC1", To: "+1555"}

	missing := cfg.Missing()
	want := []string{EnvTwilioAuthToken, EnvTwilioPhoneFrom}
	if len(missing) != len(want) {
		t.Fatalf("Missing() = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("Missing()[%d] = %v, want %v", i, missing[i], want[i])
		}
	}
}
