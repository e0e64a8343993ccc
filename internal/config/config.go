// Package config provides configuration management for the category page monitor.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Monitor MonitorConfig `mapstructure:"monitor"`
	Browser BrowserConfig `mapstructure:"browser"`
	State   StateConfig   `mapstructure:"state"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// MonitorConfig describes what is checked on every run.
type MonitorConfig struct {
	Targets          []string      `mapstructure:"targets" validate:"dive,url"`
	TargetsFile      string        `mapstructure:"targets_file"` // Optional YAML file overriding Targets
	Selector         string        `mapstructure:"selector" validate:"required,css_selector"`
	MinSubcategories int           `mapstructure:"min_subcategories" validate:"gte=1"`
	RealertAfter     time.Duration `mapstructure:"realert_after" validate:"gte=0"` // 0 disables reminders
}

// BrowserConfig contains headless browser settings.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"`
	ExecPath          string        `mapstructure:"exec_path"`  // Chrome binary, empty to auto-detect
	NoSandbox         bool          `mapstructure:"no_sandbox"` // Needed when running as root in containers
	ViewportWidth     int           `mapstructure:"viewport_width" validate:"gte=320"`
	ViewportHeight    int           `mapstructure:"viewport_height" validate:"gte=240"`
	UserAgent         string        `mapstructure:"user_agent" validate:"required"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout"`
}

// StateConfig locates the persisted alert state.
type StateConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// NotifyConfig contains notification channel settings.
type NotifyConfig struct {
	SMS     SMSConfig     `mapstructure:"sms"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SMSConfig contains Twilio credentials and message settings.
// Credentials normally come from TWILIO_* environment variables.
type SMSConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
	Prefix     string `mapstructure:"prefix"` // Message header prefix, e.g. "MW Alert"
}

// IsConfigured reports whether all four Twilio values are present.
func (c SMSConfig) IsConfigured() bool {
	return len(c.Missing()) == 0
}

// Missing returns the environment variable names of absent values.
func (c SMSConfig) Missing() []string {
	var missing []string
	if c.AccountSID == "" {
		missing = append(missing, EnvTwilioAccountSID)
	}
	if c.AuthToken == "" {
		missing = append(missing, EnvTwilioAuthToken)
	}
	if c.From == "" {
		missing = append(missing, EnvTwilioPhoneFrom)
	}
	if c.To == "" {
		missing = append(missing, EnvTwilioPhoneTo)
	}
	return missing
}

// WebhookConfig contains settings for the optional chat webhook channel.
type WebhookConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	URL        string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=5"` // Retries on 5xx and connection errors
	RetryDelay time.Duration `mapstructure:"retry_delay"`                        // Base delay, backoff caps at 8x
}

// ReportConfig contains settings for optional run report files.
type ReportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	Timezone         string   `mapstructure:"timezone"`
	HTMLTemplate     string   `mapstructure:"html_template"` // Optional custom HTML template
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	File       string `mapstructure:"file"` // Optional rotating log file
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}
