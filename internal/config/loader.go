// Package config provides configuration management for the category page monitor.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables holding the Twilio credentials.
const (
	EnvTwilioAccountSID = "TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken  = "TWILIO_AUTH_TOKEN"
	EnvTwilioPhoneFrom  = "TWILIO_PHONE_FROM"
	EnvTwilioPhoneTo    = "TWILIO_PHONE_TO"
)

// DefaultSelector matches the category tiles on a listing page.
const DefaultSelector = `a[class*="CategoryTile_categoryTile"]`

// DefaultUserAgent is a current desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTargets are the category pages checked when no targets are configured.
var DefaultTargets = []string{
	"https://www.mountainwarehouse.com/eu/mens/",
	"https://www.mountainwarehouse.com/eu/womens/",
	"https://www.mountainwarehouse.com/eu/kids/",
	"https://www.mountainwarehouse.com/eu/footwear/",
	"https://www.mountainwarehouse.com/eu/equipment/",
	"https://www.mountainwarehouse.com/eu/by-activity/",
	"https://www.mountainwarehouse.com/eu/camping/",
	"https://www.mountainwarehouse.com/eu/ski/",
	"https://www.mountainwarehouse.com/eu/clearance/",
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error; existing variables win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: PLPMON_<SECTION>_<KEY> (e.g., PLPMON_STATE_PATH).
// Twilio credentials are additionally read from TWILIO_ACCOUNT_SID,
// TWILIO_AUTH_TOKEN, TWILIO_PHONE_FROM and TWILIO_PHONE_TO.
// An empty configPath runs on defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PLPMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindTwilioEnv(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindTwilioEnv maps the conventional Twilio variable names onto config keys.
func bindTwilioEnv(v *viper.Viper) {
	// BindEnv only fails when called without a key.
	_ = v.BindEnv("notify.sms.account_sid", "PLPMON_NOTIFY_SMS_ACCOUNT_SID", EnvTwilioAccountSID)
	_ = v.BindEnv("notify.sms.auth_token", "PLPMON_NOTIFY_SMS_AUTH_TOKEN", EnvTwilioAuthToken)
	_ = v.BindEnv("notify.sms.from", "PLPMON_NOTIFY_SMS_FROM", EnvTwilioPhoneFrom)
	_ = v.BindEnv("notify.sms.to", "PLPMON_NOTIFY_SMS_TO", EnvTwilioPhoneTo)
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Monitor defaults
	v.SetDefault("monitor.targets", DefaultTargets)
	v.SetDefault("monitor.selector", DefaultSelector)
	v.SetDefault("monitor.min_subcategories", 8)
	v.SetDefault("monitor.realert_after", time.Duration(0))

	// Browser defaults
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.viewport_width", 1920)
	v.SetDefault("browser.viewport_height", 1080)
	v.SetDefault("browser.user_agent", DefaultUserAgent)
	v.SetDefault("browser.navigation_timeout", 60*time.Second)
	v.SetDefault("browser.selector_timeout", 30*time.Second)

	// State defaults
	v.SetDefault("state.path", "alert_state.json")

	// Notify defaults
	v.SetDefault("notify.sms.prefix", "MW Alert")
	v.SetDefault("notify.webhook.enabled", false)
	v.SetDefault("notify.webhook.timeout", 10*time.Second)
	v.SetDefault("notify.webhook.max_retries", 0)
	v.SetDefault("notify.webhook.retry_delay", time.Second)

	// Report defaults (no formats means no report files)
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{})
	v.SetDefault("report.filename_template", "plp_report_{{.Date}}_{{.Time}}")
	v.SetDefault("report.timezone", "UTC")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
}
