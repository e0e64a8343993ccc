// Package config provides configuration management for the category page monitor.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "monitor.selector")
	Tag     string      // Validation tag that failed (e.g., "required", "url")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("css_selector", validateCSSSelector)
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	validationErrors = append(validationErrors, validateTargets(cfg)...)
	validationErrors = append(validationErrors, validateTimeouts(cfg)...)
	validationErrors = append(validationErrors, validateWebhook(cfg)...)
	validationErrors = append(validationErrors, validateTimezoneConfig(cfg)...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateCSSSelector is a custom validator for CSS selector strings.
func validateCSSSelector(fl validator.FieldLevel) bool {
	sel := fl.Field().String()
	if sel == "" {
		return true // "required" reports emptiness
	}
	_, err := cascadia.Compile(sel)
	return err == nil
}

// validateTargets checks that something will be monitored.
func validateTargets(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if len(cfg.Monitor.Targets) == 0 && cfg.Monitor.TargetsFile == "" {
		errors = append(errors, &ValidationError{
			Field:   "monitor.targets",
			Tag:     "required",
			Value:   cfg.Monitor.Targets,
			Message: "at least one target URL or a targets_file is required",
		})
	}

	return errors
}

// validateTimeouts validates that both browser waits are bounded.
func validateTimeouts(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"browser.navigation_timeout", cfg.Browser.NavigationTimeout},
		{"browser.selector_timeout", cfg.Browser.SelectorTimeout},
	}

	for _, to := range timeouts {
		if to.value <= 0 {
			errors = append(errors, &ValidationError{
				Field:   to.name,
				Tag:     "positive_duration",
				Value:   to.value,
				Message: fmt.Sprintf("timeout must be greater than zero, got %s", to.value),
			})
		}
	}

	return errors
}

// validateWebhook validates the webhook channel when it is enabled.
func validateWebhook(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if !cfg.Notify.Webhook.Enabled {
		return errors
	}

	if cfg.Notify.Webhook.URL == "" {
		errors = append(errors, &ValidationError{
			Field:   "notify.webhook.url",
			Tag:     "required_when_enabled",
			Value:   "",
			Message: "url is required when the webhook channel is enabled",
		})
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Monitor.MinSubcategories" -> "monitor.minsubcategories"
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "css_selector":
		return fmt.Sprintf("invalid CSS selector: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
