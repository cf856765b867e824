// Package config provides configuration management for the concaf prediction service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/girguy/concaf/internal/models"
)

// Malformed record policies
const (
	PolicySkip = "skip"
	PolicyFail = "fail"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("malformedpolicy", validateMalformedPolicy)
	_ = v.RegisterValidation("refdate", validateReferenceDate)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules.
// Every failure wraps models.ErrInvalidConfiguration.
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("%w: validation failed: %v", models.ErrInvalidConfiguration, err)
	}

	if err := validateCrossField(cfg); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfiguration, err)
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateMalformedPolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case PolicySkip, PolicyFail:
		return true
	default:
		return false
	}
}

// validateReferenceDate accepts dd/mm/yyyy, yyyy-mm-dd and RFC3339
func validateReferenceDate(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	for _, layout := range []string{models.DateLayout, "2006-01-02", time.RFC3339} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	src := cfg.Sources
	if src.LedgerCSV == "" && len(src.ResultsURLs) == 0 {
		return fmt.Errorf("sources: ledger_csv or results_urls is required")
	}
	if src.FixturesCSV == "" && len(src.FixturesURLs) == 0 {
		return fmt.Errorf("sources: fixtures_csv or fixtures_urls is required")
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database: postgres requires host, name and user")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	case "sqlite":
		if cfg.Database.SQLitePath == "" {
			return fmt.Errorf("database: sqlite requires sqlite_path")
		}
	}

	if cfg.Storage.Enabled {
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("storage: bucket is required when storage is enabled")
		}
		if cfg.Storage.Region == "" {
			return fmt.Errorf("storage: region is required when storage is enabled")
		}
	}

	if cfg.Scheduler.Enabled && strings.TrimSpace(cfg.Scheduler.Cron) == "" {
		return fmt.Errorf("scheduler: cron expression is required when the scheduler is enabled")
	}

	if cfg.AWS.SecretName != "" && cfg.AWS.Region == "" {
		return fmt.Errorf("aws: region is required to read secret %q", cfg.AWS.SecretName)
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&errMsg, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&errMsg, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: numeric constraint %s violated, got '%v'\n", field, tag, value)
		case "environment":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "malformedpolicy":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: skip, fail\n", field)
		case "refdate":
			fmt.Fprintf(&errMsg, "- Field '%s' must be a date (dd/mm/yyyy, yyyy-mm-dd or RFC3339), got '%v'\n", field, value)
		case "oneof":
			fmt.Fprintf(&errMsg, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&errMsg, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("%w: configuration validation failed:\n%s", models.ErrInvalidConfiguration, errMsg.String())
}
