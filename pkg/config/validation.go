package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for rules that cannot
// be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: must be text or json, got %q", cfg.Logging.Format)
	}

	if cfg.Namespace.MaxFileSize < 0 {
		return fmt.Errorf("namespace.max_file_size: must not be negative")
	}
	for tier, limit := range cfg.Namespace.TierLimits {
		if limit <= 0 {
			return fmt.Errorf("namespace.tier_limits[%s]: limit must be positive, got %d", tier, limit)
		}
	}

	if cfg.Sweeper.Enabled && cfg.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval: must be positive when sweeping is enabled")
	}
	if cfg.Sweeper.Enabled && cfg.Sweeper.MinAge <= 0 {
		return fmt.Errorf("sweeper.min_age: must be positive when sweeping is enabled")
	}

	// Channel identities and handles must be unique within the seed list.
	ids := make(map[string]bool, len(cfg.Channels))
	handles := make(map[string]bool, len(cfg.Channels))
	for i, channel := range cfg.Channels {
		if ids[channel.ID] {
			return fmt.Errorf("channels[%d]: duplicate channel id %q", i, channel.ID)
		}
		if handles[channel.Handle] {
			return fmt.Errorf("channels[%d]: duplicate channel handle %q", i, channel.Handle)
		}
		ids[channel.ID] = true
		handles[channel.Handle] = true
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
