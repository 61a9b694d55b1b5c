package config

import (
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		writeIssues(&builder, vr.Errors)
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		writeIssues(&builder, vr.Warnings)
	}

	return builder.String()
}

func writeIssues(builder *strings.Builder, issues []ValidationError) {
	for _, issue := range issues {
		builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
		for _, suggestion := range issue.Suggestions {
			builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
		}
	}
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateServerConfigDetails(&config.Server, result)
	validateProfileConfigDetails(&config.Profile, result)
	validateInvalidationConfigDetails(config, result)
	validateCacheConfigDetails(&config.Cache, result)
	validateImagesConfigDetails(&config.Images, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	// Port 0 lets the system pick one
	if config.Port < 0 || config.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{
				"Use a port between 1024-65535 for non-privileged access",
				"Port 0 allows system to assign an available port",
			},
		})
	} else if config.Port > 0 && config.Port < 1024 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "server.port",
			Value:   config.Port,
			Message: "port below 1024 requires elevated privileges",
		})
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "server.host",
				Value:   config.Host,
				Message: err.Error(),
				Suggestions: []string{
					"Use 'localhost' for local development",
					"Use '0.0.0.0' to bind to all interfaces",
				},
			})
		}
	}

	switch config.Environment {
	case EnvironmentDevelopment, EnvironmentProduction:
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:       "server.environment",
			Value:       config.Environment,
			Message:     fmt.Sprintf("unknown environment %q", config.Environment),
			Suggestions: []string{"Use 'development' or 'production'"},
		})
	}
}

func validateProfileConfigDetails(config *ProfileConfig, result *ValidationResult) {
	if strings.TrimSpace(config.Path) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "profile.path",
			Value:       config.Path,
			Message:     "profile path cannot be empty",
			Suggestions: []string{"Set CONFIG_PATH or profile.path to your config.json"},
		})
	} else if !strings.EqualFold(filepath.Ext(config.Path), ".json") {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "profile.path",
			Value:   config.Path,
			Message: "profile configuration is parsed as JSON regardless of extension",
		})
	}

	if config.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "profile.debounce",
			Value:   config.Debounce,
			Message: "debounce cannot be negative",
		})
	}
}

func validateInvalidationConfigDetails(config *Config, result *ValidationResult) {
	inv := &config.Invalidation

	switch inv.Mode {
	case ModeLocal, ModeHTTP:
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:       "invalidation.mode",
			Value:       inv.Mode,
			Message:     fmt.Sprintf("unknown invalidation mode %q", inv.Mode),
			Suggestions: []string{"Use 'local' for an in-process cache or 'http' for the loopback trigger"},
		})
	}

	if inv.Timeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "invalidation.timeout",
			Value:   inv.Timeout,
			Message: "timeout cannot be negative",
		})
	}

	if inv.Token == "" && config.Server.Environment == EnvironmentProduction {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:       "invalidation.token",
			Message:     "no invalidation token set; the revalidate endpoint rejects every request",
			Suggestions: []string{"Set INVALIDATE_TOKEN to enable remote revalidation"},
		})
	}
}

func validateCacheConfigDetails(config *CacheConfig, result *ValidationResult) {
	if config.MaxSize <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "cache.max_size",
			Value:   config.MaxSize,
			Message: "cache size must be positive",
		})
	}

	if config.TTL < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "cache.ttl",
			Value:       config.TTL,
			Message:     "ttl cannot be negative",
			Suggestions: []string{"Use 0 to keep entries until invalidated"},
		})
	}
}

func validateImagesConfigDetails(config *ImagesConfig, result *ValidationResult) {
	if err := validation.ValidatePath(config.Dir); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "images.dir",
			Value:   config.Dir,
			Message: err.Error(),
		})
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "log.level",
			Value:       config.Level,
			Message:     err.Error(),
			Suggestions: []string{"Use debug, info, warn or error"},
		})
	}

	if config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log.format",
			Value:   config.Format,
			Message: fmt.Sprintf("unknown log format %q", config.Format),
		})
	}
}

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}
