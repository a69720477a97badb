package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingAuth     = "MISSING_AUTH"
	ErrCodeMissingConfig   = "MISSING_CONFIG"
	ErrCodeUnknownProvider = "UNKNOWN_PROVIDER"
	ErrCodeBadCatalogPath  = "BAD_CATALOG_PATH"
	ErrCodeBadOutputDir    = "BAD_OUTPUT_DIR"
)

// ErrMissingAuth returns an error for missing provider credentials.
// The orchestrator fails fast with this error instead of attempting a call
// against a provider that has no API key configured.
func ErrMissingAuth(provider string) *ConfigError {
	var action string
	switch provider {
	case "openai":
		action = "Set OPENAI_API_KEY in your .env file"
	case "stability":
		action = "Set STABILITY_API_KEY in your .env file"
	case "leonardo":
		action = "Set LEONARDO_API_KEY in your .env file"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", provider)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Image provider %q is not configured", provider),
		Action:  action,
	}
}

// ErrMissingConfig returns an error for missing required configuration.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// ErrUnknownProvider returns an error for an unrecognized provider name in
// the configured provider chain.
func ErrUnknownProvider(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownProvider,
		Message: fmt.Sprintf("Unknown image provider %q in PROVIDER_CHAIN", name),
		Action:  "Valid providers are: openai, stability, leonardo",
	}
}

// ErrBadCatalogPath returns an error when the plant catalog file cannot be read.
func ErrBadCatalogPath(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeBadCatalogPath,
		Message: fmt.Sprintf("Cannot read plant catalog at %s: %s", path, reason),
		Action:  "Set CATALOG_PATH to a readable YAML catalog file",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError.
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
