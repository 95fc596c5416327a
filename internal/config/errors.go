package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidLimiterConfigs indicates that the login throttle is enabled
	// (Redis address set) but its attempt budget or cooldown is missing.
	ErrInvalidLimiterConfigs = errors.New("invalid limiter configuration")

	// ErrInvalidAuthConfigs indicates invalid authentication settings
	// (for example, a negative reset daily limit).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
)
