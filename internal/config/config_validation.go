package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Limiter.RedisAddress != "" {
		if cfg.Limiter.MaxLoginAttempts <= 0 || cfg.Limiter.LoginCooldown <= 0 {
			return ErrInvalidLimiterConfigs
		}
	}

	if cfg.Auth.ResetDailyLimit < 0 {
		return ErrInvalidAuthConfigs
	}

	return nil
}
