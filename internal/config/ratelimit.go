package config

const (
	rateLimitPerMinuteEnv = "RATE_LIMIT_PER_MINUTE"
	rateLimitBurstEnv     = "RATE_LIMIT_BURST"

	defaultRateLimitPerMinute = 30
	defaultRateLimitBurst     = 10
)

// RateLimitConfig bounds generator-backed requests per client IP.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

func LoadRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		PerMinute: positiveIntEnv(rateLimitPerMinuteEnv, defaultRateLimitPerMinute),
		Burst:     positiveIntEnv(rateLimitBurstEnv, defaultRateLimitBurst),
	}
}
