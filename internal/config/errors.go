package config

import "errors"

var (
	ErrRedisAddrMissing      = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB        = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidTimezone       = errors.New("TIMEZONE must be an IANA time zone")
	ErrInvalidDuration       = errors.New("invalid duration")
	ErrUnknownProvider       = errors.New("GENERATOR_PROVIDER must be openai or gemini")
	ErrGeneratorKeyMissing   = errors.New("GENERATOR_API_KEY is required")
	ErrInvalidCapacitySource = errors.New("OPTIMIZER_CAPACITY_SOURCE must be group or solo")
)
