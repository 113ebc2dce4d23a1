package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	redisAddrEnv           = "REDIS_ADDR"
	redisPasswordEnv       = "REDIS_PASSWORD"
	redisDBEnv             = "REDIS_DB"
	redisTLSEnv            = "REDIS_TLS"
	redisReservationTTLEnv = "REDIS_RESERVATION_TTL"
	redisLedgerTTLEnv      = "REDIS_LEDGER_TTL"

	defaultRedisAddr      = "localhost:6379"
	defaultRedisDB        = 0
	defaultReservationTTL = 72 * time.Hour
	defaultLedgerTTL      = 24 * time.Hour
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool

	// ReservationTTL expires a service day's reservations; LedgerTTL expires
	// the record of a sent calm-window notification.
	ReservationTTL time.Duration
	LedgerTTL      time.Duration
}

func LoadRedisConfig() (*RedisConfig, error) {
	addr := os.Getenv(redisAddrEnv)
	if addr == "" {
		addr = defaultRedisAddr
	}

	db := defaultRedisDB
	if raw := os.Getenv(redisDBEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidRedisDB
		}
		db = parsed
	}

	reservationTTL, err := durationEnv(redisReservationTTLEnv, defaultReservationTTL)
	if err != nil {
		return nil, err
	}
	ledgerTTL, err := durationEnv(redisLedgerTTLEnv, defaultLedgerTTL)
	if err != nil {
		return nil, err
	}

	return &RedisConfig{
		Addr:           addr,
		Password:       os.Getenv(redisPasswordEnv),
		DB:             db,
		TLS:            os.Getenv(redisTLSEnv) == "true",
		ReservationTTL: reservationTTL,
		LedgerTTL:      ledgerTTL,
	}, nil
}

func (c *RedisConfig) Validate() error {
	if c == nil || c.Addr == "" {
		return ErrRedisAddrMissing
	}
	return nil
}

// durationEnv parses a Go duration string; non-positive values are rejected.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: %w: %q", key, ErrInvalidDuration, raw)
	}
	return d, nil
}
