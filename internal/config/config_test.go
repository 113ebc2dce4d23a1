package config

import (
	"errors"
	"log/slog"
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "TIMEZONE", "TASK_QUEUE_NAME", "TASK_QUEUE_MAX_RETRIES",
		"REDIS_ADDR", "REDIS_DB", "REDIS_RESERVATION_TTL", "REDIS_LEDGER_TTL",
		"GENERATOR_PROVIDER", "GENERATOR_MAX_TOKENS", "OPTIMIZER_GENERATE_TIMEOUT",
		"OPTIMIZER_CAPACITY_SOURCE", "WAVE_POSITION_IDS", "WAVE_NOTIFY_DELAY_MINUTES",
		"WAVE_WORKER_ENABLED", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.LogLevel != slog.LevelInfo {
		t.Errorf("port = %q, level = %v", cfg.Port, cfg.LogLevel)
	}
	if cfg.Location.String() != "Asia/Tokyo" {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.TaskQueue.QueueName != "floor-notifications" || cfg.TaskQueue.MaxRetries != 3 {
		t.Errorf("task queue = %+v", cfg.TaskQueue)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.ReservationTTL != 72*time.Hour || cfg.Redis.LedgerTTL != 24*time.Hour {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Generator.Provider != ProviderOpenAI || cfg.Generator.MaxTokens != 2048 {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	if cfg.Optimizer.GenerateTimeout != 25*time.Second || cfg.Optimizer.CapacitySource != "group" {
		t.Errorf("optimizer = %+v", cfg.Optimizer)
	}
	wantWave := &WaveConfig{BucketMinutes: 5, Threshold: 20, MinCalmMinutes: 15, NotifyDelayMinutes: 5, SmoothRadius: 1, WorkerEnabled: true}
	if !reflect.DeepEqual(cfg.Wave, wantWave) {
		t.Errorf("wave = %+v, want %+v", cfg.Wave, wantWave)
	}
	if cfg.RateLimit.PerMinute != 30 || cfg.RateLimit.Burst != 10 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("TASK_QUEUE_MAX_RETRIES", "0")
	t.Setenv("REDIS_LEDGER_TTL", "90m")
	t.Setenv("GENERATOR_PROVIDER", "Gemini")
	t.Setenv("OPTIMIZER_GENERATE_TIMEOUT", "5s")
	t.Setenv("WAVE_POSITION_IDS", "kitchen, pastry,,")
	t.Setenv("WAVE_NOTIFY_DELAY_MINUTES", "0")
	t.Setenv("WAVE_THRESHOLD", "-3")
	t.Setenv("WAVE_WORKER_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" || cfg.LogLevel != slog.LevelWarn || cfg.Location != time.UTC {
		t.Errorf("port = %q, level = %v, location = %v", cfg.Port, cfg.LogLevel, cfg.Location)
	}
	if cfg.TaskQueue.MaxRetries != 3 {
		t.Errorf("max retries = %d, want default for non-positive value", cfg.TaskQueue.MaxRetries)
	}
	if cfg.Redis.LedgerTTL != 90*time.Minute {
		t.Errorf("ledger ttl = %v", cfg.Redis.LedgerTTL)
	}
	if cfg.Generator.Provider != ProviderGemini {
		t.Errorf("provider = %q", cfg.Generator.Provider)
	}
	if cfg.Optimizer.GenerateTimeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Optimizer.GenerateTimeout)
	}
	if !reflect.DeepEqual(cfg.Wave.PositionIDs, []string{"kitchen", "pastry"}) {
		t.Errorf("positions = %v", cfg.Wave.PositionIDs)
	}
	if cfg.Wave.NotifyDelayMinutes != 0 || cfg.Wave.Threshold != 20 || cfg.Wave.WorkerEnabled {
		t.Errorf("wave = %+v", cfg.Wave)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "timezone", key: "TIMEZONE", value: "Mars/Olympus", wantErr: ErrInvalidTimezone},
		{name: "redis db", key: "REDIS_DB", value: "one", wantErr: ErrInvalidRedisDB},
		{name: "reservation ttl", key: "REDIS_RESERVATION_TTL", value: "-1h", wantErr: ErrInvalidDuration},
		{name: "generate timeout", key: "OPTIMIZER_GENERATE_TIMEOUT", value: "soon", wantErr: ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForRun(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Redis:     &RedisConfig{Addr: "localhost:6379"},
			Generator: &GeneratorConfig{Provider: ProviderOpenAI, APIKey: "key"},
			Optimizer: &OptimizerConfig{CapacitySource: "group"},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErrs []error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:   "self-hosted openai without key",
			mutate: func(c *Config) { c.Generator.APIKey = ""; c.Generator.BaseURL = "http://llm:8000" },
		},
		{
			name:     "gemini without key",
			mutate:   func(c *Config) { c.Generator = &GeneratorConfig{Provider: ProviderGemini} },
			wantErrs: []error{ErrGeneratorKeyMissing},
		},
		{
			name: "several problems",
			mutate: func(c *Config) {
				c.Redis.Addr = ""
				c.Generator.Provider = "claude"
				c.Optimizer.CapacitySource = "max"
			},
			wantErrs: []error{ErrRedisAddrMissing, ErrUnknownProvider, ErrInvalidCapacitySource},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateForRun(cfg)
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Errorf("ValidateForRun() error = %v", err)
				}
				return
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("ValidateForRun() error = %v, want %v", err, want)
				}
			}
		})
	}
}
