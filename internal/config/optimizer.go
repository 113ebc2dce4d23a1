package config

import (
	"os"
	"time"
)

const (
	optimizerGenerateTimeoutEnv = "OPTIMIZER_GENERATE_TIMEOUT"
	optimizerCapacitySourceEnv  = "OPTIMIZER_CAPACITY_SOURCE"

	defaultGenerateTimeout = 25 * time.Second
	defaultCapacitySource  = "group"
)

type OptimizerConfig struct {
	GenerateTimeout time.Duration
	CapacitySource  string
}

func LoadOptimizerConfig() (*OptimizerConfig, error) {
	timeout, err := durationEnv(optimizerGenerateTimeoutEnv, defaultGenerateTimeout)
	if err != nil {
		return nil, err
	}

	source := os.Getenv(optimizerCapacitySourceEnv)
	if source == "" {
		source = defaultCapacitySource
	}

	return &OptimizerConfig{
		GenerateTimeout: timeout,
		CapacitySource:  source,
	}, nil
}

func (c *OptimizerConfig) Validate() error {
	if c.CapacitySource != "group" && c.CapacitySource != "solo" {
		return ErrInvalidCapacitySource
	}
	return nil
}
