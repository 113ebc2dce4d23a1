package config

import (
	"os"
	"strings"
)

const (
	generatorProviderEnv  = "GENERATOR_PROVIDER"
	generatorBaseURLEnv   = "GENERATOR_BASE_URL"
	generatorAPIKeyEnv    = "GENERATOR_API_KEY"
	generatorModelEnv     = "GENERATOR_MODEL"
	generatorMaxTokensEnv = "GENERATOR_MAX_TOKENS"

	defaultGeneratorMaxTokens = 2048
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type GeneratorConfig struct {
	Provider  string
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

func LoadGeneratorConfig() *GeneratorConfig {
	provider := strings.ToLower(os.Getenv(generatorProviderEnv))
	if provider == "" {
		provider = ProviderOpenAI
	}

	return &GeneratorConfig{
		Provider:  provider,
		BaseURL:   os.Getenv(generatorBaseURLEnv),
		APIKey:    os.Getenv(generatorAPIKeyEnv),
		Model:     os.Getenv(generatorModelEnv),
		MaxTokens: positiveIntEnv(generatorMaxTokensEnv, defaultGeneratorMaxTokens),
	}
}

// Validate requires an API key unless an OpenAI compatible base URL points at
// a self-hosted endpoint.
func (c *GeneratorConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" && c.BaseURL == "" {
			return ErrGeneratorKeyMissing
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return ErrGeneratorKeyMissing
		}
	default:
		return ErrUnknownProvider
	}
	return nil
}
