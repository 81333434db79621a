package config

import (
	"time"

	"github.com/mrz1836/clarifyflow/internal/constants"
)

// DefaultCaseTimeout is the default verifier case timeout.
const DefaultCaseTimeout = 5 * time.Second

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		KB: KBConfig{
			LockTimeout: constants.KBLockTimeout,
		},
		LLM: LLMConfig{
			OpenAI: ProviderConfig{
				Model:     constants.DefaultOpenAIModel,
				BaseURL:   constants.DefaultOpenAIBaseURL,
				APIKeyEnv: constants.EnvOpenAIKey,
				Timeout:   constants.DefaultLLMTimeout,
			},
			Gemini: ProviderConfig{
				Model:     constants.DefaultGeminiModel,
				BaseURL:   constants.DefaultGeminiBaseURL,
				APIKeyEnv: constants.EnvGeminiKey,
				Timeout:   constants.DefaultLLMTimeout,
			},
		},
		Verifier: VerifierConfig{
			CaseTimeout: DefaultCaseTimeout,
		},
	}
}
