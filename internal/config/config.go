// Package config provides configuration management for clarifyflow with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (applied by the cli package)
//  2. Environment variables (CLARIFYFLOW_* prefix, plus a .env file in the working directory)
//  3. Project config (.clarifyflow/config.yaml)
//  4. Global config (~/.clarifyflow/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"os"
	"time"
)

// Config is the root configuration structure for clarifyflow.
type Config struct {
	// KB controls where clarifications are cached.
	KB KBConfig `yaml:"kb" mapstructure:"kb"`

	// LLM configures the optional OpenAI and Gemini strategies.
	LLM LLMConfig `yaml:"llm" mapstructure:"llm"`

	// Features toggles optional behavior. All default to off.
	Features FeaturesConfig `yaml:"features" mapstructure:"features"`

	// Verifier bounds the execution of generated code.
	Verifier VerifierConfig `yaml:"verifier" mapstructure:"verifier"`
}

// KBConfig contains knowledge base settings.
type KBConfig struct {
	// Path is the knowledge base file. Empty means ~/.clarifyflow/kb.json.
	// CLARIFYFLOW_KB_PATH sets it through the environment.
	Path string `yaml:"path" mapstructure:"path"`

	// LockTimeout bounds how long a write waits for the file lock.
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// LLMConfig holds one section per provider.
type LLMConfig struct {
	OpenAI ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Gemini ProviderConfig `yaml:"gemini" mapstructure:"gemini"`
}

// ProviderConfig describes how to reach one LLM provider.
type ProviderConfig struct {
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// Keys never live in config files.
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`

	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// FeaturesConfig toggles optional behavior.
type FeaturesConfig struct {
	OpenAIPlanner   bool `yaml:"openai_planner" mapstructure:"openai_planner"`
	GeminiClarifier bool `yaml:"gemini_clarifier" mapstructure:"gemini_clarifier"`
	OpenAICoder     bool `yaml:"openai_coder" mapstructure:"openai_coder"`
	Interactive     bool `yaml:"interactive" mapstructure:"interactive"`
	ForceClarify    bool `yaml:"force_clarify" mapstructure:"force_clarify"`
}

// VerifierConfig contains verifier limits.
type VerifierConfig struct {
	// CaseTimeout bounds a single call into generated code.
	CaseTimeout time.Duration `yaml:"case_timeout" mapstructure:"case_timeout"`
}
