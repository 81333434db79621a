package config

import (
	"net/url"

	"github.com/mrz1836/clarifyflow/internal/errors"
)

// Validate checks the configuration for invalid values and returns the
// first failure found.
//
// Validation rules:
//   - kb.lock_timeout must be positive
//   - each LLM provider needs a model, an absolute http(s) base URL,
//     an api_key_env name and a positive timeout
//   - verifier.case_timeout must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.KB.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidKB,
			"kb.lock_timeout must be positive, got %s", cfg.KB.LockTimeout)
	}

	if err := validateProvider("openai", &cfg.LLM.OpenAI); err != nil {
		return err
	}
	if err := validateProvider("gemini", &cfg.LLM.Gemini); err != nil {
		return err
	}

	if cfg.Verifier.CaseTimeout <= 0 {
		return errors.Wrapf(errors.ErrInvalidDuration,
			"verifier.case_timeout must be positive, got %s", cfg.Verifier.CaseTimeout)
	}
	return nil
}

func validateProvider(name string, p *ProviderConfig) error {
	if p.Model == "" {
		return errors.Wrapf(errors.ErrConfigInvalidLLM, "llm.%s.model must not be empty", name)
	}
	if p.APIKeyEnv == "" {
		return errors.Wrapf(errors.ErrConfigInvalidLLM, "llm.%s.api_key_env must not be empty", name)
	}
	if p.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLLM,
			"llm.%s.timeout must be positive, got %s", name, p.Timeout)
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(errors.ErrConfigInvalidLLM,
			"llm.%s.base_url must be an absolute http(s) URL, got %q", name, p.BaseURL)
	}
	return nil
}
