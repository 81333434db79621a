package config

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/mrz1836/clarifyflow/internal/constants"
	"github.com/mrz1836/clarifyflow/internal/errors"
)

// newViperInstance creates a Viper instance with the CLARIFYFLOW_ env
// prefix, key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

// Load reads configuration from all available sources with proper precedence.
// Missing config files are expected and are not errors.
func Load(ctx context.Context) (*Config, error) {
	if err := LoadDotEnv(constants.DotEnvFileName); err != nil {
		return nil, err
	}

	globalPath, err := GlobalConfigPath()
	if err != nil {
		// No home directory: skip the global layer.
		globalPath = ""
	}

	cfg, err := LoadFromPaths(ctx, ProjectConfigPath(), globalPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("kb.path", cfg.KB.Path).
		Str("llm.openai.model", cfg.LLM.OpenAI.Model).
		Str("llm.gemini.model", cfg.LLM.Gemini.Model).
		Interface("features", cfg.Features).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths. Either path
// can be empty or point at a missing file to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// fileExists returns true if a regular file exists at path.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(filepath.Clean(path))
	return err == nil && !info.IsDir()
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tags exactly. Every key needs a default
// so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("kb.path", d.KB.Path)
	v.SetDefault("kb.lock_timeout", d.KB.LockTimeout.String())

	for name, p := range map[string]ProviderConfig{"openai": d.LLM.OpenAI, "gemini": d.LLM.Gemini} {
		v.SetDefault("llm."+name+".model", p.Model)
		v.SetDefault("llm."+name+".base_url", p.BaseURL)
		v.SetDefault("llm."+name+".api_key_env", p.APIKeyEnv)
		v.SetDefault("llm."+name+".timeout", p.Timeout.String())
	}

	v.SetDefault("features.openai_planner", false)
	v.SetDefault("features.gemini_clarifier", false)
	v.SetDefault("features.openai_coder", false)
	v.SetDefault("features.interactive", false)
	v.SetDefault("features.force_clarify", false)

	v.SetDefault("verifier.case_timeout", d.Verifier.CaseTimeout.String())
}

// viperDecoderOption returns the decoder option that parses duration strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
