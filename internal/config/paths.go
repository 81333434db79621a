package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/clarifyflow/internal/constants"
	"github.com/mrz1836/clarifyflow/internal/errors"
)

// GlobalConfigDir returns the path to the global clarifyflow directory:
// CLARIFYFLOW_HOME when set, otherwise ~/.clarifyflow.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.AppHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration directory.
func ProjectConfigDir() string {
	return constants.ProjectConfigDir
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.GlobalConfigName)
}

// KBPath returns the knowledge base file to use: cfg.KB.Path when set,
// otherwise ~/.clarifyflow/kb.json.
func KBPath(cfg *Config) (string, error) {
	if cfg != nil && cfg.KB.Path != "" {
		return cfg.KB.Path, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get knowledge base path: %w", err)
	}
	return filepath.Join(dir, constants.KBFileName), nil
}
