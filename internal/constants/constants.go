// Package constants provides centralized constant values used throughout clarifyflow.
// This package MUST NOT import any other internal packages.
package constants

import "time"

// Directory and file names used for persistence.
const (
	// AppHome is the hidden directory in the user's home where clarifyflow keeps its data.
	AppHome = ".clarifyflow"

	// LogsDir holds the rotating CLI log.
	LogsDir = "logs"

	// KBFileName is the default knowledge base file inside AppHome.
	KBFileName = "kb.json"

	// LockSuffix is appended to the knowledge base path to name its lock file.
	LockSuffix = ".lock"

	// CorruptSuffix names the copy kept when a malformed knowledge base is reset.
	CorruptSuffix = ".corrupt"

	// CLILogFileName is the rotating log file inside LogsDir.
	CLILogFileName = "clarifyflow.log"

	// GlobalConfigName is the config file inside AppHome.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the per-project config directory.
	ProjectConfigDir = ".clarifyflow"

	// DotEnvFileName is loaded from the working directory before config resolution.
	DotEnvFileName = ".env"
)

// Environment variables.
const (
	// EnvPrefix namespaces viper's automatic environment binding.
	EnvPrefix = "CLARIFYFLOW"

	// EnvHome overrides the clarifyflow home directory (default ~/.clarifyflow).
	EnvHome = "CLARIFYFLOW_HOME"

	// EnvKBPath overrides the knowledge base location.
	EnvKBPath = "CLARIFYFLOW_KB_PATH"

	// EnvOpenAIKey is the default variable holding the OpenAI API key.
	EnvOpenAIKey = "OPENAI_API_KEY"

	// EnvGeminiKey is the default variable holding the Gemini API key.
	EnvGeminiKey = "GEMINI_API_KEY"
)

// LLM defaults.
const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultLLMTimeout bounds a single LLM HTTP call. Calls are never retried.
	DefaultLLMTimeout = 60 * time.Second

	// MaxLLMQuestions caps the questions taken from an LLM question source.
	MaxLLMQuestions = 3
)

// Knowledge base limits.
const (
	// DescriptionPreviewRunes is the number of runes kept in a record's description preview.
	DescriptionPreviewRunes = 60

	// KBLockTimeout bounds how long a flush waits for the knowledge base lock.
	KBLockTimeout = 5 * time.Second
)

// CLI log rotation.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
	LogCompress   = true
)
