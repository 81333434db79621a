package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clarifyflow/internal/constants"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromPaths_Defaults(t *testing.T) {
	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)

	assert.Empty(t, cfg.KB.Path)
	assert.Equal(t, constants.KBLockTimeout, cfg.KB.LockTimeout)
	assert.Equal(t, constants.DefaultOpenAIModel, cfg.LLM.OpenAI.Model)
	assert.Equal(t, constants.DefaultGeminiBaseURL, cfg.LLM.Gemini.BaseURL)
	assert.Equal(t, constants.EnvGeminiKey, cfg.LLM.Gemini.APIKeyEnv)
	assert.Equal(t, constants.DefaultLLMTimeout, cfg.LLM.OpenAI.Timeout)
	assert.False(t, cfg.Features.OpenAIPlanner)
	assert.False(t, cfg.Features.Interactive)
	assert.Equal(t, DefaultCaseTimeout, cfg.Verifier.CaseTimeout)
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.yaml", `
kb:
  path: /global/kb.json
llm:
  openai:
    model: gpt-global
    timeout: 10s
features:
  openai_planner: true
`)
	project := writeFile(t, dir, "project.yaml", `
llm:
  openai:
    model: gpt-project
features:
  force_clarify: true
`)

	cfg, err := LoadFromPaths(context.Background(), project, global)
	require.NoError(t, err)

	assert.Equal(t, "gpt-project", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.OpenAI.Timeout, "global value preserved")
	assert.Equal(t, "/global/kb.json", cfg.KB.Path)
	assert.True(t, cfg.Features.OpenAIPlanner)
	assert.True(t, cfg.Features.ForceClarify)
}

func TestLoadFromPaths_EnvOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, dir, "project.yaml", "kb:\n  path: /project/kb.json\n")

	t.Setenv(constants.EnvKBPath, "/env/kb.json")
	t.Setenv("CLARIFYFLOW_FEATURES_GEMINI_CLARIFIER", "true")
	t.Setenv("CLARIFYFLOW_VERIFIER_CASE_TIMEOUT", "250ms")

	cfg, err := LoadFromPaths(context.Background(), project, "")
	require.NoError(t, err)

	assert.Equal(t, "/env/kb.json", cfg.KB.Path)
	assert.True(t, cfg.Features.GeminiClarifier)
	assert.Equal(t, 250*time.Millisecond, cfg.Verifier.CaseTimeout)
}

func TestLoadFromPaths_MissingFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromPaths(context.Background(), filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "also-nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultOpenAIModel, cfg.LLM.OpenAI.Model)
}

func TestLoadFromPaths_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "kb: [unclosed\n")
		_, err := LoadFromPaths(context.Background(), path, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read project config")
	})

	t.Run("invalid value", func(t *testing.T) {
		path := writeFile(t, dir, "invalid.yaml", "llm:\n  gemini:\n    base_url: not-a-url\n")
		_, err := LoadFromPaths(context.Background(), path, "")
		require.ErrorIs(t, err, cferrors.ErrConfigInvalidLLM)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "CLARIFYFLOW_TEST_DOTENV=from-file\nCLARIFYFLOW_TEST_PRESET=from-file\n")

	t.Setenv("CLARIFYFLOW_TEST_PRESET", "from-env")
	t.Setenv("CLARIFYFLOW_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("CLARIFYFLOW_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CLARIFYFLOW_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("CLARIFYFLOW_TEST_PRESET"), "existing variables win")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestKBPath(t *testing.T) {
	path, err := KBPath(&Config{KB: KBConfig{Path: "/tmp/kb.json"}})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kb.json", path)

	t.Setenv(constants.EnvHome, "")
	t.Setenv("HOME", t.TempDir())
	path, err = KBPath(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), constants.AppHome, constants.KBFileName), path)

	home := t.TempDir()
	t.Setenv(constants.EnvHome, home)
	path, err = KBPath(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.KBFileName), path)
}

func TestProviderConfig_APIKey(t *testing.T) {
	t.Setenv("CLARIFYFLOW_TEST_KEY", "secret")
	assert.Equal(t, "secret", ProviderConfig{APIKeyEnv: "CLARIFYFLOW_TEST_KEY"}.APIKey())
	assert.Empty(t, ProviderConfig{}.APIKey())
}
