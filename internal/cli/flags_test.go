package cli

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clarifyflow/internal/errors"
)

func TestGlobalFlags_Defaults(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	require.NoError(t, cmd.ParseFlags([]string{}))
	assert.Equal(t, OutputText, flags.Output)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Quiet)
	assert.Empty(t, flags.KB)
}

func TestGlobalFlags_Parse(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	require.NoError(t, cmd.ParseFlags([]string{"-o", "json", "-v", "--kb", "/tmp/kb.json"}))
	assert.Equal(t, OutputJSON, flags.Output)
	assert.True(t, flags.Verbose)
	assert.Equal(t, "/tmp/kb.json", flags.KB)
}

func TestBindGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags([]string{"--output", "json"}))

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, "json", v.GetString("output"))
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"yaml", false},
		{"", false},
		{"JSON", false},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.valid, IsValidOutputFormat(tc.format))
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", stderrors.New("boom"), ExitError},
		{"knowledge base", fmt.Errorf("clear: %w", errors.ErrKnowledgeBase), ExitError},
		{"exit code 2 wrapper", errors.NewExitCode2Error(stderrors.New("bad")), ExitInvalidInput},
		{"invalid output format", fmt.Errorf("%w: yaml", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"unknown task", fmt.Errorf("task %q: %w", "nope", errors.ErrUnknownTask), ExitInvalidInput},
		{"unknown flag", stderrors.New("unknown flag: --nope"), ExitInvalidInput},
		{"mutually exclusive", stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"), ExitInvalidInput},
		{"missing argument", stderrors.New("accepts 1 arg(s), received 0"), ExitInvalidInput},
		{"unknown command", stderrors.New(`unknown command "nope" for "clarifyflow"`), ExitInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExitCodeForError(tc.err))
		})
	}
}
