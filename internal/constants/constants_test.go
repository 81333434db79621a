package constants

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvNamesSharePrefix(t *testing.T) {
	assert.True(t, strings.HasPrefix(EnvKBPath, EnvPrefix+"_"))
}

func TestLimits(t *testing.T) {
	assert.Equal(t, 3, MaxLLMQuestions)
	assert.Positive(t, DescriptionPreviewRunes)
	assert.Greater(t, DefaultLLMTimeout, KBLockTimeout)
}
