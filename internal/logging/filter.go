// Package logging keeps LLM credentials out of clarifyflow's logs.
// The CLI wraps its log file writer with FilteringWriter and installs
// SensitiveDataHook on the root logger.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces any matched secret.
const RedactedValue = "[REDACTED]"

//nolint:gochecknoglobals // compiled once
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI keys, including project keys (sk-proj-...)
	regexp.MustCompile(`sk-(?:proj-)?[a-zA-Z0-9_-]{20,}`),

	// Google API keys used by Gemini
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),

	// Gemini passes the key as a query parameter
	regexp.MustCompile(`([?&]key=)[^&\s"']+`),

	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?[a-zA-Z0-9_-]{16,}["']?`),
}

//nolint:gochecknoglobals // matched case-insensitively
var sensitiveFieldNames = []string{
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"bearer",
	"secret",
	"token",
	"openai_api_key",
	"gemini_api_key",
}

// SensitiveDataHook flags log events whose message looks like it carries a secret.
// zerolog does not let a hook rewrite the message, so the actual scrubbing
// happens in FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any known secret format.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every secret in value with RedactedValue.
// Query-string keys keep their "key=" prefix.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		if pattern.NumSubexp() == 1 && strings.HasPrefix(pattern.String(), `([?&]key=)`) {
			result = pattern.ReplaceAllString(result, "${1}"+RedactedValue)
			continue
		}
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name denotes a credential.
func IsSensitiveFieldName(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns value with secrets removed, or RedactedValue outright
// when the field name itself is sensitive.
//
//	log.Debug().Str("endpoint", logging.SafeValue("endpoint", url)).Msg("calling gemini")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter scrubs secrets from everything written through it.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so zerolog
// never sees a short write when redaction changes the length.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
