package kb

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/mrz1836/clarifyflow/internal/constants"
)

// Fingerprint returns a stable hash of a task description. The text is
// trimmed and NFC-normalized; case is preserved so any visible edit
// produces a new fingerprint.
func Fingerprint(description string) string {
	normalized := norm.NFC.String(strings.TrimSpace(description))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Key is the knowledge base key for a task description.
func Key(task, description string) string {
	return task + ":" + Fingerprint(description)
}

// SplitKey separates a key into task name and fingerprint.
func SplitKey(key string) (task, fingerprint string) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+1:]
}

// Preview truncates a description for display in the knowledge base file.
func Preview(description string) string {
	d := strings.TrimSpace(description)
	if utf8.RuneCountInString(d) <= constants.DescriptionPreviewRunes {
		return d
	}
	runes := []rune(d)
	return string(runes[:constants.DescriptionPreviewRunes]) + "…"
}
