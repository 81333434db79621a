package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// Terminal layout constants.
const (
	// TerminalEdgeMargin is left between menu content and the terminal edge.
	TerminalEdgeMargin = 4

	// MinMenuWidth is the minimum usable width for menu content.
	MinMenuWidth = 40

	// DefaultMenuWidth is used when the terminal size is unknown.
	DefaultMenuWidth = 100
)

// MenuConfig holds configuration for prompts.
type MenuConfig struct {
	// Width is the maximum width. If 0, adapts to terminal width.
	Width int
	// Accessible enables accessible mode for screen readers.
	Accessible bool
	// ShowKeyHints controls whether key hints are displayed.
	ShowKeyHints bool
}

// NewMenuConfig creates a MenuConfig. Accessible mode follows the
// ACCESSIBLE environment variable.
func NewMenuConfig() *MenuConfig {
	_, accessible := os.LookupEnv("ACCESSIBLE")
	return &MenuConfig{
		Width:        DefaultMenuWidth,
		Accessible:   accessible,
		ShowKeyHints: true,
	}
}

// adaptWidth returns a width no wider than the terminal allows.
func adaptWidth(maxWidth int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		if maxWidth <= 0 {
			return DefaultMenuWidth
		}
		return maxWidth
	}

	available := width - TerminalEdgeMargin
	if maxWidth > 0 && maxWidth < available {
		return maxWidth
	}
	if available < MinMenuWidth {
		return MinMenuWidth
	}
	return available
}

// runFormWithConfig runs a single-field form. Without a terminal on stdin
// it returns ErrMenuCanceled instead of blocking.
func runFormWithConfig(field huh.Field, cfg *MenuConfig, errorContext string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cferrors.ErrMenuCanceled
	}

	CheckNoColor()

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithWidth(adaptWidth(cfg.Width)).
		WithAccessible(cfg.Accessible).
		WithShowHelp(cfg.ShowKeyHints)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return cferrors.ErrMenuCanceled
		}
		return fmt.Errorf("%s: %w", errorContext, err)
	}
	return nil
}

// Theme returns the huh theme built from the clarifyflow palette.
func Theme() *huh.Theme {
	CheckNoColor()

	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorError)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}

// Input presents a single-line text prompt and returns the entered text.
// Returns ErrMenuCanceled if the user aborts.
func Input(prompt, description string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Description(description).
		Value(&value)

	if err := runFormWithConfig(field, NewMenuConfig(), "input prompt failed"); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm presents a yes/no prompt.
func Confirm(message string, defaultYes bool) (bool, error) {
	confirmed := defaultYes
	field := huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := runFormWithConfig(field, NewMenuConfig(), "confirm prompt failed"); err != nil {
		return false, err
	}
	return confirmed, nil
}
