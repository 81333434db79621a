package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// HuhPrompter asks questions with a huh input field.
type HuhPrompter struct{}

// Ask implements clarifier.Prompter.
func (HuhPrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Input(question, "Leave empty to skip.")
}

// LinePrompter asks questions on a plain writer and reads one line per answer.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter over in and out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Ask implements clarifier.Prompter. End of input with nothing typed is
// reported as ErrMenuCanceled.
func (p *LinePrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(p.out, "%s\n> ", question); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	switch {
	case errors.Is(err, io.EOF) && line == "":
		return "", cferrors.ErrMenuCanceled
	case err != nil && !errors.Is(err, io.EOF):
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Prompter is the interface satisfied by HuhPrompter and LinePrompter.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// NewPrompter returns a HuhPrompter on a terminal, otherwise a LinePrompter
// reading from in and writing questions to out.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if IsInteractive() {
		return HuhPrompter{}
	}
	return NewLinePrompter(in, out)
}
