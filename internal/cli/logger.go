// Package cli provides the command-line interface for clarifyflow.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/clarifyflow/internal/config"
	"github.com/mrz1836/clarifyflow/internal/constants"
	"github.com/mrz1836/clarifyflow/internal/logging"
)

//nolint:gochecknoglobals // process-wide logging state
var (
	// activeLogFile is the rotating log opened by InitLogger, closed by CloseLogFile.
	activeLogFile   io.WriteCloser
	activeLogFileMu sync.Mutex

	zerologConfigOnce sync.Once

	// zerologGlobalMu guards log.Logger. It is separate from globalLoggerMu.
	zerologGlobalMu sync.Mutex
)

// redactedFile scrubs secrets on write and closes the underlying file.
type redactedFile struct {
	io.Writer
	io.Closer
}

// configureZerologGlobals names the timestamp and message fields of
// file log entries "ts" and "event".
func configureZerologGlobals() {
	zerologConfigOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger creates the CLI logger.
//
// The level is debug with verbose, warn with quiet and info otherwise.
// Events go to stderr (console format on a color TTY, JSON otherwise) and
// to the rotating file at LogFilePath. When that file cannot be opened
// logging continues on stderr only.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	console := selectOutput()

	file, err := openRotatingLog()
	if err != nil {
		return newCLILogger(console, verbose, quiet)
	}

	CloseLogFile()
	activeLogFileMu.Lock()
	activeLogFile = file
	activeLogFileMu.Unlock()

	return newCLILogger(zerolog.MultiLevelWriter(console, file), verbose, quiet)
}

// InitLoggerWithWriter creates the CLI logger on w only. Used by tests.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	return newCLILogger(w, verbose, quiet)
}

func newCLILogger(w io.Writer, verbose, quiet bool) zerolog.Logger {
	configureZerologGlobals()

	logger := zerolog.New(w).
		Level(selectLevel(verbose, quiet)).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()

	// Keep the zerolog/log package logger in line with the CLI logger.
	zerologGlobalMu.Lock()
	log.Logger = logger
	zerologGlobalMu.Unlock()

	return logger
}

// CloseLogFile closes the log file opened by InitLogger, if any.
func CloseLogFile() {
	activeLogFileMu.Lock()
	defer activeLogFileMu.Unlock()
	if activeLogFile != nil {
		_ = activeLogFile.Close()
		activeLogFile = nil
	}
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput returns a console writer on a TTY without NO_COLOR and
// plain stderr (JSON lines) otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}

// openRotatingLog opens the lumberjack-rotated CLI log behind a redacting writer.
func openRotatingLog() (io.WriteCloser, error) {
	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	return redactedFile{Writer: logging.NewFilteringWriter(lj), Closer: lj}, nil
}

// LogFilePath returns the CLI log location under CLARIFYFLOW_HOME
// (default ~/.clarifyflow).
func LogFilePath() (string, error) {
	home, err := config.GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
