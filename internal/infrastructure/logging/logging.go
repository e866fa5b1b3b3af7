// Package logging builds shuttle's logger: readable text on stderr
// fanned out with a JSON line log under the store directory, so every
// run leaves a debuggable trace without cluttering the terminal.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// SetVerbose switches the terminal handler between info and debug.
func SetVerbose(verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

// New builds the fanout logger. The file handler always records at
// debug level so post-mortems have everything; a file that cannot be
// opened downgrades to terminal-only logging with a warning rather
// than failing the command.
func New(logPath string) *slog.Logger {
	terminal := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	handlers := []slog.Handler{terminal}

	if logPath != "" {
		fileHandler, err := newFileHandler(logPath)
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "file log disabled", 0)
			record.Add("error", err)
			_ = terminal.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, fileHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

func newFileHandler(logPath string) (slog.Handler, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	// The file stays open for the process lifetime.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}), nil
}
