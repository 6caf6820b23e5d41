package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/pkg/config"
)

// NewLogger builds the stderr logger for level, falling back to info.
func NewLogger(level string) *slog.Logger {
	l, err := logging.ParseLevel(level)
	logger := logging.New(os.Stderr, l)
	if err != nil {
		logger.Warn("ignoring log level", "error", err)
	}
	return logger
}

// LoadConfig loads path and applies a log level override when non-empty.
func LoadConfig(path, logLevel string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, NewLogger(logLevel), err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, NewLogger(cfg.LogLevel), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// Friendly maps well-known errors to the message shown to the user.
func Friendly(err error) string {
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		return "Not configured. Run `lbc login` first."
	default:
		return "Error: " + err.Error()
	}
}
