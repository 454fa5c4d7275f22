package sqlite

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log().Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "source", "goose")
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log().Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "source", "goose")
	os.Exit(1)
}

func (l *slogGooseLogger) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}
