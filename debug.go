package nrf24

import (
	"context"
	"log/slog"
)

const (
	// levelTrace logs every bus transaction. It sits below slog.LevelDebug so
	// it must be requested explicitly.
	levelTrace slog.Level = slog.LevelDebug - 1
)

// logstate is embedded by Dev and the mode values. A nil logger disables
// logging entirely.
type logstate struct {
	logger        *slog.Logger
	_traceenabled bool
}

func newLogstate(logger *slog.Logger) logstate {
	return logstate{
		logger:        logger,
		_traceenabled: logger != nil && logger.Handler().Enabled(context.Background(), levelTrace),
	}
}

func (l *logstate) logerr(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelError, msg, attrs...)
}

func (l *logstate) warn(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelWarn, msg, attrs...)
}

func (l *logstate) info(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelInfo, msg, attrs...)
}

func (l *logstate) debug(msg string, attrs ...slog.Attr) {
	l.logattrs(slog.LevelDebug, msg, attrs...)
}

func (l *logstate) trace(msg string, attrs ...slog.Attr) {
	if l._traceenabled {
		l.logattrs(levelTrace, msg, attrs...)
	}
}

func (l *logstate) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.logger == nil {
		return
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
