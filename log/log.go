// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides contextual loggers over the go-ethereum slog logger.
package log

import (
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes leveled messages with key/value context.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// contextLogger resolves the root logger on every write so package level loggers
// follow handler changes made in main.
type contextLogger struct {
	ctx []any
}

// WithContext returns a logger that prefixes every record with ctx.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

func (l *contextLogger) write(level slog.Level, msg string, ctx []any) {
	ethlog.Root().Write(level, msg, append(append([]any(nil), l.ctx...), ctx...)...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }
func (l *contextLogger) Crit(msg string, ctx ...any)  { l.write(LevelCrit, msg, ctx) }

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: append(append([]any(nil), l.ctx...), ctx...)}
}

func Debug(msg string, ctx ...any) { ethlog.Root().Write(LevelDebug, msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Write(LevelInfo, msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Write(LevelWarn, msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Write(LevelError, msg, ctx...) }

// SetDefault installs the handler as the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromVerbosity maps a 0 (crit) to 5 (trace) verbosity onto a level.
func FromVerbosity(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

// DiscardHandler returns a handler dropping all records.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}
