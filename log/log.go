// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging front of the module, backed by go-ethereum's slog handlers.
//
// Packages declare their logger once:
//
//	var logger = log.WithContext("pkg", "staker")
//
// Such loggers resolve the root logger on every call, so handlers installed
// later with SetDefault apply to them.
package log

import (
	"context"
	"io"
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

// Logger writes key/value records.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// With returns a logger carrying ctx in addition to the current context.
	With(ctx ...any) Logger
	Enabled(level slog.Level) bool
}

type contextLogger struct {
	ctx []any
}

func (l *contextLogger) root() ethlog.Logger {
	if len(l.ctx) == 0 {
		return ethlog.Root()
	}
	return ethlog.Root().With(l.ctx...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }
func (l *contextLogger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, ctx...) }

func (l *contextLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &contextLogger{append(merged, ctx...)}
}

func (l *contextLogger) Enabled(level slog.Level) bool {
	return ethlog.Root().Enabled(context.Background(), level)
}

// WithContext returns a logger with ctx attached to every record.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx}
}

// Root returns the logger without context.
func Root() Logger {
	return &contextLogger{}
}

// SetDefault routes all loggers, including the ones created before, to h.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromLegacyLevel converts a 0-9 verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// NewTerminalHandlerWithLevel returns a human readable handler, colored when useColor.
func NewTerminalHandlerWithLevel(wr io.Writer, level slog.Level, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(wr, level, useColor)
}

// JSONHandlerWithLevel returns a handler which prints records in JSON format.
func JSONHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return ethlog.JSONHandlerWithLevel(wr, level)
}

// LogfmtHandlerWithLevel returns a handler which prints records in logfmt format.
func LogfmtHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return ethlog.LogfmtHandlerWithLevel(wr, level)
}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}

type levelHandler struct {
	slog.Handler
	level *slog.LevelVar
}

// WithLevelVar wraps h so that records below the current value of level are dropped.
// The inner handler should accept every level.
func WithLevelVar(h slog.Handler, level *slog.LevelVar) slog.Handler {
	return &levelHandler{h, level}
}

func (h *levelHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return lvl >= h.level.Level() && h.Handler.Enabled(ctx, lvl)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.Handler.WithAttrs(attrs), h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{h.Handler.WithGroup(name), h.level}
}
