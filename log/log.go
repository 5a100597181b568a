// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's slog based logger.
// Loggers created with WithContext resolve the root handler on every call, so
// package level loggers follow the handler installed later by the command.
package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Legacy verbosity levels, 0 (crit) to 5 (trace).
const (
	LvlCrit = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// Logger writes key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type contextLogger struct {
	ctx []any
}

// WithContext returns a logger that prefixes every record with ctx.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

func (l *contextLogger) merge(kv []any) []any {
	out := make([]any, 0, len(l.ctx)+len(kv))
	out = append(out, l.ctx...)
	return append(out, kv...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { Root().Trace(msg, l.merge(ctx)...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { Root().Debug(msg, l.merge(ctx)...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { Root().Info(msg, l.merge(ctx)...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { Root().Warn(msg, l.merge(ctx)...) }
func (l *contextLogger) Error(msg string, ctx ...any) { Root().Error(msg, l.merge(ctx)...) }

// Root returns the root logger.
func Root() ethlog.Logger {
	return ethlog.Root()
}

// SetDefault replaces the root logger.
func SetDefault(l ethlog.Logger) {
	ethlog.SetDefault(l)
}

// Init installs a root handler writing to w.
// verbosity uses the legacy scale, see LvlInfo.
func Init(w io.Writer, verbosity int, json bool, color bool) {
	lvl := ethlog.FromLegacyLevel(verbosity)
	var h slog.Handler
	if json {
		h = ethlog.JSONHandlerWithLevel(w, lvl)
	} else {
		h = ethlog.NewTerminalHandlerWithLevel(w, lvl, color)
	}
	SetDefault(ethlog.NewLogger(h))
}

func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
