// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "go.uber.org/zap"

// A Logger reports recoverable conditions as warnings. It is carried
// on a Context rather than held as a package global so that -q (quiet
// mode) is a property of one run, not of the process.
type Logger struct {
	z     *zap.SugaredLogger
	quiet bool
}

// NewLogger builds a Logger backed by zap's development console config.
// When quiet is true, Warnf becomes a no-op; errors still propagate
// through the normal return-value path regardless of quiet.
func NewLogger(quiet bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	z, err := cfg.Build()
	if err != nil {
		// zap's own construction does not fail for this config; fall
		// back to a no-op logger rather than propagate a logging-only
		// error into document-opening code.
		z = zap.NewNop()
	}
	return &Logger{z: z.Sugar(), quiet: quiet}
}

// Warnf logs a Recoverable condition. Suppressed when quiet mode is on.
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil || l.quiet {
		return
	}
	l.z.Warnf(format, args...)
}

// Infof logs a diagnostic message (e.g. --fonts, --papers output uses
// fmt directly; this is for engine-level notices, while conditions such
// as font fallback go through Warnf).
func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil || l.quiet {
		return
	}
	l.z.Infof(format, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.z.Sync()
}
