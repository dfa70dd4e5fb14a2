// Package debug provides global verbosity flags
package debug

import "log/slog"

// Enabled controls whether debug logging is active
var Enabled bool

// Frames controls whether per-frame pipeline logs are shown.
// At ~30 iterations per second these are very noisy; use --debug-frames.
var Frames bool

// Log emits a debug record only if debug mode is enabled
func Log(l *slog.Logger, msg string, args ...any) {
	if Enabled && l != nil {
		l.Debug(msg, args...)
	}
}

// FrameLog emits a debug record only if frame debugging is enabled
func FrameLog(l *slog.Logger, msg string, args ...any) {
	if Frames && l != nil {
		l.Debug(msg, args...)
	}
}
