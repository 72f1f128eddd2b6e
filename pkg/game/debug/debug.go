//go:build !(js && wasm)

package debug

import "log/slog"

// Log writes msg at debug level to the default slog logger.
func Log(msg string, args ...any) {
	slog.Debug(msg, args...)
}
