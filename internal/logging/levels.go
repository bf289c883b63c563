package logging

import "log/slog"

// LevelTrace sits below slog.LevelDebug for very chatty diagnostics such as
// per-value bridge conversions.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps a -v flag count to a log level: 0 shows warnings
// and errors only, 1 adds info, 2 adds debug, 3 or more adds trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}
