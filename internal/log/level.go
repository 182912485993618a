package log

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Level is the verbosity threshold of a sink and the severity of an event.
// Lower values are more severe.
type Level int

const (
	// LevelError is for failures that lose information, such as transport errors.
	LevelError Level = iota
	// LevelWarning is for recoverable anomalies, such as non-200 responses.
	LevelWarning
	// LevelInfo is for progress messages.
	LevelInfo
	// LevelSuccess is for positive per-item events, such as each discovered link.
	LevelSuccess
	// LevelAll enables every event.
	LevelAll
)

// slog levels used for each event level. SUCCESS sits between INFO and DEBUG.
const (
	slogLevelSuccess = slog.Level(-2)
	slogLevelAll     = slog.LevelDebug - 4
)

// ErrUnknownLevel is returned by ParseLevel for names it does not know.
var ErrUnknownLevel = errors.New("unknown log level")

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelAll:
		return "ALL"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a level name, case-insensitively, into a Level.
// Unknown names return LevelError together with ErrUnknownLevel, so a
// caller that ignores the error ends up with the quietest sink.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return LevelError, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "INFO":
		return LevelInfo, nil
	case "SUCCESS":
		return LevelSuccess, nil
	case "ALL":
		return LevelAll, nil
	default:
		return LevelError, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// slogLevel returns the slog threshold for a configured level.
func (l Level) slogLevel() slog.Level {
	switch {
	case l <= LevelError:
		return slog.LevelError
	case l == LevelWarning:
		return slog.LevelWarn
	case l == LevelInfo:
		return slog.LevelInfo
	case l == LevelSuccess:
		return slogLevelSuccess
	default:
		return slogLevelAll
	}
}

// levelName maps an slog level back to the name printed in output.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "SUCCESS"
	}
}

// replaceLevel renames slog's level attribute for the text and json handlers.
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(lvl))
		}
	}
	return a
}
