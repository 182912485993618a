package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// consoleTimeFormat is the timestamp layout of console output.
const consoleTimeFormat = "2006-01-02 15:04:05"

// ANSI colors per level name.
const (
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorReset   = "\x1b[0m"
)

// consoleHandler is an slog.Handler that renders records with zerolog's
// ConsoleWriter. Output columns are timestamp, env, host, level and message,
// followed by the remaining attributes.
type consoleHandler struct {
	logger zerolog.Logger
	level  slog.Level
	attrs  []slog.Attr
	prefix string
}

func newConsoleHandler(w io.Writer, level slog.Level, noColor bool) *consoleHandler {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: consoleTimeFormat,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			envKey,
			hostKey,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{envKey, hostKey},
		FormatLevel:   consoleLevelFormatter(noColor),
	}
	return &consoleHandler{
		logger: zerolog.New(out),
		level:  level,
	}
}

// consoleLevelFormatter pads and colors the level column.
// HEADER is the label Handle uses for records carrying header=true.
func consoleLevelFormatter(noColor bool) zerolog.Formatter {
	return func(i any) string {
		name, ok := i.(string)
		if !ok {
			return "???"
		}
		label := fmt.Sprintf("%-7s", strings.ToUpper(name))
		if noColor {
			return label
		}
		var color string
		switch strings.ToUpper(name) {
		case "ERROR":
			color = colorRed
		case "WARNING":
			color = colorYellow
		case "SUCCESS":
			color = colorGreen
		case "HEADER":
			color = colorMagenta
		default:
			color = colorBlue
		}
		return color + label + colorReset
	}
}

// Enabled reports whether records at level are written.
func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle writes the record through zerolog.
func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	name := levelName(r.Level)
	ev := h.logger.Log()

	fields := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	fields = append(fields, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		fields = append(fields, a)
		return true
	})
	for _, a := range fields {
		if a.Key == headerKey && a.Value.Kind() == slog.KindBool && a.Value.Bool() {
			name = "HEADER"
			continue
		}
		addField(ev, a.Key, a.Value)
	}

	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	ev.Time(zerolog.TimestampFieldName, t).
		Str(zerolog.LevelFieldName, name).
		Msg(r.Message)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a handler that qualifies later keys with name.
func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// addField copies one slog value onto a zerolog event.
func addField(ev *zerolog.Event, key string, v slog.Value) {
	if key == "" {
		return
	}
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		ev.Str(key, v.String())
	case slog.KindInt64:
		ev.Int64(key, v.Int64())
	case slog.KindUint64:
		ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		ev.Float64(key, v.Float64())
	case slog.KindBool:
		ev.Bool(key, v.Bool())
	case slog.KindDuration:
		ev.Dur(key, v.Duration())
	case slog.KindTime:
		ev.Time(key, v.Time())
	case slog.KindGroup:
		for _, a := range v.Group() {
			addField(ev, key+"."+a.Key, a.Value)
		}
	default:
		if err, ok := v.Any().(error); ok {
			ev.AnErr(key, err)
			return
		}
		ev.Interface(key, v.Any())
	}
}
