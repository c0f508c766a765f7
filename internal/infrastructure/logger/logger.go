package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var levelColors = []struct {
	plain   []byte
	colored []byte
}{
	{[]byte("level=DEBUG"), []byte(colorCyan + "level=DEBUG" + colorReset)},
	{[]byte("level=INFO"), []byte(colorGreen + "level=INFO" + colorReset)},
	{[]byte("level=WARN"), []byte(colorYellow + "level=WARN" + colorReset)},
	{[]byte("level=ERROR"), []byte(colorRed + "level=ERROR" + colorReset)},
}

// coloredHandler is a slog.TextHandler whose level field is colorized when the
// destination is a terminal.
type coloredHandler struct {
	slog.Handler
}

func newColoredHandler(w io.Writer, opts *slog.HandlerOptions) *coloredHandler {
	return &coloredHandler{
		Handler: slog.NewTextHandler(&colorWriter{writer: w, enabled: isTerminal(w)}, opts),
	}
}

func (h *coloredHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.Handler.Handle(ctx, record)
}

func (h *coloredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &coloredHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *coloredHandler) WithGroup(name string) slog.Handler {
	return &coloredHandler{Handler: h.Handler.WithGroup(name)}
}

// colorWriter wraps the level indicator of each text record in ANSI codes.
type colorWriter struct {
	writer  io.Writer
	enabled bool
}

func (cw *colorWriter) Write(p []byte) (int, error) {
	if !cw.enabled {
		return cw.writer.Write(p)
	}

	// the record's own level is the first level= field on the line
	out, at, match := p, -1, -1
	for i, lc := range levelColors {
		if idx := bytes.Index(p, lc.plain); idx >= 0 && (at < 0 || idx < at) {
			at, match = idx, i
		}
	}
	if match >= 0 {
		lc := levelColors[match]
		out = make([]byte, 0, len(p)+len(lc.colored)-len(lc.plain))
		out = append(out, p[:at]...)
		out = append(out, lc.colored...)
		out = append(out, p[at+len(lc.plain):]...)
	}
	if _, err := cw.writer.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// IsDevelopment reports whether environment uses human readable logs.
func IsDevelopment(environment string) bool {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "local", "dev", "development":
		return true
	default:
		return false
	}
}

// New builds a structured slog logger writing to w, honoring the configured level and
// environment. Development environments (local, dev, development) get text output,
// colored on a terminal; every other environment gets JSON.
func New(w io.Writer, appName, level, environment string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: !IsDevelopment(environment),
	}

	var handler slog.Handler
	if IsDevelopment(environment) {
		handler = newColoredHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("app", appName)
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
