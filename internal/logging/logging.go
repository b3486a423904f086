package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Error(msg string, err error, fields map[string]any)
}

type ZeroLogger struct {
	zl zerolog.Logger
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *ZeroLogger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return &ZeroLogger{zl: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewJSON returns a logger emitting one JSON object per line.
func NewJSON(w io.Writer, level zerolog.Level) *ZeroLogger {
	return &ZeroLogger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func Default() *ZeroLogger {
	return New(os.Stderr, zerolog.InfoLevel)
}

func Nop() *ZeroLogger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(s))
}

func (l *ZeroLogger) Debug(msg string, fields map[string]any) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *ZeroLogger) Info(msg string, fields map[string]any) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]any) {
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.emit(ev, msg, fields)
}

func (l *ZeroLogger) emit(ev *zerolog.Event, msg string, fields map[string]any) {
	if ev == nil {
		return
	}
	for k, v := range fields {
		ev = ev.Interface(k, sanitize(k, v))
	}
	ev.Msg(msg)
}

func sanitize(key string, value any) any {
	k := strings.ToLower(key)
	for _, s := range []string{"password", "passphrase", "secret", "token", "key"} {
		if strings.Contains(k, s) {
			return "***"
		}
	}
	return value
}
