// Package logger is a severity-leveled log/slog wrapper, grounded on
// the teacher's internal/logger (its source was not retrieved in this
// pack; the API below is reconstructed from internal/logger/logger_test.go,
// which exercises exactly this shape: Tracef/Debugf/Infof/Warnf/Errorf at
// TRACE/DEBUG/INFO/WARNING/ERROR/OFF severities, in either a human
// "text" or machine "json" format).
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// slog only defines Debug/Info/Warn/Error, so TRACE is modeled as a
// custom level below Debug, the same distance apart as the built-ins;
// WARNING is slog's own Warn level.
const (
	levelTrace   = slog.LevelDebug - 4
	levelWarning = slog.LevelWarn
)

// Severity name strings, mirrored in cfg.LogSeverity: this package does
// not import cfg, which keeps the two ambient layers decoupled.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

var severityNames = map[slog.Level]string{
	levelTrace:      "TRACE",
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	levelWarning:    "WARNING",
	slog.LevelError: "ERROR",
}

// severityLevel maps the cfg.Config severity strings onto slog levels.
// "OFF" maps to a level above Error so nothing is ever emitted.
func severityLevel(s string) slog.Level {
	switch s {
	case "TRACE":
		return levelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARNING":
		return levelWarning
	case "ERROR":
		return slog.LevelError
	default: // "OFF" or unrecognized
		return slog.LevelError + 64
	}
}

type factory struct {
	format string // "text" or "json"
	level  *slog.LevelVar
}

func (f *factory) handler(w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: f.level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl, _ := a.Value.Any().(slog.Level)
				name, ok := severityNames[lvl]
				if !ok {
					name = lvl.String()
				}
				a.Key = "severity"
				a.Value = slog.StringValue(name)
			}
			if a.Key == slog.MessageKey {
				a.Key = "message"
			}
			if a.Key == slog.TimeKey && f.format != "json" {
				t, _ := a.Value.Any().(time.Time)
				a.Value = slog.StringValue(t.Format("01/02/2006 15:04:05.000000"))
			}
			if a.Key == slog.TimeKey && f.format == "json" {
				t, _ := a.Value.Any().(time.Time)
				a.Key = "timestamp"
				a.Value = slog.GroupValue(
					slog.Int64("seconds", t.Unix()),
					slog.Int("nanos", t.Nanosecond()),
				)
			}
			return a
		},
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

var (
	defaultLoggerFactory = &factory{format: "text", level: &slog.LevelVar{}}
	defaultLogger        = slog.New(defaultLoggerFactory.handler(os.Stderr))
)

// Config is the subset of cfg.Config logger.Init needs; kept narrow so
// this package does not import cfg.
type Config struct {
	Format   string // "text" or "json"
	Severity string // TRACE|DEBUG|INFO|WARNING|ERROR|OFF
	FilePath string // when set, logs rotate there via lumberjack instead of stderr
}

// Init installs the process-global logger per cfg. Call once at
// startup (cmd/boot.go does this in bootKernel, before the disk image
// is opened).
func Init(c Config) {
	defaultLoggerFactory.format = c.Format
	defaultLoggerFactory.level.Set(severityLevel(c.Severity))

	var w io.Writer = os.Stderr
	if c.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	defaultLogger = slog.New(defaultLoggerFactory.handler(w))
}

func Tracef(format string, args ...interface{}) {
	defaultLogger.Log(nil, levelTrace, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) {
	defaultLogger.Debug(fmt.Sprintf(format, args...))
}

func Infof(format string, args ...interface{}) {
	defaultLogger.Info(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	defaultLogger.Log(nil, levelWarning, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) {
	defaultLogger.Error(fmt.Sprintf(format, args...))
}

// AsyncLogger buffers writes to an underlying io.WriteCloser (typically
// a lumberjack-rotated file) on a background goroutine so a slow disk
// never blocks the kernel's single-writer call path. A full buffer
// drops the message rather than applying backpressure, since log
// delivery must never be allowed to stall the scheduler.
type AsyncLogger struct {
	w    io.WriteCloser
	ch   chan []byte
	done chan struct{}
}

func NewAsyncLogger(w io.WriteCloser, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{w: w, ch: make(chan []byte, bufferSize), done: make(chan struct{})}
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for p := range l.ch {
		if _, err := l.w.Write(p); err != nil {
			return
		}
	}
}

func (l *AsyncLogger) Write(p []byte) (int, error) {
	data := append([]byte(nil), p...)
	select {
	case l.ch <- data:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

func (l *AsyncLogger) Close() error {
	close(l.ch)
	<-l.done
	return l.w.Close()
}
