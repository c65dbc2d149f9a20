// Package logging is a small leveled logger. Each subsystem derives a
// prefixed child from the process-wide logger so log lines carry their
// origin without any per-call ceremony.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

var levelColors = map[Level]string{
	LevelDebug: "\033[36m",
	LevelWarn:  "\033[33m",
	LevelError: "\033[31m",
	LevelFatal: "\033[35m",
}

// ParseLevel maps a config string to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Config controls the output, threshold and prefix of a logger
type Config struct {
	Level       string
	Prefix      string
	EnableColor bool
	Output      io.Writer
}

// sink is the shared output behind a logger and all its children
type sink struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

func (s *sink) write(level Level, prefix, msg string) {
	line := fmt.Sprintf("%-5s %s ", levelTags[level], time.Now().Format("2006-01-02 15:04:05.000"))
	if prefix != "" {
		line += "[" + prefix + "] "
	}
	line += msg

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.color {
		if c, ok := levelColors[level]; ok {
			line = c + line + "\033[0m"
		}
	}
	fmt.Fprintln(s.out, line)
}

// Logger filters messages below its level and stamps them with its prefix.
// Derived loggers share one sink, so lines never interleave mid-write.
type Logger struct {
	level  Level
	prefix string
	sink   *sink
}

func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		level:  ParseLevel(cfg.Level),
		prefix: cfg.Prefix,
		sink:   &sink{out: out, color: cfg.EnableColor},
	}
}

// WithPrefix derives a child logger whose prefix is appended to this one's
func (l *Logger) WithPrefix(prefix string) *Logger {
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + ":" + prefix
	} else {
		child.prefix = prefix
	}
	return &child
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.sink.write(level, l.prefix, fmt.Sprintf(format, args...))
	if level == LevelFatal {
		os.Exit(1)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.logf(LevelFatal, format, args...) }

func (l *Logger) Info(args ...interface{})  { l.logf(LevelInfo, "%s", fmt.Sprint(args...)) }
func (l *Logger) Warn(args ...interface{})  { l.logf(LevelWarn, "%s", fmt.Sprint(args...)) }
func (l *Logger) Error(args ...interface{}) { l.logf(LevelError, "%s", fmt.Sprint(args...)) }
