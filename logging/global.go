package logging

import "os"

// root is the process-wide logger until Configure replaces it
var root = New(Config{
	Level:       os.Getenv("LOG_LEVEL"),
	EnableColor: os.Getenv("LOG_COLOR") != "false",
})

// Configure replaces the process-wide logger. Call it once at startup,
// before any subsystem derives a prefixed child.
func Configure(cfg Config) {
	root = New(cfg)
}

// WithPrefix derives a prefixed child from the process-wide logger
func WithPrefix(prefix string) *Logger {
	return root.WithPrefix(prefix)
}

func Debugf(format string, args ...interface{}) { root.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { root.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { root.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { root.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { root.Fatalf(format, args...) }

func Info(args ...interface{}) { root.Info(args...) }
func Warn(args ...interface{}) { root.Warn(args...) }
