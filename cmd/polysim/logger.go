package main

import (
	"fmt"
	"os"
	"time"
)

// stderrLogger prints timestamped log lines to stderr for verbose runs.
type stderrLogger struct{}

func newStderrLogger() *stderrLogger { return &stderrLogger{} }

func (l *stderrLogger) logf(level, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n",
		time.Now().Format("15:04:05.000"), level, fmt.Sprintf(format, args...))
}

func (l *stderrLogger) Debugf(format string, args ...any) { l.logf("DEBUG", format, args...) }
func (l *stderrLogger) Infof(format string, args ...any)  { l.logf("INFO", format, args...) }
func (l *stderrLogger) Warnf(format string, args ...any)  { l.logf("WARN", format, args...) }
func (l *stderrLogger) Errorf(format string, args ...any) { l.logf("ERROR", format, args...) }
