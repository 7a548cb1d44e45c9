package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger is the process-wide structured-ish logger. Handlers and services
// receive it by injection; a nil *Logger is safe and silent, which keeps
// tests quiet without extra wiring.
type Logger struct {
	out *log.Logger
}

func NewLogger() *Logger {
	return &Logger{out: log.New(os.Stdout, "", 0)}
}

func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", 0)}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf("INFO", format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf("WARN", format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf("ERROR", format, args...)
}

func (l *Logger) printf(level, format string, args ...interface{}) {
	if l == nil || l.out == nil {
		return
	}
	ts := time.Now().UTC().Format("2006-01-02 15:04:05")
	l.out.Printf("[%s] [%s] %s", ts, level, fmt.Sprintf(format, args...))
}
