// Package logging configures the process logger and provides the
// severity-tagged Log helper used for operator-facing messages.
package logging

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity tags an operator-facing message.
type Severity string

const (
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
	Success Severity = "success"
	Debug   Severity = "debug"
)

// Init parses the level and points the standard logger at path. An empty
// path or "console" logs to stderr.
func Init(logLevel string, logPath string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.Errorf("Failed parsing log-level %s: %s", logLevel, err)
		return err
	}

	formatter := &log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	if logPath != "" && logPath != "console" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return err
		}
		log.SetOutput(io.Writer(&lumberjack.Logger{
			Filename:   filepath.ToSlash(logPath),
			MaxSize:    5, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}))
		formatter.DisableColors = true
	} else {
		log.SetOutput(os.Stderr)
		formatter.ForceColors = term.IsTerminal(int(os.Stderr.Fd()))
	}

	log.SetFormatter(formatter)
	log.SetLevel(level)
	return nil
}

// Log writes msg to the standard logger at the level matching sev. Success
// is logged at info with status=success; unknown severities log as info.
func Log(msg string, sev Severity) {
	LogTo(log.NewEntry(log.StandardLogger()), msg, sev)
}

// LogTo is Log with an explicit entry, for callers that carry fields.
func LogTo(entry *log.Entry, msg string, sev Severity) {
	switch sev {
	case Warning:
		entry.Warn(msg)
	case Error:
		entry.Error(msg)
	case Success:
		entry.WithField("status", "success").Info(msg)
	case Debug:
		entry.Debug(msg)
	default:
		entry.Info(msg)
	}
}
