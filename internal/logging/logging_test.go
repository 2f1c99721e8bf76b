package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_InvalidLevel(t *testing.T) {
	require.Error(t, Init("loud", "console"))
}

func TestInit_File(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})
	path := filepath.Join(t.TempDir(), "logs", "gamekeeper.log")

	require.NoError(t, Init("debug", path))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	Log("metamod updated", Success)
	Log("fine detail", Debug)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "metamod updated")
	assert.Contains(t, string(data), "status=success")
	assert.Contains(t, string(data), "fine detail")
}

func TestLogTo_Levels(t *testing.T) {
	tests := []struct {
		sev   Severity
		level log.Level
	}{
		{Info, log.InfoLevel},
		{Warning, log.WarnLevel},
		{Error, log.ErrorLevel},
		{Success, log.InfoLevel},
		{Debug, log.DebugLevel},
		{Severity("other"), log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			logger := log.New()
			logger.SetLevel(log.DebugLevel)
			logger.SetOutput(&bytes.Buffer{})
			var got log.Level
			logger.AddHook(levelHook{fn: func(l log.Level) { got = l }})

			LogTo(log.NewEntry(logger), "msg", tt.sev)
			assert.Equal(t, tt.level, got)
		})
	}
}

type levelHook struct{ fn func(log.Level) }

func (levelHook) Levels() []log.Level { return log.AllLevels }

func (h levelHook) Fire(e *log.Entry) error {
	h.fn(e.Level)
	return nil
}
