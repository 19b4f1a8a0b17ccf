package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWriterLogger(&stdout, &stderr)
	l.SetLevel(DebugLevel)

	l.Debug("frames built", Fields{"frames": 40})
	l.Warn("short signal")
	l.Error(errors.New("boom"), "decode failed", Fields{"file": "a.wav"})

	assert.Contains(t, stdout.String(), "[DEBUG] frames built frames=40")
	assert.Contains(t, stderr.String(), "[WARN] short signal")
	assert.Contains(t, stderr.String(), "[ERROR] decode failed: boom file=a.wav")
	assert.NotContains(t, stdout.String(), "WARN")
}

func TestDefaultLoggerLevelIsShared(t *testing.T) {
	var stdout, stderr bytes.Buffer
	parent := NewWriterLogger(&stdout, &stderr)
	child := parent.WithFields(Fields{"component": "extractor"})

	child.Debug("hidden")
	assert.Empty(t, stdout.String())

	parent.SetLevel(DebugLevel)
	child.Debug("visible")
	assert.Contains(t, stdout.String(), "[DEBUG] visible component=extractor")
}

func TestDefaultLoggerFatalExits(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWriterLogger(&stdout, &stderr)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal(errors.New("bad config"), "cannot start")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "[FATAL] cannot start: bad config")
}

func TestWithContextFields(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewWriterLogger(&stdout, &stderr)

	ctx := ContextWithFields(context.Background(), Fields{"request": "r1"})
	ctx = ContextWithFields(ctx, Fields{"file": "song.wav"})
	l.WithContext(ctx).Info("analyzing")

	assert.Contains(t, stdout.String(), "file=song.wav request=r1")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
	Info("dropped")
}

func TestColorToggles(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	var stdout, stderr bytes.Buffer
	l := NewWriterLogger(&stdout, &stderr)
	SetGlobalLogger(l)

	EnableColors()
	Warn("loud")
	assert.Contains(t, stderr.String(), ColorYellow+"[WARN] loud"+ColorReset)

	stderr.Reset()
	DisableColors()
	Error(errors.New("boom"), "plain")
	assert.NotContains(t, stderr.String(), ColorRed)
	assert.Contains(t, stderr.String(), "[ERROR] plain: boom")
}
