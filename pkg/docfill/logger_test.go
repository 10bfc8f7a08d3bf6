package docfill

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	emitAll := func(l *Logger) {
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")
	}

	tests := []struct {
		name           string
		level          LogLevel
		setupFunc      func(*Logger)
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:           "debug level shows all messages",
			level:          LogDebug,
			setupFunc:      emitAll,
			expectedOutput: []string{"[DEBUG] debug message", "[INFO] info message", "[WARN] warn message", "[ERROR] error message"},
		},
		{
			name:           "info level hides debug messages",
			level:          LogInfo,
			setupFunc:      emitAll,
			expectedOutput: []string{"[INFO]", "[WARN]", "[ERROR]"},
			notExpected:    []string{"[DEBUG]", "debug message"},
		},
		{
			name:           "warn level shows only warnings and errors",
			level:          LogWarn,
			setupFunc:      emitAll,
			expectedOutput: []string{"[WARN]", "[ERROR]"},
			notExpected:    []string{"[DEBUG]", "[INFO]"},
		},
		{
			name:           "error level shows only errors",
			level:          LogError,
			setupFunc:      emitAll,
			expectedOutput: []string{"[ERROR] error message"},
			notExpected:    []string{"[DEBUG]", "[INFO]", "[WARN]"},
		},
		{
			name:        "off level shows nothing",
			level:       LogOff,
			setupFunc:   emitAll,
			notExpected: []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"},
		},
		{
			name:  "structured fields",
			level: LogDebug,
			setupFunc: func(l *Logger) {
				l.WithFields(Fields{
					"table": 2,
					"kind":  "listing",
				}).Debug("filling table")
			},
			expectedOutput: []string{"[DEBUG] filling table kind=listing table=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			tt.setupFunc(logger)

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				assert.Contains(t, output, expected)
			}
			for _, notExpected := range tt.notExpected {
				assert.NotContains(t, output, notExpected)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		" warn ":  LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"":        LogInfo,
		"verbose": LogInfo,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLogLevel(input), "input %q", input)
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "WARN", LogWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerFieldsAreOrdered(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	logger.
		WithField("request_id", "12345").
		WithField("file", "template.docx").
		WithFields(Fields{"added": 3, "marker": "Related Party"}).
		Info("processed")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line,
		"[INFO] processed added=3 file=template.docx marker=Related Party request_id=12345"), line)
}

func TestLoggerChildrenDoNotShareFields(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&buf, LogInfo).WithField("a", 1)
	_ = parent.WithField("b", 2)

	parent.Info("parent")
	assert.NotContains(t, buf.String(), "b=2")
	assert.Contains(t, buf.String(), "a=1")
}

func TestLoggerChildrenShareLevel(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger(&buf, LogInfo)
	child := root.WithField("request_id", "r1")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	root.SetLevel(LogDebug)
	assert.True(t, child.IsDebugMode())
	child.Debug("shown")
	assert.Contains(t, buf.String(), "[DEBUG] shown request_id=r1")
}

func TestLoggerConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.WithField("worker", i).Info("done")
		}(i)
	}
	wg.Wait()

	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 20)
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))

	Debug("test debug")
	Info("test info")
	Warn("test warn")
	Error("test error")
	WithField("k", "v").Info("with field")
	WithFields(Fields{"x": 1}).Info("with fields")

	output := buf.String()
	for _, expected := range []string{
		"[DEBUG] test debug",
		"[INFO] test info",
		"[WARN] test warn",
		"[ERROR] test error",
		"with field k=v",
		"with fields x=1",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestLoggerContext(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)
	global := NewLogger(nil, LogOff)
	SetLogger(global)

	assert.Same(t, global, LoggerFromContext(context.Background()))
	assert.Same(t, global, LoggerFromContext(nil))
	assert.Same(t, global, LoggerFromContext(ContextWithLogger(context.Background(), nil)))

	scoped := NewLogger(nil, LogDebug)
	assert.Same(t, scoped, LoggerFromContext(ContextWithLogger(context.Background(), scoped)))
}
