package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name          string
		level         Level
		logFunc       func(Logger, string)
		expectedInLog bool
	}{
		{
			name:          "debug message when level is debug",
			level:         LevelDebug,
			logFunc:       func(l Logger, msg string) { l.Debug(msg) },
			expectedInLog: true,
		},
		{
			name:          "debug message when level is info",
			level:         LevelInfo,
			logFunc:       func(l Logger, msg string) { l.Debug(msg) },
			expectedInLog: false,
		},
		{
			name:          "info message when level is warn",
			level:         LevelWarn,
			logFunc:       func(l Logger, msg string) { l.Info(msg) },
			expectedInLog: false,
		},
		{
			name:          "warn message when level is warn",
			level:         LevelWarn,
			logFunc:       func(l Logger, msg string) { l.Warn(msg) },
			expectedInLog: true,
		},
		{
			name:          "error message when level is error",
			level:         LevelError,
			logFunc:       func(l Logger, msg string) { l.Error(msg) },
			expectedInLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewLogger(tt.level, buf)

			testMsg := "scan finished"
			tt.logFunc(logger, testMsg)

			contains := strings.Contains(buf.String(), testMsg)
			if contains != tt.expectedInLog {
				t.Errorf("expected message in log: %v, got: %v (output: %s)",
					tt.expectedInLog, contains, buf.String())
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(LevelInfo, buf)

	logger.Info("file scanned",
		F("path", "app/main.py"),
		F("findings", 3),
		F("err", errors.New("permission denied")),
	)

	output := buf.String()
	for _, want := range []string{"path", "app/main.py", "findings", "3", "permission denied"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewLogger(LevelInfo, buf)

	child := base.WithFields(F("run", "abc123"))
	child.Info("workspace scan", F("files", 12))

	output := buf.String()
	for _, want := range []string{"run", "abc123", "files", "12"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}

	// Child levels are independent of the parent
	child.SetLevel(LevelSilent)
	buf.Reset()
	base.Info("parent still logs")
	if !strings.Contains(buf.String(), "parent still logs") {
		t.Errorf("expected parent output, got: %s", buf.String())
	}
}

func TestLogger_SilentMode(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(LevelSilent, buf)

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	if buf.Len() > 0 {
		t.Errorf("expected no output in silent mode, got: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(LevelError, buf)

	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected no output at error level for info, got: %s", buf.String())
	}

	logger.SetLevel(LevelInfo)
	buf.Reset()

	logger.Info("info message")
	if buf.Len() == 0 {
		t.Error("expected output after changing to info level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"off", LevelSilent},
		{"", LevelWarn},
		{"loud", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelSilent, "SILENT"},
		{Level(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLogger(LevelInfo, bytes.NewBuffer(make([]byte, 0, 1024*1024)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			F("iteration", i),
			F("key", "value"),
		)
	}
}
