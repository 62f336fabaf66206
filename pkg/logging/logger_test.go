package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "test", LevelDebug)

	logger.Infof("Info message %d", 123)
	logger.Verbosef("Verbose message")
	logger.Debugf("Debug message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	expectedPatterns := []string{
		"[test] [INFO] Info message 123",
		"[test] [VERBOSE] Verbose message",
		"[test] [DEBUG] Debug message",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	}

	content := buf.String()
	for _, pattern := range expectedPatterns {
		if !strings.Contains(content, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		expected []string
		missing  []string
	}{
		{
			name:     "quiet keeps warnings and errors",
			level:    LevelQuiet,
			expected: []string{"[WARN]", "[ERROR]"},
			missing:  []string{"[INFO]", "[VERBOSE]", "[DEBUG]"},
		},
		{
			name:     "normal adds info",
			level:    LevelNormal,
			expected: []string{"[INFO]", "[WARN]", "[ERROR]"},
			missing:  []string{"[VERBOSE]", "[DEBUG]"},
		},
		{
			name:     "verbose adds steps",
			level:    LevelVerbose,
			expected: []string{"[INFO]", "[VERBOSE]"},
			missing:  []string{"[DEBUG]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, "filter", tt.level)

			logger.Infof("info")
			logger.Verbosef("verbose")
			logger.Debugf("debug")
			logger.Warnf("warn")
			logger.Errorf("error")

			content := buf.String()
			for _, want := range tt.expected {
				if !strings.Contains(content, want) {
					t.Errorf("expected %s in output:\n%s", want, content)
				}
			}
			for _, unwanted := range tt.missing {
				if strings.Contains(content, unwanted) {
					t.Errorf("did not expect %s in output:\n%s", unwanted, content)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
		ok    bool
	}{
		{"quiet", LevelQuiet, true},
		{"normal", LevelNormal, true},
		{"", LevelNormal, true},
		{"verbose", LevelVerbose, true},
		{"debug", LevelDebug, true},
		{"loud", LevelNormal, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLoggerWithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "parent", LevelNormal)
	child := parent.With("child")

	parent.Infof("from parent")
	child.Infof("from child")

	content := buf.String()
	if !strings.Contains(content, "[parent] [INFO] from parent") {
		t.Errorf("missing parent line:\n%s", content)
	}
	if !strings.Contains(content, "[child] [INFO] from child") {
		t.Errorf("missing child line:\n%s", content)
	}
	if child.Level() != LevelNormal {
		t.Errorf("expected child to inherit level, got %v", child.Level())
	}
}

func TestNewFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "tugas.log")

	logger, err := NewFile(logPath, "file", LevelNormal)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infof("written to disk")
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}
	// Closing twice must be harmless
	if err := logger.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "[file] [INFO] written to disk") {
		t.Errorf("unexpected log content:\n%s", content)
	}
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "concurrent", LevelNormal)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			child := logger.With("worker")
			for j := 0; j < 10; j++ {
				child.Infof("goroutine %d message %d", id, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("Expected 100 log lines, got %d", len(lines))
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	// Must not panic
	logger.Infof("nothing")
	logger.Errorf("nothing")
}
