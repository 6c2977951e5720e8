package logger

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		max    int
		expect string
	}{
		{name: "empty", input: "", max: 10, expect: ""},
		{name: "plain", input: "/api/v1/tasks", max: 100, expect: "/api/v1/tasks"},
		{name: "control characters", input: "a\x00b\x1bc\nd\re", max: 100, expect: "abcde"},
		{name: "invalid utf8", input: "ok\xff\xfe", max: 100, expect: "ok"},
		{name: "truncated", input: "abcdefgh", max: 4, expect: "abcd..."},
		{name: "default max", input: strings.Repeat("x", MaxGeneralStringLength+1), max: 0, expect: strings.Repeat("x", MaxGeneralStringLength) + "..."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeString(tt.input, tt.max); got != tt.expect {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expect)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	long := "/" + strings.Repeat("p", MaxPathLength+10)
	got := SanitizePath(long)
	if len(got) != MaxPathLength+3 {
		t.Errorf("Expected truncated length %d, got %d", MaxPathLength+3, len(got))
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}
	if got := SanitizeError(errors.New("bad\ninput")); got != "badinput" {
		t.Errorf("Expected 'badinput', got %q", got)
	}
}

func TestLoggers(t *testing.T) {
	t.Parallel()

	for _, debug := range []bool{false, true} {
		l, err := NewProductionLogger(debug)
		if err != nil {
			t.Fatalf("NewProductionLogger(%v) error = %v", debug, err)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != debug {
			t.Errorf("Expected debug enabled = %v, got %v", debug, got)
		}

		c, err := NewCLILogger(debug)
		if err != nil {
			t.Fatalf("NewCLILogger(%v) error = %v", debug, err)
		}
		if got := c.Core().Enabled(zapcore.DebugLevel); got != debug {
			t.Errorf("Expected CLI debug enabled = %v, got %v", debug, got)
		}
	}
	if err := Sync(nil); err != nil {
		t.Errorf("Expected nil error syncing nil logger, got %v", err)
	}
}
