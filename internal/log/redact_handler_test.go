package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestRedactingHandler_MasksSensitiveKeys tests that credential-like keys are masked.
func TestRedactingHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{
			name:     "cookie key is masked",
			key:      "cookie",
			value:    "session=abc123",
			wantMask: true,
		},
		{
			name:     "Cookie key (uppercase) is masked",
			key:      "Cookie",
			value:    "session=abc123",
			wantMask: true,
		},
		{
			name:     "authorization key is masked",
			key:      "authorization",
			value:    "Bearer token123",
			wantMask: true,
		},
		{
			name:     "url key is not masked",
			key:      "url",
			value:    "https://avatar.fandom.com/wiki/Aang",
			wantMask: false,
		},
		{
			name:     "domain_key is not masked",
			key:      "domain_key",
			value:    "avatar.fandom.com",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()
			hasMask := strings.Contains(output, MaskValue)
			hasValue := strings.Contains(output, tt.value)

			if tt.wantMask {
				if !hasMask {
					t.Errorf("expected %q value to be masked, output: %s", tt.key, output)
				}
				if hasValue {
					t.Errorf("sensitive value leaked into output: %s", output)
				}
			} else if hasMask {
				t.Errorf("expected %q value to pass through, output: %s", tt.key, output)
			}
		})
	}
}

// TestRedactingHandler_MasksSensitiveValues tests value-shape based masking.
func TestRedactingHandler_MasksSensitiveValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("request", "header_value", "Bearer super-secret-value")

	if strings.Contains(buf.String(), "super-secret-value") {
		t.Errorf("bearer token leaked into output: %s", buf.String())
	}
}

// TestRedactingHandler_Groups tests that grouped attributes are masked too.
func TestRedactingHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("request", slog.Group("headers",
		slog.String("cookie", "session=abc"),
		slog.String("accept", "text/html"),
	))

	output := buf.String()
	if strings.Contains(output, "session=abc") {
		t.Errorf("cookie leaked inside group: %s", output)
	}
	if !strings.Contains(output, "text/html") {
		t.Errorf("benign grouped attribute was lost: %s", output)
	}
}

// TestNewLogger tests the level selection of the logger constructor.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("debug line")
		if !strings.Contains(buf.String(), "debug line") {
			t.Error("expected debug output in verbose mode")
		}
	})

	t.Run("quiet suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("info line")
		if buf.Len() != 0 {
			t.Errorf("expected no output, got: %s", buf.String())
		}
	})
}
