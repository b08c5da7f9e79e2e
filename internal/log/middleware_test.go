package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Component: ComponentHTTP,
		Handler:   slog.NewTextHandler(buf, nil),
	})
	return logger, buf
}

func TestFromContext(t *testing.T) {
	logger, _ := newBufferLogger()
	ctx := context.WithValue(context.Background(), LoggerContextKey, logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the logger stored in the context")
	}

	fallback := FromContext(context.Background())
	if fallback == nil {
		t.Fatal("FromContext should never return nil")
	}
	if fallback.Component() != "unknown" {
		t.Errorf("Fallback logger component = %q, want unknown", fallback.Component())
	}
}

func TestStructuredLogger_LogHTTPEnd(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"2xx logs at info", 200, "level=INFO"},
		{"4xx logs at warn", 404, "level=WARN"},
		{"5xx logs at error", 500, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger()
			r := httptest.NewRequest("POST", "/api/v1/recipients?query=x", nil)

			NewStructuredLogger(logger).LogHTTPEnd(context.Background(), r, tt.statusCode, 12, "1.2.3.4", "alice")

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("LogHTTPEnd output = %q, want level %q", out, tt.wantLevel)
			}
			for _, field := range []string{
				"method=POST",
				"path=/api/v1/recipients",
				"client_ip=1.2.3.4",
				"session_id=alice",
				"status_code=",
				"duration_ms=12",
			} {
				if !strings.Contains(out, field) {
					t.Errorf("LogHTTPEnd output missing %q: %s", field, out)
				}
			}
		})
	}
}

func TestStructuredLogger_LogError(t *testing.T) {
	logger, buf := newBufferLogger()

	NewStructuredLogger(logger).LogError(context.Background(), "Publish failed",
		errors.New("broker gone"), ComponentAMQP, OpPublish,
		LogFields{FieldOccasionID: "occ-1"})

	out := buf.String()
	for _, field := range []string{
		"level=ERROR",
		`error="broker gone"`,
		"operation=publish",
		"component=amqp",
		"occasion_id=occ-1",
	} {
		if !strings.Contains(out, field) {
			t.Errorf("LogError output missing %q: %s", field, out)
		}
	}
}

func TestLogFields_ToSlice(t *testing.T) {
	fields := NewFields().
		WithClientIP("1.2.3.4").
		WithSessionID("alice").
		WithError(nil)

	slice := fields.ToSlice()
	if len(slice) != 4 {
		t.Errorf("ToSlice() length = %d, want 4 (nil errors are dropped)", len(slice))
	}
}
