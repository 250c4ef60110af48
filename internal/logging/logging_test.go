package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func captureRecord(t *testing.T, log func(*slog.Logger)) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	log(slog.New(slog.NewJSONHandler(&buf, nil)))

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode log record: %v", err)
	}
	return record
}

func TestWithComponent(t *testing.T) {
	record := captureRecord(t, func(l *slog.Logger) {
		WithComponent(l, "api").Info("started")
	})
	if record["component"] != "api" {
		t.Fatalf("component = %v, want api", record["component"])
	}
}

func TestWithRunIDAndVideo(t *testing.T) {
	record := captureRecord(t, func(l *slog.Logger) {
		WithVideo(WithRunID(l, "run-123"), "clip.mp4").Info("export run started")
	})
	if record["run_id"] != "run-123" {
		t.Fatalf("run_id = %v, want run-123", record["run_id"])
	}
	if record["video"] != "clip.mp4" {
		t.Fatalf("video = %v, want clip.mp4", record["video"])
	}
}

func TestWithRequestID(t *testing.T) {
	record := captureRecord(t, func(l *slog.Logger) {
		WithRequestID(l, "abc12345").Info("request")
	})
	if record["request_id"] != "abc12345" {
		t.Fatalf("request_id = %v, want abc12345", record["request_id"])
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "short token fully masked", token: "abc", want: "****"},
		{name: "boundary length fully masked", token: "12345678", want: "****"},
		{name: "long token keeps edges", token: "abcdefghijklmnop", want: "abcd...mnop"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeToken(tc.token); got != tc.want {
				t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.token, got, tc.want)
			}
		})
	}
}
