package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	os.Unsetenv(EnvPort)
	os.Unsetenv(EnvLogLevel)
	os.Unsetenv(EnvHeadless)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %q, want %q", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.Headless() {
		t.Error("Headless() = true, want false by default")
	}
	if cfg.FFmpegPath() != "ffmpeg" {
		t.Errorf("FFmpegPath() = %q, want ffmpeg", cfg.FFmpegPath())
	}
}

func TestNew_PortFromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9100")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port() = %d, want 9100", cfg.Port())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a number", value: "abc"},
		{name: "zero", value: "0"},
		{name: "too large", value: "70000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Setenv(EnvPort, tc.value)
			defer os.Unsetenv(EnvPort)

			if _, err := New(); err == nil {
				t.Fatalf("New() with %s=%q succeeded, want error", EnvPort, tc.value)
			}
		})
	}
}

func TestNew_ProjectDirLayout(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv(EnvProjectDir, tmpDir)
	defer os.Unsetenv(EnvProjectDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ProjectDir() != tmpDir {
		t.Errorf("ProjectDir() = %q, want %q", cfg.ProjectDir(), tmpDir)
	}
	if got, want := cfg.VideosDir(), filepath.Join(tmpDir, "videos"); got != want {
		t.Errorf("VideosDir() = %q, want %q", got, want)
	}
	if got, want := cfg.SegmentVideosDir(), filepath.Join(tmpDir, "segments", "videos"); got != want {
		t.Errorf("SegmentVideosDir() = %q, want %q", got, want)
	}
	if got, want := cfg.SegmentFramesDir(), filepath.Join(tmpDir, "segments", "frames"); got != want {
		t.Errorf("SegmentFramesDir() = %q, want %q", got, want)
	}
	if got, want := cfg.UnifiedDatasetDir(), filepath.Join(tmpDir, "unified_dataset"); got != want {
		t.Errorf("UnifiedDatasetDir() = %q, want %q", got, want)
	}
	if got, want := cfg.DBPath(), filepath.Join(tmpDir, DBFilename); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
}

func TestNew_Headless(t *testing.T) {
	os.Setenv(EnvHeadless, "true")
	defer os.Unsetenv(EnvHeadless)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Headless() {
		t.Error("Headless() = false, want true")
	}
}
