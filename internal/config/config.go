// Package config provides configuration management for the annotator agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Default values
	DefaultPort     = 8690
	DefaultLogLevel = "info"

	// Environment variable names
	EnvPort       = "ANNOTATOR_PORT"
	EnvLogLevel   = "ANNOTATOR_LOG_LEVEL"
	EnvProjectDir = "ANNOTATOR_PROJECT_DIR"
	EnvHeadless   = "ANNOTATOR_HEADLESS"
	EnvFFmpeg     = "ANNOTATOR_FFMPEG"
	EnvFFprobe    = "ANNOTATOR_FFPROBE"

	// Database filename
	DBFilename = "annotator.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	Headless() bool
	ProjectDir() string
	VideosDir() string
	SegmentsDir() string
	SegmentVideosDir() string
	SegmentFramesDir() string
	UnifiedDatasetDir() string
	DBPath() string
	FFmpegPath() string
	FFprobePath() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port       int
	logLevel   string
	headless   bool
	projectDir string
	ffmpeg     string
	ffprobe    string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:       DefaultPort,
		logLevel:   DefaultLogLevel,
		projectDir: defaultProjectDir(),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if pd := os.Getenv(EnvProjectDir); pd != "" {
		abs, err := filepath.Abs(pd)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvProjectDir, err)
		}
		cfg.projectDir = abs
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.ffmpeg = os.Getenv(EnvFFmpeg)
	cfg.ffprobe = os.Getenv(EnvFFprobe)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// Headless reports whether the system tray should be skipped
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// ProjectDir returns the annotation project root directory
func (c *EnvConfig) ProjectDir() string {
	return c.projectDir
}

// VideosDir returns the directory holding user-supplied input videos
func (c *EnvConfig) VideosDir() string {
	return filepath.Join(c.projectDir, "videos")
}

// SegmentsDir returns the root of the per-segment export tree
func (c *EnvConfig) SegmentsDir() string {
	return filepath.Join(c.projectDir, "segments")
}

// SegmentVideosDir returns the directory for exported segment clips
func (c *EnvConfig) SegmentVideosDir() string {
	return filepath.Join(c.projectDir, "segments", "videos")
}

// SegmentFramesDir returns the directory for per-segment frame folders
func (c *EnvConfig) SegmentFramesDir() string {
	return filepath.Join(c.projectDir, "segments", "frames")
}

// UnifiedDatasetDir returns the directory for the merged flat dataset
func (c *EnvConfig) UnifiedDatasetDir() string {
	return filepath.Join(c.projectDir, "unified_dataset")
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.projectDir, DBFilename)
}

// FFmpegPath returns the ffmpeg binary to invoke ("ffmpeg" if unset)
func (c *EnvConfig) FFmpegPath() string {
	if c.ffmpeg != "" {
		return c.ffmpeg
	}
	return "ffmpeg"
}

// FFprobePath returns the ffprobe binary to invoke ("ffprobe" if unset)
func (c *EnvConfig) FFprobePath() string {
	if c.ffprobe != "" {
		return c.ffprobe
	}
	return "ffprobe"
}

// defaultProjectDir returns the default project directory path
func defaultProjectDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
