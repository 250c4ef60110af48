// Package library tracks the input videos folder and which video is
// currently selected for annotation.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNoVideos     = errors.New("no videos found")
	ErrAtFirstVideo = errors.New("already at the first video")
	ErrAtLastVideo  = errors.New("already at the last video")
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
}

// IsVideoFile reports whether filename has a supported video extension.
// Matching is case-insensitive (".MOV" counts).
func IsVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return videoExtensions[ext]
}

// Library lists the videos/ folder and keeps the current selection.
type Library struct {
	dir     string
	files   []string
	current int
	logger  *slog.Logger
}

func New(dir string, logger *slog.Logger) *Library {
	return &Library{dir: dir, logger: logger}
}

// Dir returns the scanned videos directory.
func (l *Library) Dir() string {
	return l.dir
}

// Reload rescans the videos folder, sorts the result lexicographically and
// resets the selection to the first video. Hidden (dot-prefixed) files are
// skipped.
func (l *Library) Reload() error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("create videos directory: %w", err)
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read videos directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if IsVideoFile(e.Name()) {
			files = append(files, filepath.Join(l.dir, e.Name()))
		}
	}
	sort.Strings(files)

	l.files = files
	l.current = 0

	if l.logger != nil {
		l.logger.Info("reloaded video library", "dir", l.dir, "count", len(files))
	}

	if len(files) == 0 {
		return ErrNoVideos
	}
	return nil
}

func (l *Library) Count() int {
	return len(l.files)
}

// CurrentIndex returns the zero-based index of the selected video.
func (l *Library) CurrentIndex() int {
	return l.current
}

// CurrentPath returns the path of the selected video.
func (l *Library) CurrentPath() (string, error) {
	if len(l.files) == 0 {
		return "", ErrNoVideos
	}
	return l.files[l.current], nil
}

// Paths returns all video paths in listing order.
func (l *Library) Paths() []string {
	out := make([]string, len(l.files))
	copy(out, l.files)
	return out
}

// Next advances the selection to the following video.
func (l *Library) Next() (string, error) {
	if len(l.files) == 0 {
		return "", ErrNoVideos
	}
	if l.current >= len(l.files)-1 {
		return "", ErrAtLastVideo
	}
	l.current++
	return l.files[l.current], nil
}

// Previous moves the selection to the preceding video.
func (l *Library) Previous() (string, error) {
	if len(l.files) == 0 {
		return "", ErrNoVideos
	}
	if l.current <= 0 {
		return "", ErrAtFirstVideo
	}
	l.current--
	return l.files[l.current], nil
}

// Select sets the selection to the given index.
func (l *Library) Select(index int) (string, error) {
	if len(l.files) == 0 {
		return "", ErrNoVideos
	}
	if index < 0 || index >= len(l.files) {
		return "", fmt.Errorf("video index %d out of range [0,%d)", index, len(l.files))
	}
	l.current = index
	return l.files[l.current], nil
}
