package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrClosed is returned when a released source handle is used.
var ErrClosed = errors.New("video source is closed")

// Source is an open handle on one video file. It caches the probed stream
// properties; frame reads go back through the toolchain. Callers clamp frame
// indices, the source does not.
type Source struct {
	tc     Toolchain
	path   string
	probe  *ProbeResult
	closed bool
}

// OpenSource probes path and returns a handle on it.
func OpenSource(ctx context.Context, tc Toolchain, path string) (*Source, error) {
	probe, err := tc.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", filepath.Base(path), err)
	}
	return &Source{tc: tc, path: path, probe: probe}, nil
}

func (s *Source) Path() string {
	return s.path
}

// Name returns the base filename of the source.
func (s *Source) Name() string {
	return filepath.Base(s.path)
}

// Stem returns the base filename without its extension.
func (s *Source) Stem() string {
	name := s.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (s *Source) FrameCount() int {
	return s.probe.FrameCount
}

func (s *Source) FrameRate() float64 {
	return s.probe.FrameRate
}

func (s *Source) Width() int {
	return s.probe.Width
}

func (s *Source) Height() int {
	return s.probe.Height
}

// DurationSeconds is frameCount/frameRate, 0 if the frame rate is unknown.
func (s *Source) DurationSeconds() float64 {
	if s.probe.FrameRate <= 0 {
		return 0
	}
	return float64(s.probe.FrameCount) / s.probe.FrameRate
}

// ReadFrame returns the frame at index as JPEG bytes, or ErrEndOfStream.
func (s *Source) ReadFrame(ctx context.Context, index int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.tc.ReadFrame(ctx, s.path, index)
}

// Close releases the handle. Safe to call more than once.
func (s *Source) Close() error {
	s.closed = true
	return nil
}
