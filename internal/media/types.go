package media

import (
	"context"
	"errors"
)

var (
	// ErrEndOfStream is returned by frame reads past the last decodable frame.
	ErrEndOfStream = errors.New("end of stream")
)

// Toolchain abstracts the external video decode/encode tooling.
type Toolchain interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
	ReadFrame(ctx context.Context, filePath string, index int) ([]byte, error)
	ExtractClip(ctx context.Context, req ClipRequest) error
	ExtractFrames(ctx context.Context, filePath, outputDir string) (int, error)
}

// ProbeResult holds the stream properties of a video file.
type ProbeResult struct {
	Duration   float64
	Width      int
	Height     int
	Codec      string
	FrameRate  float64
	FrameCount int
}

// ClipRequest describes a frame-range re-encode of a source video.
// Frames [StartFrame, EndFrame) are decoded sequentially and written to
// OutputPath at FrameRate and the source pixel dimensions. A source that
// runs out of frames early truncates the clip, it does not fail.
type ClipRequest struct {
	SourcePath string
	OutputPath string
	StartFrame int
	EndFrame   int
	FrameRate  float64
}
