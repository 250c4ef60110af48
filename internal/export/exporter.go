// Package export turns ledger segments into standalone clips, per-frame JPEG
// folders and metadata records under segments/.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/ashfakshibli/video-segment-annotator/internal/annotate"
	"github.com/ashfakshibli/video-segment-annotator/internal/media"
)

const maxStemLen = 160

// Exporter writes segment clips to videosDir and frame folders to framesDir.
// Paths recorded in metadata are relative to projectDir.
type Exporter struct {
	tc         media.Toolchain
	projectDir string
	videosDir  string
	framesDir  string
	logger     *slog.Logger

	// statusFn receives progress text between segments. May be nil.
	statusFn func(string)
}

func NewExporter(tc media.Toolchain, projectDir, videosDir, framesDir string, logger *slog.Logger) *Exporter {
	return &Exporter{
		tc:         tc,
		projectDir: projectDir,
		videosDir:  videosDir,
		framesDir:  framesDir,
		logger:     logger,
	}
}

// SetStatusFunc registers the progress callback.
func (e *Exporter) SetStatusFunc(fn func(string)) {
	e.statusFn = fn
}

// Export processes every ledger segment in order, 1-indexed by list position.
// The first failure aborts the remaining segments; folders already written
// stay on disk. Runs synchronously so the ledger cannot change mid-run.
func (e *Exporter) Export(ctx context.Context, sourcePath string, segments []annotate.Segment) (*Result, error) {
	if len(segments) == 0 {
		return nil, annotate.ErrNoSegments
	}

	probe, err := e.tc.Probe(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("probe source video: %w", err)
	}

	videoName := filepath.Base(sourcePath)
	stem := SanitizeName(stemOf(videoName), maxStemLen)

	result := &Result{Video: videoName}

	for i, seg := range segments {
		segmentName := fmt.Sprintf("%s_segment_%d", stem, i+1)
		e.status(fmt.Sprintf("Exporting segment %d/%d...", i+1, len(segments)))

		segResult, err := e.exportSegment(ctx, sourcePath, probe, seg, segmentName)
		if err != nil {
			return result, fmt.Errorf("export %s: %w", segmentName, err)
		}

		result.Segments = append(result.Segments, *segResult)
		result.FramesWritten += segResult.FramesWritten

		if e.logger != nil {
			e.logger.Info("segment exported",
				"segment", segmentName,
				"frames", segResult.FramesWritten,
				"start", seg.Start,
				"end", seg.End,
			)
		}
	}

	return result, nil
}

func (e *Exporter) exportSegment(ctx context.Context, sourcePath string, probe *media.ProbeResult, seg annotate.Segment, segmentName string) (*SegmentResult, error) {
	clipPath := filepath.Join(e.videosDir, segmentName+".mp4")
	framesDir := filepath.Join(e.framesDir, segmentName)

	startFrame := int(math.Floor(seg.Start * probe.FrameRate))
	endFrame := int(math.Floor(seg.End * probe.FrameRate))

	if err := os.MkdirAll(e.videosDir, 0755); err != nil {
		return nil, fmt.Errorf("create clips directory: %w", err)
	}

	if err := e.tc.ExtractClip(ctx, media.ClipRequest{
		SourcePath: sourcePath,
		OutputPath: clipPath,
		StartFrame: startFrame,
		EndFrame:   endFrame,
		FrameRate:  probe.FrameRate,
	}); err != nil {
		return nil, fmt.Errorf("create clip: %w", err)
	}

	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames directory: %w", err)
	}

	frameCount, err := e.tc.ExtractFrames(ctx, clipPath, framesDir)
	if err != nil {
		return nil, fmt.Errorf("extract frames: %w", err)
	}

	// The metadata carries the clip's own frame rate and the count of frames
	// actually written, not the requested range.
	clipFPS := probe.FrameRate
	if clipProbe, err := e.tc.Probe(ctx, clipPath); err == nil && clipProbe.FrameRate > 0 {
		clipFPS = clipProbe.FrameRate
	}

	record := SegmentExportRecord{
		OriginalVideo:    filepath.Base(sourcePath),
		SegmentStartTime: seg.Start,
		SegmentEndTime:   seg.End,
		SegmentDuration:  seg.Duration(),
		FPS:              clipFPS,
		TotalFrames:      frameCount,
		ExtractedFrames:  frameCount,
		SegmentVideoPath: e.relPath(clipPath),
		FramesDirectory:  e.relPath(framesDir),
	}

	if err := writeRecord(filepath.Join(framesDir, "metadata.json"), record); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &SegmentResult{
		Name:          segmentName,
		ClipPath:      clipPath,
		FramesDir:     framesDir,
		FramesWritten: frameCount,
		Start:         seg.Start,
		End:           seg.End,
	}, nil
}

func (e *Exporter) relPath(path string) string {
	rel, err := filepath.Rel(e.projectDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func (e *Exporter) status(msg string) {
	if e.statusFn != nil {
		e.statusFn(msg)
	}
}

func writeRecord(path string, record SegmentExportRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func stemOf(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
