// Package dataset merges every exported segment's frames into one flat
// directory with aggregated metadata.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	ErrNoFramesDir   = errors.New("no extracted frames found")
	ErrNoSegmentDirs = errors.New("no segment frame folders found")
)

const timestampLayout = "2006-01-02 15:04:05"

// SummarySegment is one entry of the dataset summary's segments list.
type SummarySegment struct {
	SegmentName string         `json:"segment_name"`
	FramesCount int            `json:"frames_count"`
	Metadata    map[string]any `json:"metadata"`
}

// Summary is dataset_summary.json, fully regenerated on every build.
// SkippedFrames is build bookkeeping, not part of the file.
type Summary struct {
	TotalFrames       int              `json:"total_frames"`
	TotalSegments     int              `json:"total_segments"`
	CreationTimestamp string           `json:"creation_timestamp"`
	Segments          []SummarySegment `json:"segments"`

	SkippedFrames int `json:"-"`
}

// Unifier flattens segments/frames/* into outputDir/{images,metadata} and
// writes the summary and frame listing.
type Unifier struct {
	framesDir string
	outputDir string
	logger    *slog.Logger

	// statusFn receives progress text between folders. May be nil.
	statusFn func(string)

	now func() time.Time
}

func NewUnifier(framesDir, outputDir string, logger *slog.Logger) *Unifier {
	return &Unifier{
		framesDir: framesDir,
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
}

// SetStatusFunc registers the progress callback.
func (u *Unifier) SetStatusFunc(fn func(string)) {
	u.statusFn = fn
}

// Build walks every segment folder in lexicographic order and produces the
// unified dataset. Precondition failures return before anything is created.
// A frame that cannot be copied even by the fallback primitive is skipped and
// logged, never fatal.
func (u *Unifier) Build() (*Summary, error) {
	segmentDirs, err := u.listSegmentDirs()
	if err != nil {
		return nil, err
	}

	imagesDir := filepath.Join(u.outputDir, "images")
	metadataDir := filepath.Join(u.outputDir, "metadata")
	for _, dir := range []string{u.outputDir, imagesDir, metadataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create dataset directory: %w", err)
		}
	}

	u.status("Creating unified dataset...")

	summary := &Summary{
		TotalSegments:     len(segmentDirs),
		CreationTimestamp: u.now().Format(timestampLayout),
		Segments:          make([]SummarySegment, 0, len(segmentDirs)),
	}

	for i, segmentDir := range segmentDirs {
		segmentName := filepath.Base(segmentDir)
		u.status(fmt.Sprintf("Processing segment %d/%d: %s", i+1, len(segmentDirs), segmentName))

		metadata := u.loadMetadata(segmentDir)
		if metadata != nil {
			dest := filepath.Join(metadataDir, segmentName+"_metadata.json")
			if err := copyPreserving(filepath.Join(segmentDir, "metadata.json"), dest); err != nil && u.logger != nil {
				u.logger.Warn("failed to copy segment metadata", "segment", segmentName, "error", err)
			}
		} else {
			metadata = map[string]any{}
		}

		copied, skipped := u.copyFrames(segmentDir, segmentName, imagesDir)
		summary.TotalFrames += copied
		summary.SkippedFrames += skipped
		summary.Segments = append(summary.Segments, SummarySegment{
			SegmentName: segmentName,
			FramesCount: copied,
			Metadata:    metadata,
		})
	}

	if err := u.writeSummary(summary); err != nil {
		return nil, err
	}
	if err := u.writeFrameList(imagesDir, summary); err != nil {
		return nil, err
	}

	if u.logger != nil {
		u.logger.Info("unified dataset created",
			"total_frames", summary.TotalFrames,
			"total_segments", summary.TotalSegments,
		)
	}
	return summary, nil
}

func (u *Unifier) listSegmentDirs() ([]string, error) {
	info, err := os.Stat(u.framesDir)
	if err != nil || !info.IsDir() {
		return nil, ErrNoFramesDir
	}

	entries, err := os.ReadDir(u.framesDir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(u.framesDir, e.Name()))
		}
	}
	if len(dirs) == 0 {
		return nil, ErrNoSegmentDirs
	}
	sort.Strings(dirs)
	return dirs, nil
}

// loadMetadata returns nil when the segment has no readable metadata.json.
func (u *Unifier) loadMetadata(segmentDir string) map[string]any {
	data, err := os.ReadFile(filepath.Join(segmentDir, "metadata.json"))
	if err != nil {
		return nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		if u.logger != nil {
			u.logger.Warn("malformed segment metadata", "dir", segmentDir, "error", err)
		}
		return nil
	}
	return metadata
}

func (u *Unifier) copyFrames(segmentDir, segmentName, imagesDir string) (copied, skipped int) {
	frames, err := filepath.Glob(filepath.Join(segmentDir, "frame_*.jpg"))
	if err != nil {
		return 0, 0
	}
	sort.Strings(frames)

	for _, frame := range frames {
		dest := filepath.Join(imagesDir, segmentName+"_"+filepath.Base(frame))
		if err := copyWithFallback(frame, dest); err != nil {
			if u.logger != nil {
				u.logger.Warn("skipping frame, copy failed twice",
					"frame", filepath.Base(frame),
					"segment", segmentName,
					"error", err,
				)
			}
			skipped++
			continue
		}
		copied++
	}
	return copied, skipped
}

func (u *Unifier) writeSummary(summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(u.outputDir, "dataset_summary.json"), data, 0644)
}

// writeFrameList lists the files physically present in the images directory,
// read back from disk so skipped copies are reflected.
func (u *Unifier) writeFrameList(imagesDir string, summary *Summary) error {
	frames, err := filepath.Glob(filepath.Join(imagesDir, "*.jpg"))
	if err != nil {
		return err
	}
	sort.Strings(frames)

	var b strings.Builder
	b.WriteString("Unified Video Dataset\n")
	b.WriteString("Generated by Video Segment Annotator\n")
	fmt.Fprintf(&b, "Total Frames: %d\n", len(frames))
	fmt.Fprintf(&b, "Total Segments: %d\n", summary.TotalSegments)
	fmt.Fprintf(&b, "Created: %s\n", summary.CreationTimestamp)
	b.WriteString("\nFrame Files:\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	for _, frame := range frames {
		b.WriteString(filepath.Base(frame) + "\n")
	}

	return os.WriteFile(filepath.Join(u.outputDir, "frame_list.txt"), []byte(b.String()), 0644)
}

func (u *Unifier) status(msg string) {
	if u.statusFn != nil {
		u.statusFn(msg)
	}
}

// copyWithFallback tries the metadata-preserving copy, then once more with
// the plain copy primitive before giving up.
func copyWithFallback(src, dst string) error {
	if err := copyPreserving(src, dst); err == nil {
		return nil
	}
	return copyBasic(src, dst)
}

// copyPreserving copies content and carries over permissions and mtime.
func copyPreserving(src, dst string) error {
	if err := copyBasic(src, dst); err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// copyBasic copies content only.
func copyBasic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
