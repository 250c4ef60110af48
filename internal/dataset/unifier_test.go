package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSegmentFolder(t *testing.T, framesDir, name string, frames int, withMetadata bool) {
	t.Helper()
	dir := filepath.Join(framesDir, name)
	require.NoError(t, os.MkdirAll(dir, 0755))

	for i := 1; i <= frames; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", i))
		require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0644))
	}

	if withMetadata {
		meta := map[string]any{"original_video": name + ".mp4", "fps": 30.0}
		data, err := json.Marshal(meta)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0644))
	}
}

func testUnifier(t *testing.T) (*Unifier, string, string) {
	t.Helper()
	root := t.TempDir()
	framesDir := filepath.Join(root, "segments", "frames")
	outputDir := filepath.Join(root, "unified_dataset")
	return NewUnifier(framesDir, outputDir, nil), framesDir, outputDir
}

func TestBuild_MissingFramesDir(t *testing.T) {
	u, _, outputDir := testUnifier(t)

	_, err := u.Build()
	assert.ErrorIs(t, err, ErrNoFramesDir)

	_, statErr := os.Stat(outputDir)
	assert.True(t, os.IsNotExist(statErr), "output dir must not be created on precondition failure")
}

func TestBuild_EmptyFramesDir(t *testing.T) {
	u, framesDir, outputDir := testUnifier(t)
	require.NoError(t, os.MkdirAll(framesDir, 0755))

	_, err := u.Build()
	assert.ErrorIs(t, err, ErrNoSegmentDirs)

	_, statErr := os.Stat(outputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_MergesTwoSegments(t *testing.T) {
	u, framesDir, outputDir := testUnifier(t)
	writeSegmentFolder(t, framesDir, "a_segment_1", 3, true)
	writeSegmentFolder(t, framesDir, "b_segment_1", 2, true)

	summary, err := u.Build()
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalFrames)
	assert.Equal(t, 2, summary.TotalSegments)
	require.Len(t, summary.Segments, 2)
	assert.Equal(t, "a_segment_1", summary.Segments[0].SegmentName)
	assert.Equal(t, 3, summary.Segments[0].FramesCount)
	assert.Equal(t, "b_segment_1", summary.Segments[1].SegmentName)

	images, err := os.ReadDir(filepath.Join(outputDir, "images"))
	require.NoError(t, err)
	require.Len(t, images, 5)
	assert.Equal(t, "a_segment_1_frame_0001.jpg", images[0].Name())
	assert.Equal(t, "b_segment_1_frame_0002.jpg", images[4].Name())

	// Metadata copied with the segment-name prefix.
	assert.FileExists(t, filepath.Join(outputDir, "metadata", "a_segment_1_metadata.json"))
	assert.FileExists(t, filepath.Join(outputDir, "metadata", "b_segment_1_metadata.json"))

	// dataset_summary.json on disk matches the returned summary.
	data, err := os.ReadFile(filepath.Join(outputDir, "dataset_summary.json"))
	require.NoError(t, err)
	var onDisk Summary
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, 5, onDisk.TotalFrames)
	assert.Equal(t, 2, onDisk.TotalSegments)
}

func TestBuild_SummaryFieldNames(t *testing.T) {
	u, framesDir, outputDir := testUnifier(t)
	writeSegmentFolder(t, framesDir, "a_segment_1", 1, true)

	_, err := u.Build()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "dataset_summary.json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"total_frames", "total_segments", "creation_timestamp", "segments"} {
		assert.Contains(t, raw, key)
	}

	segs := raw["segments"].([]any)
	seg := segs[0].(map[string]any)
	for _, key := range []string{"segment_name", "frames_count", "metadata"} {
		assert.Contains(t, seg, key)
	}
}

func TestBuild_MissingMetadataTolerated(t *testing.T) {
	u, framesDir, outputDir := testUnifier(t)
	writeSegmentFolder(t, framesDir, "a_segment_1", 2, false)

	summary, err := u.Build()
	require.NoError(t, err)

	require.Len(t, summary.Segments, 1)
	assert.Empty(t, summary.Segments[0].Metadata, "missing metadata.json defaults to an empty record")
	assert.Equal(t, 2, summary.TotalFrames)

	entries, err := os.ReadDir(filepath.Join(outputDir, "metadata"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuild_EmptyFolderCountsAsSegment(t *testing.T) {
	u, framesDir, _ := testUnifier(t)
	writeSegmentFolder(t, framesDir, "a_segment_1", 3, true)
	writeSegmentFolder(t, framesDir, "b_segment_1", 2, true)

	first, err := u.Build()
	require.NoError(t, err)
	require.Equal(t, 5, first.TotalFrames)

	// A third, empty folder raises total_segments but not total_frames.
	writeSegmentFolder(t, framesDir, "c_segment_1", 0, false)

	second, err := u.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, second.TotalSegments)
	assert.Equal(t, 5, second.TotalFrames)
}

func TestBuild_FrameListReflectsDisk(t *testing.T) {
	u, framesDir, outputDir := testUnifier(t)
	writeSegmentFolder(t, framesDir, "a_segment_1", 2, true)

	summary, err := u.Build()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "frame_list.txt"))
	require.NoError(t, err)
	listing := string(data)

	assert.True(t, strings.HasPrefix(listing, "Unified Video Dataset\n"))
	assert.Contains(t, listing, "Generated by Video Segment Annotator\n")
	assert.Contains(t, listing, fmt.Sprintf("Total Frames: %d\n", summary.TotalFrames))
	assert.Contains(t, listing, fmt.Sprintf("Total Segments: %d\n", summary.TotalSegments))
	assert.Contains(t, listing, fmt.Sprintf("Created: %s\n", summary.CreationTimestamp))
	assert.Contains(t, listing, strings.Repeat("=", 50)+"\n")
	assert.Contains(t, listing, "a_segment_1_frame_0001.jpg\n")
	assert.Contains(t, listing, "a_segment_1_frame_0002.jpg\n")
}

func TestBuild_RegeneratedNotIncremental(t *testing.T) {
	u, framesDir, outputDir := testUnifier(t)
	u.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	writeSegmentFolder(t, framesDir, "a_segment_1", 1, true)

	first, err := u.Build()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 12:00:00", first.CreationTimestamp)

	u.now = func() time.Time { return time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC) }
	second, err := u.Build()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02 08:30:00", second.CreationTimestamp)

	data, err := os.ReadFile(filepath.Join(outputDir, "dataset_summary.json"))
	require.NoError(t, err)
	var onDisk Summary
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "2024-05-02 08:30:00", onDisk.CreationTimestamp, "summary must be overwritten, not appended")
}

func TestBuild_StatusUpdates(t *testing.T) {
	u, framesDir, _ := testUnifier(t)
	writeSegmentFolder(t, framesDir, "a_segment_1", 1, false)
	writeSegmentFolder(t, framesDir, "b_segment_1", 1, false)

	var updates []string
	u.SetStatusFunc(func(msg string) { updates = append(updates, msg) })

	_, err := u.Build()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(updates), 3)
	assert.Contains(t, updates[1], "1/2")
	assert.Contains(t, updates[2], "2/2")
}
