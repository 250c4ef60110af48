package export

// SegmentExportRecord is the metadata.json written into each per-segment
// frame folder. Field names are part of the on-disk contract consumed by the
// dataset unifier and downstream tooling.
type SegmentExportRecord struct {
	OriginalVideo    string  `json:"original_video"`
	SegmentStartTime float64 `json:"segment_start_time"`
	SegmentEndTime   float64 `json:"segment_end_time"`
	SegmentDuration  float64 `json:"segment_duration"`
	FPS              float64 `json:"fps"`
	TotalFrames      int     `json:"total_frames"`
	ExtractedFrames  int     `json:"extracted_frames"`
	SegmentVideoPath string  `json:"segment_video_path"`
	FramesDirectory  string  `json:"frames_directory"`
}

// SegmentResult describes one exported segment.
type SegmentResult struct {
	Name          string  `json:"name"`
	ClipPath      string  `json:"clip_path"`
	FramesDir     string  `json:"frames_dir"`
	FramesWritten int     `json:"frames_written"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
}

// Result aggregates a full export run over one video's ledger.
type Result struct {
	Video         string          `json:"video"`
	Segments      []SegmentResult `json:"segments"`
	FramesWritten int             `json:"frames_written"`
}
