package history

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ExportRun records one "export segments" invocation for a single video.
type ExportRun struct {
	ID            string    `json:"id"`
	Video         string    `json:"video"`
	Status        string    `json:"status"`
	SegmentsTotal int       `json:"segments_total"`
	SegmentsDone  int       `json:"segments_done"`
	FramesWritten int       `json:"frames_written"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DatasetBuild records one unified-dataset build.
type DatasetBuild struct {
	ID            string    `json:"id"`
	TotalFrames   int       `json:"total_frames"`
	TotalSegments int       `json:"total_segments"`
	SkippedFrames int       `json:"skipped_frames"`
	CreatedAt     time.Time `json:"created_at"`
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func NewID() string {
	return uuid.NewString()
}
