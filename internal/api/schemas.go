package api

import (
	"time"

	"github.com/ashfakshibli/video-segment-annotator/internal/annotate"
	"github.com/ashfakshibli/video-segment-annotator/internal/history"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	Status       string         `json:"status"`
	VideoInfo    string         `json:"video_info"`
	VideoLoaded  bool           `json:"video_loaded"`
	VideoCount   int            `json:"video_count"`
	VideoIndex   int            `json:"video_index"`
	SegmentCount int            `json:"segment_count"`
	PendingStart *float64       `json:"pending_start,omitempty"`
	Player       PlayerResponse `json:"player"`
	Toolchain    *ToolsResponse `json:"toolchain,omitempty"`
	LastBuild    *BuildResponse `json:"last_dataset_build,omitempty"`
}

type ToolsResponse struct {
	HasFFmpeg   bool   `json:"has_ffmpeg"`
	HasFFprobe  bool   `json:"has_ffprobe"`
	LastProbeAt string `json:"last_probe_at,omitempty"`
}

type PlayerResponse struct {
	Playing    bool    `json:"playing"`
	Frame      int     `json:"frame"`
	FrameCount int     `json:"frame_count"`
	FrameRate  float64 `json:"frame_rate"`
	TimeS      float64 `json:"time_s"`
	DurationS  float64 `json:"duration_s"`
	Progress   float64 `json:"progress"`
	TimeText   string  `json:"time_text"`
}

type VideosResponse struct {
	Videos  []string `json:"videos"`
	Current int      `json:"current"`
}

type SelectVideoRequest struct {
	Index int `json:"index"`
}

type SeekRequest struct {
	DeltaS float64 `json:"delta_s"`
}

type ScrubRequest struct {
	Position float64 `json:"position"`
}

type ToggleResponse struct {
	Playing bool `json:"playing"`
}

type SegmentResponse struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	DurationS float64 `json:"duration_s"`
}

type SegmentsResponse struct {
	Segments     []SegmentResponse `json:"segments"`
	PendingStart *float64          `json:"pending_start,omitempty"`
}

type MarkResponse struct {
	Start float64 `json:"start"`
}

type ClearAllResponse struct {
	Cleared int `json:"cleared"`
}

type ExportResponse struct {
	Video         string   `json:"video"`
	SegmentNames  []string `json:"segment_names"`
	FramesWritten int      `json:"frames_written"`
}

type DatasetResponse struct {
	TotalFrames   int    `json:"total_frames"`
	TotalSegments int    `json:"total_segments"`
	CreatedAt     string `json:"creation_timestamp"`
}

type RunResponse struct {
	ID            string `json:"id"`
	Video         string `json:"video"`
	Status        string `json:"status"`
	SegmentsTotal int    `json:"segments_total"`
	SegmentsDone  int    `json:"segments_done"`
	FramesWritten int    `json:"frames_written"`
	Error         string `json:"error,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type BuildResponse struct {
	ID            string `json:"id"`
	TotalFrames   int    `json:"total_frames"`
	TotalSegments int    `json:"total_segments"`
	CreatedAt     string `json:"created_at"`
}

type BuildsResponse struct {
	Builds []BuildResponse `json:"builds"`
}

type StatsResponse struct {
	Report string `json:"report"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SegmentToResponse(s annotate.Segment) SegmentResponse {
	return SegmentResponse{Start: s.Start, End: s.End, DurationS: s.Duration()}
}

func RunToResponse(r *history.ExportRun) RunResponse {
	return RunResponse{
		ID:            r.ID,
		Video:         r.Video,
		Status:        r.Status,
		SegmentsTotal: r.SegmentsTotal,
		SegmentsDone:  r.SegmentsDone,
		FramesWritten: r.FramesWritten,
		Error:         r.Error,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}

func BuildToResponse(b *history.DatasetBuild) BuildResponse {
	return BuildResponse{
		ID:            b.ID,
		TotalFrames:   b.TotalFrames,
		TotalSegments: b.TotalSegments,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}
