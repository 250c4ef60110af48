package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashfakshibli/video-segment-annotator/internal/annotate"
	"github.com/ashfakshibli/video-segment-annotator/internal/dataset"
	"github.com/ashfakshibli/video-segment-annotator/internal/library"
	"github.com/ashfakshibli/video-segment-annotator/internal/media"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/stats", statsHandler(cfg))

		r.Get("/videos", listVideosHandler(cfg))
		r.Post("/videos/reload", reloadVideosHandler(cfg))
		r.Post("/videos/next", nextVideoHandler(cfg))
		r.Post("/videos/previous", previousVideoHandler(cfg))
		r.Post("/videos/select", selectVideoHandler(cfg))

		r.Get("/player", playerStateHandler(cfg))
		r.Post("/player/toggle", togglePlayHandler(cfg))
		r.Post("/player/seek", seekHandler(cfg))
		r.Post("/player/scrub", scrubHandler(cfg))
		r.Get("/player/frame", frameHandler(cfg))

		r.Get("/segments", listSegmentsHandler(cfg))
		r.Post("/segments/mark-start", markStartHandler(cfg))
		r.Post("/segments/mark-end", markEndHandler(cfg))
		r.Post("/segments/clear-last", clearLastHandler(cfg))
		r.Post("/segments/clear-all", clearAllHandler(cfg))

		r.Post("/export", exportHandler(cfg))
		r.Get("/exports", listExportsHandler(cfg))
		r.Get("/exports/{id}", getExportHandler(cfg))

		r.Post("/dataset", createDatasetHandler(cfg))
		r.Get("/dataset/builds", listBuildsHandler(cfg))

		r.Post("/open-folder", openFolderHandler(cfg))
		r.Get("/playback/file", playbackFileHandler(cfg))
	})

	return r
}

// writeDomainError maps annotation-state sentinels to 409 responses so the
// UI can surface them as warnings, not failures.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNoVideos):
		WriteError(w, http.StatusConflict, "no video loaded", "NO_VIDEO")
	case errors.Is(err, library.ErrAtFirstVideo):
		WriteError(w, http.StatusConflict, "already at the first video", "AT_FIRST_VIDEO")
	case errors.Is(err, library.ErrAtLastVideo):
		WriteError(w, http.StatusConflict, "already at the last video", "AT_LAST_VIDEO")
	case errors.Is(err, annotate.ErrNoStartMarked):
		WriteError(w, http.StatusConflict, "mark a start time first", "NO_START_MARKED")
	case errors.Is(err, annotate.ErrInvalidRange):
		WriteError(w, http.StatusConflict, "end time must be after start time", "INVALID_RANGE")
	case errors.Is(err, annotate.ErrNothingToClear):
		WriteError(w, http.StatusConflict, "no segments to clear", "NOTHING_TO_CLEAR")
	case errors.Is(err, annotate.ErrNoSegments):
		WriteError(w, http.StatusConflict, "no segments marked", "NO_SEGMENTS")
	case errors.Is(err, dataset.ErrNoFramesDir), errors.Is(err, dataset.ErrNoSegmentDirs):
		WriteError(w, http.StatusConflict, "no extracted segments found, export segments first", "NO_EXTRACTED_SEGMENTS")
	case errors.Is(err, media.ErrEndOfStream):
		WriteError(w, http.StatusNotFound, "no frame at the current position", "END_OF_STREAM")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := StatusResponse{
			Status:       cfg.Session.Status(),
			VideoInfo:    cfg.Session.VideoInfo(),
			VideoLoaded:  cfg.Session.VideoLoaded(),
			VideoCount:   cfg.Library.Count(),
			VideoIndex:   cfg.Library.CurrentIndex(),
			SegmentCount: len(cfg.Session.Segments()),
			Player:       playerState(cfg),
		}

		if start, ok := cfg.Session.PendingMark(); ok {
			resp.PendingStart = &start
		}

		if cfg.Doctor != nil {
			if caps := cfg.Doctor.Get(ctx); caps != nil {
				resp.Toolchain = &ToolsResponse{
					HasFFmpeg:   caps.HasFFmpeg,
					HasFFprobe:  caps.HasFFprobe,
					LastProbeAt: caps.ProbedAt.Format(time.RFC3339),
				}
			}
		}

		if build, err := cfg.Repository.LatestDatasetBuild(ctx); err == nil && build != nil {
			b := BuildToResponse(build)
			resp.LastBuild = &b
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func statsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, StatsResponse{Report: cfg.Session.StatsReport()})
	}
}

func listVideosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, VideosResponse{
			Videos:  cfg.Library.Paths(),
			Current: cfg.Library.CurrentIndex(),
		})
	}
}

func reloadVideosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.ReloadVideos(r.Context()); err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, VideosResponse{
			Videos:  cfg.Library.Paths(),
			Current: cfg.Library.CurrentIndex(),
		})
	}
}

func nextVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.NextVideo(r.Context()); err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, playerState(cfg))
	}
}

func previousVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.PreviousVideo(r.Context()); err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, playerState(cfg))
	}
}

func selectVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Session.SelectVideo(r.Context(), req.Index); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, playerState(cfg))
	}
}

func playerState(cfg ServerConfig) PlayerResponse {
	p := cfg.Session.Player()
	return PlayerResponse{
		Playing:    p.IsPlaying(),
		Frame:      p.CurrentFrame(),
		FrameCount: p.FrameCount(),
		FrameRate:  p.FrameRate(),
		TimeS:      p.CurrentTimeSeconds(),
		DurationS:  p.DurationSeconds(),
		Progress:   p.ProgressPercent(),
		TimeText:   p.TimeText(),
	}
}

func playerStateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, playerState(cfg))
	}
}

func togglePlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Session.VideoLoaded() {
			writeDomainError(w, library.ErrNoVideos)
			return
		}
		playing := cfg.Session.Player().TogglePlay()
		WriteJSON(w, http.StatusOK, ToggleResponse{Playing: playing})
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		cfg.Session.Player().SeekRelative(req.DeltaS)
		WriteJSON(w, http.StatusOK, playerState(cfg))
	}
}

func scrubHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScrubRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Position < 0 || req.Position > 1 {
			WriteError(w, http.StatusBadRequest, "position must be between 0 and 1", "BAD_REQUEST")
			return
		}

		cfg.Session.Player().SeekFraction(req.Position)
		WriteJSON(w, http.StatusOK, playerState(cfg))
	}
}

func frameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := cfg.Session.CurrentFrameJPEG(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func listSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments := cfg.Session.Segments()
		resp := SegmentsResponse{Segments: make([]SegmentResponse, len(segments))}
		for i, s := range segments {
			resp.Segments[i] = SegmentToResponse(s)
		}
		if start, ok := cfg.Session.PendingMark(); ok {
			resp.PendingStart = &start
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func markStartHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Session.VideoLoaded() {
			writeDomainError(w, library.ErrNoVideos)
			return
		}
		start := cfg.Session.MarkStart()
		WriteJSON(w, http.StatusOK, MarkResponse{Start: start})
	}
}

func markEndHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Session.VideoLoaded() {
			writeDomainError(w, library.ErrNoVideos)
			return
		}
		seg, err := cfg.Session.MarkEnd()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, SegmentToResponse(seg))
	}
}

func clearLastHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seg, err := cfg.Session.ClearLastSegment()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SegmentToResponse(seg))
	}
}

func clearAllHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := cfg.Session.ClearAllSegments()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ClearAllResponse{Cleared: count})
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := cfg.Session.ExportSegments(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := ExportResponse{
			Video:         result.Video,
			SegmentNames:  make([]string, len(result.Segments)),
			FramesWritten: result.FramesWritten,
		}
		for i, s := range result.Segments {
			resp.SegmentNames[i] = s.Name
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := cfg.Repository.ListExportRuns(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list export runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "run id required", "BAD_REQUEST")
			return
		}

		run, err := cfg.Repository.GetExportRun(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if run == nil {
			WriteError(w, http.StatusNotFound, "export run not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, RunToResponse(run))
	}
}

func createDatasetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := cfg.Session.CreateDataset(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, DatasetResponse{
			TotalFrames:   summary.TotalFrames,
			TotalSegments: summary.TotalSegments,
			CreatedAt:     summary.CreationTimestamp,
		})
	}
}

func listBuildsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		builds, err := cfg.Repository.ListDatasetBuilds(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list dataset builds", "INTERNAL_ERROR")
			return
		}

		resp := BuildsResponse{Builds: make([]BuildResponse, len(builds))}
		for i, b := range builds {
			resp.Builds[i] = BuildToResponse(b)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func openFolderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Session.OpenProjectFolder(); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func playbackFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := cfg.Session.CurrentVideoPath()
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if err := cfg.PlaybackServer.ServeFile(w, r, path); err != nil {
			cfg.Logger.Error("playback error", "error", err, "path", path)
		}
	}
}
