// Package session owns the single annotation session: the loaded video, its
// playback state, the segment ledger, and the export/unify operations. All
// operations are serialized by one mutex, mirroring a single UI dispatch
// path; only the playback advance loop runs beside it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashfakshibli/video-segment-annotator/internal/annotate"
	"github.com/ashfakshibli/video-segment-annotator/internal/dataset"
	"github.com/ashfakshibli/video-segment-annotator/internal/export"
	"github.com/ashfakshibli/video-segment-annotator/internal/history"
	"github.com/ashfakshibli/video-segment-annotator/internal/library"
	"github.com/ashfakshibli/video-segment-annotator/internal/logging"
	"github.com/ashfakshibli/video-segment-annotator/internal/media"
	"github.com/ashfakshibli/video-segment-annotator/internal/player"
)

// Config carries the collaborators and directory layout for a session.
type Config struct {
	Toolchain  media.Toolchain
	Library    *library.Library
	Repository history.Repository
	ProjectDir string
	ClipsDir   string
	FramesDir  string
	DatasetDir string
	Logger     *slog.Logger
}

// Session is the annotation session for one project directory. Exactly one
// video handle is active at a time; switching videos discards the ledger.
type Session struct {
	mu sync.Mutex

	tc       media.Toolchain
	lib      *library.Library
	repo     history.Repository
	player   *player.Controller
	ledger   *annotate.Ledger
	exporter *export.Exporter
	unifier  *dataset.Unifier
	logger   *slog.Logger

	projectDir string
	datasetDir string
	clipsDir   string
	framesDir  string

	src *media.Source

	// status has its own lock so export and unify progress callbacks can
	// update it while the session lock is held.
	statusMu sync.Mutex
	status   string
}

func New(cfg Config) *Session {
	s := &Session{
		tc:         cfg.Toolchain,
		lib:        cfg.Library,
		repo:       cfg.Repository,
		player:     player.NewController(cfg.Logger),
		ledger:     annotate.NewLedger(),
		logger:     cfg.Logger,
		projectDir: cfg.ProjectDir,
		datasetDir: cfg.DatasetDir,
		clipsDir:   cfg.ClipsDir,
		framesDir:  cfg.FramesDir,
		status:     "Ready - place videos in the 'videos' folder and reload",
	}

	s.exporter = export.NewExporter(cfg.Toolchain, cfg.ProjectDir, cfg.ClipsDir, cfg.FramesDir, cfg.Logger)
	s.exporter.SetStatusFunc(s.SetStatus)

	s.unifier = dataset.NewUnifier(cfg.FramesDir, cfg.DatasetDir, cfg.Logger)
	s.unifier.SetStatusFunc(s.SetStatus)

	return s
}

// Player exposes the playback controller for the UI surface.
func (s *Session) Player() *player.Controller {
	return s.player
}

// ReloadVideos rescans the videos folder and loads the first video.
func (s *Session) ReloadVideos(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lib.Reload(); err != nil {
		s.setStatus("No videos found - add videos to the 'videos' folder")
		return err
	}

	if err := s.loadCurrentLocked(ctx); err != nil {
		return err
	}
	s.setStatus(fmt.Sprintf("Loaded %d videos", s.lib.Count()))
	return nil
}

// NextVideo switches to the following video, discarding the ledger.
func (s *Session) NextVideo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lib.Next(); err != nil {
		return err
	}
	return s.loadCurrentLocked(ctx)
}

// PreviousVideo switches to the preceding video, discarding the ledger.
func (s *Session) PreviousVideo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lib.Previous(); err != nil {
		return err
	}
	return s.loadCurrentLocked(ctx)
}

// SelectVideo switches to the video at the given library index.
func (s *Session) SelectVideo(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lib.Select(index); err != nil {
		return err
	}
	return s.loadCurrentLocked(ctx)
}

// loadCurrentLocked releases the previous handle, opens the selected video
// and resets playback and the ledger.
func (s *Session) loadCurrentLocked(ctx context.Context) error {
	path, err := s.lib.CurrentPath()
	if err != nil {
		return err
	}

	if s.src != nil {
		s.src.Close()
		s.src = nil
	}
	s.player.Unload()

	src, err := media.OpenSource(ctx, s.tc, path)
	if err != nil {
		s.setStatus("Could not open video: " + path)
		return err
	}

	s.src = src
	s.ledger = annotate.NewLedger()
	s.player.Load(src.FrameCount(), src.FrameRate())

	s.setStatus("Loaded: " + src.Name())
	if s.logger != nil {
		s.logger.Info("video loaded",
			"video", src.Name(),
			"frames", src.FrameCount(),
			"fps", src.FrameRate(),
		)
	}
	return nil
}

// VideoLoaded reports whether a video handle is active.
func (s *Session) VideoLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src != nil
}

// VideoInfo renders the loaded video's banner line, or a hint when none is
// loaded.
func (s *Session) VideoInfo() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src == nil {
		return "No videos found. Place video files (.mp4, .avi, .mov) in the 'videos' folder."
	}
	return fmt.Sprintf("Video %d/%d: %s | Duration: %s | FPS: %.1f | Frames: %d",
		s.lib.CurrentIndex()+1,
		s.lib.Count(),
		s.src.Name(),
		player.FormatTime(s.src.DurationSeconds()),
		s.src.FrameRate(),
		s.src.FrameCount(),
	)
}

// CurrentFrameJPEG decodes the frame at the playback position.
func (s *Session) CurrentFrameJPEG(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	src := s.src
	s.mu.Unlock()

	if src == nil {
		return nil, library.ErrNoVideos
	}
	return src.ReadFrame(ctx, s.player.CurrentFrame())
}

// CurrentVideoPath returns the loaded video's path.
func (s *Session) CurrentVideoPath() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src == nil {
		return "", library.ErrNoVideos
	}
	return s.src.Path(), nil
}

// MarkStart records the playback position as the pending segment start.
func (s *Session) MarkStart() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.player.CurrentTimeSeconds()
	s.ledger.MarkStart(t)
	s.setStatus(fmt.Sprintf("Marked start at %s - now mark the end", player.FormatTime(t)))
	return t
}

// MarkEnd closes the pending mark at the playback position.
func (s *Session) MarkEnd() (annotate.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, err := s.ledger.MarkEnd(s.player.CurrentTimeSeconds())
	if err != nil {
		return annotate.Segment{}, err
	}

	s.setStatus(fmt.Sprintf("Added segment: %s - %s (Duration: %s)",
		player.FormatTime(seg.Start), player.FormatTime(seg.End), player.FormatTime(seg.Duration())))
	return seg, nil
}

// ClearLastSegment removes the most recently marked segment.
func (s *Session) ClearLastSegment() (annotate.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, err := s.ledger.ClearLast()
	if err != nil {
		return annotate.Segment{}, err
	}
	s.setStatus(fmt.Sprintf("Removed segment: %s - %s",
		player.FormatTime(seg.Start), player.FormatTime(seg.End)))
	return seg, nil
}

// ClearAllSegments empties the ledger and the pending mark.
func (s *Session) ClearAllSegments() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.ledger.ClearAll()
	if err != nil {
		return 0, err
	}
	s.setStatus(fmt.Sprintf("Cleared all %d segments", count))
	return count, nil
}

// Segments returns the ledger in append order.
func (s *Session) Segments() []annotate.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Segments()
}

// PendingMark returns the pending start mark, if any.
func (s *Session) PendingMark() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Pending()
}

// ExportSegments exports every marked segment of the loaded video. The run
// is recorded in history; the ledger is kept so segments can be re-exported.
func (s *Session) ExportSegments(ctx context.Context) (*export.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src == nil {
		return nil, library.ErrNoVideos
	}
	segments := s.ledger.Segments()
	if len(segments) == 0 {
		return nil, annotate.ErrNoSegments
	}

	run := &history.ExportRun{
		ID:            history.NewID(),
		Video:         s.src.Name(),
		Status:        history.RunStatusRunning,
		SegmentsTotal: len(segments),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	logger := s.logger
	if logger != nil {
		logger = logging.WithVideo(logging.WithRunID(logger, run.ID), run.Video)
		logger.Info("export run started", "segments", len(segments))
	}

	if s.repo != nil {
		if err := s.repo.CreateExportRun(ctx, run); err != nil && logger != nil {
			logger.Warn("failed to record export run", "error", err)
		}
	}

	result, err := s.exporter.Export(ctx, s.src.Path(), segments)
	if err != nil {
		s.finishRun(ctx, run, result, err)
		s.setStatus("Export failed")
		if logger != nil {
			logger.Error("export run failed", "error", err)
		}
		return result, err
	}

	s.finishRun(ctx, run, result, nil)
	s.setStatus(fmt.Sprintf("Exported %d segments from %s", len(result.Segments), s.src.Stem()))
	if logger != nil {
		logger.Info("export run completed",
			"segments", len(result.Segments),
			"frames", result.FramesWritten,
		)
	}
	return result, nil
}

func (s *Session) finishRun(ctx context.Context, run *history.ExportRun, result *export.Result, runErr error) {
	if s.repo == nil {
		return
	}

	done, frames := 0, 0
	if result != nil {
		done = len(result.Segments)
		frames = result.FramesWritten
	}
	if err := s.repo.UpdateExportRunProgress(ctx, run.ID, done, frames); err != nil && s.logger != nil {
		s.logger.Warn("failed to update export run", "error", err)
	}

	status, msg := history.RunStatusCompleted, ""
	if runErr != nil {
		status, msg = history.RunStatusFailed, runErr.Error()
	}
	if err := s.repo.UpdateExportRunStatus(ctx, run.ID, status, msg); err != nil && s.logger != nil {
		s.logger.Warn("failed to finish export run", "error", err)
	}
}

// CreateDataset builds the unified dataset from every exported segment
// folder and records the build in history.
func (s *Session) CreateDataset(ctx context.Context) (*dataset.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := s.unifier.Build()
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		build := &history.DatasetBuild{
			ID:            history.NewID(),
			TotalFrames:   summary.TotalFrames,
			TotalSegments: summary.TotalSegments,
			SkippedFrames: summary.SkippedFrames,
			CreatedAt:     time.Now(),
		}
		if err := s.repo.CreateDatasetBuild(ctx, build); err != nil && s.logger != nil {
			logging.WithRunID(s.logger, build.ID).Warn("failed to record dataset build", "error", err)
		}
	}

	s.setStatus(fmt.Sprintf("Created unified dataset with %d frames from %d segments",
		summary.TotalFrames, summary.TotalSegments))
	return summary, nil
}

// Status returns the session's status bar text.
func (s *Session) Status() string {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}

// SetStatus updates the status bar text.
func (s *Session) SetStatus(msg string) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = msg
}

func (s *Session) setStatus(msg string) {
	s.SetStatus(msg)
}

// Close releases the active video handle.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.player.Unload()
	if s.src != nil {
		err := s.src.Close()
		s.src = nil
		return err
	}
	return nil
}
