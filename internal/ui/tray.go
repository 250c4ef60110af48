package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ashfakshibli/video-segment-annotator/internal/session"
)

type Tray struct {
	session *session.Session
	logger  *slog.Logger

	statusItem   *systray.MenuItem
	videoItem    *systray.MenuItem
	segmentsItem *systray.MenuItem
	playItem     *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Session *session.Session
	Logger  *slog.Logger
	OnQuit  func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		session: cfg.Session,
		logger:  cfg.Logger,
		onQuit:  cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Annotator")
	systray.SetTooltip("Video Segment Annotator")

	t.statusItem = systray.AddMenuItem("Status: Ready", "Current status")
	t.statusItem.Disable()

	t.videoItem = systray.AddMenuItem("Video: none", "Loaded video")
	t.videoItem.Disable()

	t.segmentsItem = systray.AddMenuItem("Segments: 0", "Marked segments")
	t.segmentsItem.Disable()

	systray.AddSeparator()

	t.playItem = systray.AddMenuItem("Play", "Toggle playback")
	reloadItem := systray.AddMenuItem("Reload Videos", "Rescan the videos folder")
	exportItem := systray.AddMenuItem("Export Segments", "Export marked segments")
	datasetItem := systray.AddMenuItem("Create Dataset", "Merge exported segments into the unified dataset")
	folderItem := systray.AddMenuItem("Open Project Folder", "Open the project directory")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Video Segment Annotator")

	go func() {
		for {
			select {
			case <-t.playItem.ClickedCh:
				t.togglePlay()
			case <-reloadItem.ClickedCh:
				t.reloadVideos()
			case <-exportItem.ClickedCh:
				t.exportSegments()
			case <-datasetItem.ClickedCh:
				t.createDataset()
			case <-folderItem.ClickedCh:
				if err := t.session.OpenProjectFolder(); err != nil {
					t.logger.Error("failed to open project folder", "error", err)
				}
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.refresh()
	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) togglePlay() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.VideoLoaded() {
		t.statusItem.SetTitle("Status: No video loaded")
		return
	}

	if t.session.Player().TogglePlay() {
		t.playItem.SetTitle("Pause")
	} else {
		t.playItem.SetTitle("Play")
	}
}

func (t *Tray) reloadVideos() {
	if err := t.session.ReloadVideos(context.Background()); err != nil {
		t.logger.Error("failed to reload videos", "error", err)
	}
	t.refresh()
}

func (t *Tray) exportSegments() {
	result, err := t.session.ExportSegments(context.Background())
	if err != nil {
		t.logger.Error("export failed", "error", err)
	} else {
		t.logger.Info("export finished",
			"segments", len(result.Segments),
			"frames", result.FramesWritten,
		)
	}
	t.refresh()
}

func (t *Tray) createDataset() {
	summary, err := t.session.CreateDataset(context.Background())
	if err != nil {
		t.logger.Error("dataset build failed", "error", err)
	} else {
		t.logger.Info("dataset built",
			"frames", summary.TotalFrames,
			"segments", summary.TotalSegments,
		)
	}
	t.refresh()
}

// refresh repaints the informational items from session state.
func (t *Tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.statusItem.SetTitle("Status: " + t.session.Status())
	t.videoItem.SetTitle("Video: " + t.session.VideoInfo())
	t.segmentsItem.SetTitle(fmt.Sprintf("Segments: %d", len(t.session.Segments())))
}

// UpdateStatus repaints the status line, called from outside the tray loop.
func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) Quit() {
	systray.Quit()
}
