package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashfakshibli/video-segment-annotator/internal/api"
	"github.com/ashfakshibli/video-segment-annotator/internal/config"
	"github.com/ashfakshibli/video-segment-annotator/internal/db"
	"github.com/ashfakshibli/video-segment-annotator/internal/history"
	"github.com/ashfakshibli/video-segment-annotator/internal/library"
	"github.com/ashfakshibli/video-segment-annotator/internal/logging"
	"github.com/ashfakshibli/video-segment-annotator/internal/media"
	"github.com/ashfakshibli/video-segment-annotator/internal/playback"
	"github.com/ashfakshibli/video-segment-annotator/internal/session"
	"github.com/ashfakshibli/video-segment-annotator/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{
		cfg.ProjectDir(),
		cfg.VideosDir(),
		cfg.SegmentVideosDir(),
		cfg.SegmentFramesDir(),
		cfg.UnifiedDatasetDir(),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting video segment annotator",
		"version", config.Version,
		"project_dir", cfg.ProjectDir(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := history.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║               VIDEO SEGMENT ANNOTATOR v%-7s            ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	toolchain := media.NewFFmpeg(cfg.FFmpegPath(), cfg.FFprobePath(), logger)

	doctor := media.NewDoctor(cfg.FFmpegPath(), cfg.FFprobePath(), logger)
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	caps := doctor.Refresh(initCtx)
	initCancel()
	if caps.Ready() {
		logger.Info("video toolchain detected",
			"ffmpeg", caps.FFmpegVersion,
			"ffprobe", caps.FFprobeVersion,
		)
	} else {
		logger.Warn("ffmpeg or ffprobe not found, export disabled",
			"has_ffmpeg", caps.HasFFmpeg,
			"has_ffprobe", caps.HasFFprobe,
		)
	}

	lib := library.New(cfg.VideosDir(), logging.WithComponent(logger, "library"))

	sess := session.New(session.Config{
		Toolchain:  toolchain,
		Library:    lib,
		Repository: repo,
		ProjectDir: cfg.ProjectDir(),
		ClipsDir:   cfg.SegmentVideosDir(),
		FramesDir:  cfg.SegmentFramesDir(),
		DatasetDir: cfg.UnifiedDatasetDir(),
		Logger:     logging.WithComponent(logger, "session"),
	})
	defer sess.Close()

	if err := sess.ReloadVideos(context.Background()); err != nil {
		logger.Warn("no videos loaded at startup", "error", err)
	}

	playbackSrv := playback.NewServer(logging.WithComponent(logger, "playback"), cfg.VideosDir(), cfg.SegmentVideosDir())

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Session:        sess,
		Library:        lib,
		Repository:     repo,
		Doctor:         doctor,
		PlaybackServer: playbackSrv,
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
		DeviceID:       deviceID,
		Version:        config.Version,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Session: sess,
			Logger:  logging.WithComponent(logger, "tray"),
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureDeviceID(repo history.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo history.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
