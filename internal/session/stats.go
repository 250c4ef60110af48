package session

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// StatsReport renders a plain-text overview of everything exported so far:
// segment folders, frame counts, clip files, the unified dataset, and the
// input videos currently on disk.
func (s *Session) StatsReport() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("VIDEO SEGMENT ANNOTATOR - DATASET STATISTICS\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	segmentFolders, frameTotal := countExtracted(s.framesDir)
	fmt.Fprintf(&b, "Extracted Segments: %d\n", segmentFolders)
	fmt.Fprintf(&b, "Total Extracted Frames: %d\n", frameTotal)
	fmt.Fprintf(&b, "Segment Videos: %d\n", countGlob(s.clipsDir, "*.mp4"))

	if dirExists(s.datasetDir) {
		fmt.Fprintf(&b, "Unified Dataset Frames: %d\n", countGlob(filepath.Join(s.datasetDir, "images"), "*.jpg"))
		if ts := datasetCreatedAt(filepath.Join(s.datasetDir, "dataset_summary.json")); ts != "" {
			fmt.Fprintf(&b, "Dataset Created: %s\n", ts)
		}
	} else {
		b.WriteString("Unified Dataset: Not created\n")
	}

	fmt.Fprintf(&b, "\nProject Directory: %s\n", s.projectDir)
	fmt.Fprintf(&b, "Videos Directory: %s\n", s.lib.Dir())
	fmt.Fprintf(&b, "Segments Directory: %s\n", filepath.Dir(s.framesDir))
	fmt.Fprintf(&b, "Dataset Directory: %s\n", s.datasetDir)

	paths := s.lib.Paths()
	fmt.Fprintf(&b, "\nInput Videos Available: %d\n", len(paths))
	if len(paths) > 0 {
		b.WriteString("\nInput Video Files:\n")
		for i, p := range paths {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, filepath.Base(p))
		}
	}
	return b.String()
}

func countExtracted(framesDir string) (folders, frames int) {
	entries, err := os.ReadDir(framesDir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		folders++
		frames += countGlob(filepath.Join(framesDir, e.Name()), "frame_*.jpg")
	}
	return folders, frames
}

func countGlob(dir, pattern string) int {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0
	}
	return len(matches)
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func datasetCreatedAt(summaryPath string) string {
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		return ""
	}
	var summary struct {
		CreationTimestamp string `json:"creation_timestamp"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return ""
	}
	return summary.CreationTimestamp
}

// OpenProjectFolder opens the project directory in the platform's file
// browser.
func (s *Session) OpenProjectFolder() error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", s.projectDir)
	case "darwin":
		cmd = exec.Command("open", s.projectDir)
	default:
		cmd = exec.Command("xdg-open", s.projectDir)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open project folder: %w", err)
	}
	return nil
}
