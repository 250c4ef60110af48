package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "clip.mp4", want: true},
		{name: "clip.avi", want: true},
		{name: "clip.mov", want: true},
		{name: "clip.MOV", want: true},
		{name: "clip.MP4", want: true},
		{name: "clip.mkv", want: false},
		{name: "clip.txt", want: false},
		{name: "noext", want: false},
	}

	for _, tc := range tests {
		if got := IsVideoFile(tc.name); got != tc.want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReload_SortsAndSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp4"))
	touch(t, filepath.Join(dir, "a.mov"))
	touch(t, filepath.Join(dir, ".hidden.mp4"))
	touch(t, filepath.Join(dir, "notes.txt"))

	lib := New(dir, nil)
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if lib.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", lib.Count())
	}

	current, err := lib.CurrentPath()
	if err != nil {
		t.Fatalf("CurrentPath() error = %v", err)
	}
	if filepath.Base(current) != "a.mov" {
		t.Errorf("first video = %s, want a.mov", filepath.Base(current))
	}
}

func TestReload_EmptyFolder(t *testing.T) {
	lib := New(t.TempDir(), nil)

	err := lib.Reload()
	if !errors.Is(err, ErrNoVideos) {
		t.Fatalf("Reload() error = %v, want ErrNoVideos", err)
	}

	if _, err := lib.CurrentPath(); !errors.Is(err, ErrNoVideos) {
		t.Fatalf("CurrentPath() error = %v, want ErrNoVideos", err)
	}
}

func TestReload_CreatesMissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos")

	lib := New(dir, nil)
	if err := lib.Reload(); !errors.Is(err, ErrNoVideos) {
		t.Fatalf("Reload() error = %v, want ErrNoVideos", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("videos dir not created: %v", err)
	}
}

func TestNextPrevious_Bounds(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp4"))
	touch(t, filepath.Join(dir, "b.mp4"))

	lib := New(dir, nil)
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if _, err := lib.Previous(); !errors.Is(err, ErrAtFirstVideo) {
		t.Fatalf("Previous() at start error = %v, want ErrAtFirstVideo", err)
	}

	next, err := lib.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if filepath.Base(next) != "b.mp4" {
		t.Errorf("Next() = %s, want b.mp4", filepath.Base(next))
	}

	if _, err := lib.Next(); !errors.Is(err, ErrAtLastVideo) {
		t.Fatalf("Next() at end error = %v, want ErrAtLastVideo", err)
	}

	prev, err := lib.Previous()
	if err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if filepath.Base(prev) != "a.mp4" {
		t.Errorf("Previous() = %s, want a.mp4", filepath.Base(prev))
	}
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp4"))
	touch(t, filepath.Join(dir, "b.mp4"))

	lib := New(dir, nil)
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if _, err := lib.Select(5); err == nil {
		t.Fatal("Select(5) succeeded, want range error")
	}

	path, err := lib.Select(1)
	if err != nil {
		t.Fatalf("Select(1) error = %v", err)
	}
	if filepath.Base(path) != "b.mp4" {
		t.Errorf("Select(1) = %s, want b.mp4", filepath.Base(path))
	}
	if lib.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", lib.CurrentIndex())
	}
}
