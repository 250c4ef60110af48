package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashfakshibli/video-segment-annotator/internal/db"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewRepository(database.Conn())
}

func TestExportRunLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	now := time.Now()
	run := &ExportRun{
		ID:            NewID(),
		Video:         "beach.mp4",
		Status:        RunStatusRunning,
		SegmentsTotal: 3,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.CreateExportRun(ctx, run); err != nil {
		t.Fatalf("CreateExportRun() error = %v", err)
	}

	if err := repo.UpdateExportRunProgress(ctx, run.ID, 2, 120); err != nil {
		t.Fatalf("UpdateExportRunProgress() error = %v", err)
	}
	if err := repo.UpdateExportRunStatus(ctx, run.ID, RunStatusCompleted, ""); err != nil {
		t.Fatalf("UpdateExportRunStatus() error = %v", err)
	}

	got, err := repo.GetExportRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetExportRun() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetExportRun() returned nil")
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, RunStatusCompleted)
	}
	if got.SegmentsDone != 2 {
		t.Errorf("SegmentsDone = %d, want 2", got.SegmentsDone)
	}
	if got.FramesWritten != 120 {
		t.Errorf("FramesWritten = %d, want 120", got.FramesWritten)
	}
	if got.Video != "beach.mp4" {
		t.Errorf("Video = %q, want beach.mp4", got.Video)
	}
}

func TestGetExportRun_NotFound(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.GetExportRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetExportRun() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetExportRun() = %+v, want nil", got)
	}
}

func TestDatasetBuilds_LatestWins(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	older := &DatasetBuild{ID: NewID(), TotalFrames: 5, TotalSegments: 2, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &DatasetBuild{ID: NewID(), TotalFrames: 9, TotalSegments: 3, CreatedAt: time.Now()}

	if err := repo.CreateDatasetBuild(ctx, older); err != nil {
		t.Fatalf("CreateDatasetBuild() error = %v", err)
	}
	if err := repo.CreateDatasetBuild(ctx, newer); err != nil {
		t.Fatalf("CreateDatasetBuild() error = %v", err)
	}

	latest, err := repo.LatestDatasetBuild(ctx)
	if err != nil {
		t.Fatalf("LatestDatasetBuild() error = %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("LatestDatasetBuild() = %+v, want id %s", latest, newer.ID)
	}

	builds, err := repo.ListDatasetBuilds(ctx, 10)
	if err != nil {
		t.Fatalf("ListDatasetBuilds() error = %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("ListDatasetBuilds() returned %d builds, want 2", len(builds))
	}
}

func TestConfigRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	val, err := repo.GetConfig(ctx, "auth_token")
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if val != "" {
		t.Errorf("GetConfig() on empty table = %q, want empty", val)
	}

	if err := repo.SetConfig(ctx, "auth_token", "abc123"); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if err := repo.SetConfig(ctx, "auth_token", "def456"); err != nil {
		t.Fatalf("SetConfig() upsert error = %v", err)
	}

	val, err = repo.GetConfig(ctx, "auth_token")
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if val != "def456" {
		t.Errorf("GetConfig() = %q, want def456", val)
	}
}
