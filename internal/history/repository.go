package history

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateExportRun(ctx context.Context, run *ExportRun) error
	GetExportRun(ctx context.Context, id string) (*ExportRun, error)
	ListExportRuns(ctx context.Context, limit int) ([]*ExportRun, error)
	UpdateExportRunStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateExportRunProgress(ctx context.Context, id string, segmentsDone, framesWritten int) error

	CreateDatasetBuild(ctx context.Context, build *DatasetBuild) error
	ListDatasetBuilds(ctx context.Context, limit int) ([]*DatasetBuild, error)
	LatestDatasetBuild(ctx context.Context) (*DatasetBuild, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateExportRun(ctx context.Context, run *ExportRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_runs (id, video, status, segments_total, segments_done, frames_written, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Video, run.Status, run.SegmentsTotal, run.SegmentsDone, run.FramesWritten, run.Error,
		run.CreatedAt.Format(time.RFC3339), run.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetExportRun(ctx context.Context, id string) (*ExportRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, video, status, segments_total, segments_done, frames_written, error, created_at, updated_at
		FROM export_runs WHERE id = ?
	`, id)
	return scanExportRun(row)
}

func (r *SQLiteRepository) ListExportRuns(ctx context.Context, limit int) ([]*ExportRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, video, status, segments_total, segments_done, frames_written, error, created_at, updated_at
		FROM export_runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ExportRun
	for rows.Next() {
		var run ExportRun
		var createdAt, updatedAt string
		if err := rows.Scan(&run.ID, &run.Video, &run.Status, &run.SegmentsTotal, &run.SegmentsDone,
			&run.FramesWritten, &run.Error, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		run.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func scanExportRun(row *sql.Row) (*ExportRun, error) {
	var run ExportRun
	var createdAt, updatedAt string

	err := row.Scan(&run.ID, &run.Video, &run.Status, &run.SegmentsTotal, &run.SegmentsDone,
		&run.FramesWritten, &run.Error, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	run.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &run, nil
}

func (r *SQLiteRepository) UpdateExportRunStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_runs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, errorMsg, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateExportRunProgress(ctx context.Context, id string, segmentsDone, framesWritten int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE export_runs SET segments_done = ?, frames_written = ?, updated_at = ? WHERE id = ?
	`, segmentsDone, framesWritten, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) CreateDatasetBuild(ctx context.Context, build *DatasetBuild) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dataset_builds (id, total_frames, total_segments, skipped_frames, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, build.ID, build.TotalFrames, build.TotalSegments, build.SkippedFrames, build.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListDatasetBuilds(ctx context.Context, limit int) ([]*DatasetBuild, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, total_frames, total_segments, skipped_frames, created_at
		FROM dataset_builds ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []*DatasetBuild
	for rows.Next() {
		var b DatasetBuild
		var createdAt string
		if err := rows.Scan(&b.ID, &b.TotalFrames, &b.TotalSegments, &b.SkippedFrames, &createdAt); err != nil {
			return nil, err
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		builds = append(builds, &b)
	}
	return builds, rows.Err()
}

func (r *SQLiteRepository) LatestDatasetBuild(ctx context.Context) (*DatasetBuild, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, total_frames, total_segments, skipped_frames, created_at
		FROM dataset_builds ORDER BY created_at DESC LIMIT 1
	`)

	var b DatasetBuild
	var createdAt string
	err := row.Scan(&b.ID, &b.TotalFrames, &b.TotalSegments, &b.SkippedFrames, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &b, nil
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
