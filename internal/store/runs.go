package store

import (
	"database/sql"
	"time"
)

// Run records one completed timelapse build.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
	StartTime  sql.NullString
	EndTime    sql.NullString
	FrameCount int
	OutputPath sql.NullString
}

// RecordRun logs a finished run for auditing.
func (s *Store) RecordRun(startedAt time.Time, startTime, endTime string, frameCount int, outputPath string) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (started_at, finished_at, start_time, end_time, frame_count, output_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`, startedAt.UTC(), time.Now().UTC(), startTime, endTime, frameCount, outputPath)
	return err
}

// LastRun returns the most recent run, or nil when none are recorded.
func (s *Store) LastRun() (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, start_time, end_time, frame_count, output_path
		FROM runs
		ORDER BY id DESC
		LIMIT 1
	`)

	var run Run
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.StartTime, &run.EndTime, &run.FrameCount, &run.OutputPath)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
