package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type SyncLogServicer interface {
	Start(triggeredBy string) (*models.SyncLog, error)
	Complete(id uint, counts models.SyncCounts) error
	Fail(id uint, counts models.SyncCounts, errorMessage string) error
	Latest() (*models.SyncLog, error)
	List(limit int) ([]*models.SyncLog, error)
	FailStaleRuns(olderThan time.Duration) (int, error)
}

type SyncLogServiceConfig struct {
	DB *sqlz.DB
}

type SyncLogService struct {
	db *sqlz.DB
}

func NewSyncLogService(config SyncLogServiceConfig) SyncLogService {
	return SyncLogService{
		db: config.DB,
	}
}

const syncLogColumns = `
   l.id
   , l.started_at
   , l.completed_at
   , l.status
   , l.triggered_by
   , l.albums_found
   , l.albums_added
   , l.albums_updated
   , l.albums_unchanged
   , COALESCE(l.error_message, '') AS error_message
`

// Start inserts a new running log entry with zeroed counts.
func (s SyncLogService) Start(triggeredBy string) (*models.SyncLog, error) {
	var (
		err error
	)

	entry := &models.SyncLog{
		StartedAt:   time.Now().UTC(),
		Status:      models.SyncStatusRunning,
		TriggeredBy: triggeredBy,
	}

	sql := `
INSERT INTO sync_logs (
   started_at,
   status,
   triggered_by,
   albums_found,
   albums_added,
   albums_updated,
   albums_unchanged
) VALUES (?, ?, ?, 0, 0, 0, 0)
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, entry.StartedAt, string(entry.Status), entry.TriggeredBy)

	if err != nil {
		return nil, fmt.Errorf("error inserting sync log entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = uint(id)
	}

	return entry, nil
}

func (s SyncLogService) Complete(id uint, counts models.SyncCounts) error {
	return s.finalize(id, models.SyncStatusSuccess, counts, "")
}

func (s SyncLogService) Fail(id uint, counts models.SyncCounts, errorMessage string) error {
	return s.finalize(id, models.SyncStatusFailed, counts, errorMessage)
}

// finalize is the only mutation a sync log row ever sees after insertion,
// and it only applies while the row is still running.
func (s SyncLogService) finalize(id uint, status models.SyncStatus, counts models.SyncCounts, errorMessage string) error {
	var (
		err error
	)

	sql := `
UPDATE sync_logs SET
   completed_at=?,
   status=?,
   albums_found=?,
   albums_added=?,
   albums_updated=?,
   albums_unchanged=?,
   error_message=?
WHERE 1=1
   AND id=?
   AND status=?
`

	params := []any{
		time.Now().UTC(),
		string(status),
		counts.Found,
		counts.Added,
		counts.Updated,
		counts.Unchanged,
		errorMessage,
		id,
		string(models.SyncStatusRunning),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error finalizing sync log entry %d: %w", id, err)
	}

	return nil
}

// Latest returns the most recently started run regardless of its outcome,
// or nil when no sync has ever run.
func (s SyncLogService) Latest() (*models.SyncLog, error) {
	var (
		err error
	)

	result := &models.SyncLog{}

	sql := `
SELECT ` + syncLogColumns + `
FROM sync_logs AS l
WHERE 1=1
ORDER BY l.started_at DESC, l.id DESC
LIMIT 1
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("error querying for latest sync log entry: %w", err)
	}

	return result, nil
}

func (s SyncLogService) List(limit int) ([]*models.SyncLog, error) {
	var (
		err    error
		result []*models.SyncLog
	)

	if limit <= 0 {
		limit = 20
	}

	sql := `
SELECT ` + syncLogColumns + `
FROM sync_logs AS l
WHERE 1=1
ORDER BY l.started_at DESC, l.id DESC
LIMIT ?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, limit); err != nil {
		return nil, fmt.Errorf("error querying for sync log entries: %w", err)
	}

	return result, nil
}

/*
FailStaleRuns sweeps running entries older than the given age into the
failed state. A crash mid-sync leaves its log entry running forever
otherwise; this runs at boot and on every scheduler tick.
*/
func (s SyncLogService) FailStaleRuns(olderThan time.Duration) (int, error) {
	var (
		err error
	)

	cutoff := time.Now().UTC().Add(-olderThan)

	sql := `
UPDATE sync_logs SET
   completed_at=?,
   status=?,
   error_message=?
WHERE 1=1
   AND status=?
   AND started_at < ?
`

	params := []any{
		time.Now().UTC(),
		string(models.SyncStatusFailed),
		"sync did not finish; marked failed by stale-run sweep",
		string(models.SyncStatusRunning),
		cutoff,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, params...)

	if err != nil {
		return 0, fmt.Errorf("error sweeping stale sync log entries: %w", err)
	}

	swept, _ := result.RowsAffected()
	return int(swept), nil
}
