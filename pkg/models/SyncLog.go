package models

import (
	"fmt"
	"time"
)

var (
	ErrSyncLogNotFound    = fmt.Errorf("sync log entry not found")
	ErrSyncAlreadyRunning = fmt.Errorf("a sync is already running")
)

type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
)

/*
SyncLog is the audit record of one reconciliation run. A row is inserted in
the running state when the run starts and finalized exactly once when it
ends. Finalization is the only mutation a row ever sees.
*/
type SyncLog struct {
	ID          uint
	StartedAt   time.Time  `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	Status      SyncStatus
	TriggeredBy string `db:"triggered_by"`

	AlbumsFound     int `db:"albums_found"`
	AlbumsAdded     int `db:"albums_added"`
	AlbumsUpdated   int `db:"albums_updated"`
	AlbumsUnchanged int `db:"albums_unchanged"`

	ErrorMessage string `db:"error_message"`
}

// Duration is derived from the start and completion timestamps. It returns
// zero while the run is still in flight.
func (l *SyncLog) Duration() time.Duration {
	if l.CompletedAt == nil {
		return 0
	}

	return l.CompletedAt.Sub(l.StartedAt)
}

// SyncCounts accumulates per-run reconciliation counters.
type SyncCounts struct {
	Found     int
	Added     int
	Updated   int
	Unchanged int
}
