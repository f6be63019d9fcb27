package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
)

// RemoteCandidate is one remote album surfaced for the manual add flow,
// flagged when we already have a local record for it.
type RemoteCandidate struct {
	Album      photoprovider.RemoteAlbum
	IsImported bool
}

type SyncServicer interface {
	RunSync(ctx context.Context, triggeredBy string) (*models.SyncLog, error)
	TriggerAsync(triggeredBy string) error
	IsRunning() bool
	ListRemoteCandidates(ctx context.Context, searchText string) ([]RemoteCandidate, error)
	AddAlbum(ctx context.Context, ownerID, remoteAlbumID string) (*models.Album, error)
}

type SyncServiceConfig struct {
	AlbumService   AlbumServicer
	SyncLogService SyncLogServicer
	Provider       photoprovider.Provider
	OwnerIDs       []string
	OnSyncFailed   func(entry *models.SyncLog)
}

/*
SyncService reconciles the local album records against the remote source's
current inventory. At most one run is ever in flight; a second trigger is
rejected with models.ErrSyncAlreadyRunning rather than queued, so the
operator sees the overlap instead of silently stacking runs.
*/
type SyncService struct {
	albumService   AlbumServicer
	syncLogService SyncLogServicer
	provider       photoprovider.Provider
	ownerIDs       []string
	onSyncFailed   func(entry *models.SyncLog)
	running        atomic.Bool
}

func NewSyncService(config SyncServiceConfig) *SyncService {
	return &SyncService{
		albumService:   config.AlbumService,
		syncLogService: config.SyncLogService,
		provider:       config.Provider,
		ownerIDs:       config.OwnerIDs,
		onSyncFailed:   config.OnSyncFailed,
	}
}

func (s *SyncService) IsRunning() bool {
	return s.running.Load()
}

// TriggerAsync starts a run in the background, failing fast when one is
// already in flight. This is what the admin sync button calls.
func (s *SyncService) TriggerAsync(triggeredBy string) error {
	if s.running.Load() {
		return models.ErrSyncAlreadyRunning
	}

	go func() {
		if _, err := s.RunSync(context.Background(), triggeredBy); err != nil && !errors.Is(err, models.ErrSyncAlreadyRunning) {
			slog.Error("background sync run failed", "error", err, "triggeredBy", triggeredBy)
		}
	}()

	return nil
}

/*
RunSync executes one reconciliation run and returns its finalized log entry.
The log entry is finalized on every exit path: success, remote failure, and
store failure all complete the row before RunSync returns.
*/
func (s *SyncService) RunSync(ctx context.Context, triggeredBy string) (*models.SyncLog, error) {
	var (
		err    error
		entry  *models.SyncLog
		counts models.SyncCounts
	)

	if !s.running.CompareAndSwap(false, true) {
		return nil, models.ErrSyncAlreadyRunning
	}

	defer s.running.Store(false)

	if entry, err = s.syncLogService.Start(triggeredBy); err != nil {
		return nil, fmt.Errorf("error starting sync run: %w", err)
	}

	slog.Info("sync run started", "syncLogID", entry.ID, "triggeredBy", triggeredBy)

	runErr := s.reconcile(ctx, &counts)

	entry.AlbumsFound = counts.Found
	entry.AlbumsAdded = counts.Added
	entry.AlbumsUpdated = counts.Updated
	entry.AlbumsUnchanged = counts.Unchanged
	completedAt := time.Now().UTC()
	entry.CompletedAt = &completedAt

	if runErr != nil {
		entry.Status = models.SyncStatusFailed
		entry.ErrorMessage = runErr.Error()

		if err = s.syncLogService.Fail(entry.ID, counts, runErr.Error()); err != nil {
			slog.Error("error finalizing failed sync run", "syncLogID", entry.ID, "error", err)
		}

		slog.Error("sync run failed", "syncLogID", entry.ID, "error", runErr)

		if s.onSyncFailed != nil {
			s.onSyncFailed(entry)
		}

		return entry, runErr
	}

	entry.Status = models.SyncStatusSuccess

	if err = s.syncLogService.Complete(entry.ID, counts); err != nil {
		return entry, fmt.Errorf("error finalizing sync run %d: %w", entry.ID, err)
	}

	slog.Info("sync run finished",
		"syncLogID", entry.ID,
		"found", counts.Found,
		"added", counts.Added,
		"updated", counts.Updated,
		"unchanged", counts.Unchanged,
	)

	return entry, nil
}

func (s *SyncService) reconcile(ctx context.Context, counts *models.SyncCounts) error {
	for _, ownerID := range s.ownerIDs {
		remotes, err := s.provider.ListOwnerAlbums(ctx, ownerID)

		// Any remote failure aborts the whole run. Partial inventories would
		// make the counts lie.
		if err != nil {
			return fmt.Errorf("error listing remote albums for owner %s: %w", ownerID, err)
		}

		counts.Found += len(remotes)

		for _, remote := range remotes {
			if err = s.reconcileOne(remote, counts); err != nil {
				return err
			}
		}
	}

	return nil
}

/*
reconcileOne brings one local record into agreement with the remote album.
Overrides, moderation fields, and display order are never touched here.
*/
func (s *SyncService) reconcileOne(remote photoprovider.RemoteAlbum, counts *models.SyncCounts) error {
	var (
		err   error
		album *models.Album
	)

	now := time.Now().UTC()
	album, err = s.albumService.GetByRemoteID(remote.ID)

	switch {
	case errors.Is(err, models.ErrAlbumNotFound):
		newAlbum := &models.Album{
			RemoteID:        remote.ID,
			OwnerID:         remote.OwnerID,
			Title:           remote.Title,
			Description:     remote.Description,
			CoverURL:        remote.CoverURL,
			PhotoCount:      remote.PhotoCount,
			RemoteURL:       remote.URL,
			RemoteCreatedAt: remote.CreatedAt,
			Status:          models.StatusPending,
			LastSyncedAt:    &now,
		}

		if err = s.albumService.Create(newAlbum); err != nil {
			// The unique index on remote_id is the backstop against two runs
			// both observing "not found" for the same album.
			if errors.Is(err, models.ErrDuplicateAlbum) {
				counts.Unchanged++
				return nil
			}

			return fmt.Errorf("error creating album for remote ID %s: %w", remote.ID, err)
		}

		counts.Added++
		return nil

	case err != nil:
		return fmt.Errorf("error looking up album by remote ID %s: %w", remote.ID, err)
	}

	if album.RemoteFieldsDiffer(remote.Title, remote.Description, remote.CoverURL, remote.URL, remote.PhotoCount) {
		album.Title = remote.Title
		album.Description = remote.Description
		album.CoverURL = remote.CoverURL
		album.PhotoCount = remote.PhotoCount
		album.RemoteURL = remote.URL

		if err = s.albumService.UpdateRemoteFields(album, now); err != nil {
			return err
		}

		counts.Updated++
		return nil
	}

	if err = s.albumService.TouchLastSynced(album.ID, now); err != nil {
		return err
	}

	counts.Unchanged++
	return nil
}

/*
ListRemoteCandidates surfaces the remote inventory for the manual add page,
flagging albums that already have a local record. Read-only: nothing is
imported here.
*/
func (s *SyncService) ListRemoteCandidates(ctx context.Context, searchText string) ([]RemoteCandidate, error) {
	var (
		err      error
		imported map[string]bool
	)

	if imported, err = s.albumService.GetImportedRemoteIDs(); err != nil {
		return nil, err
	}

	result := []RemoteCandidate{}
	search := strings.ToLower(searchText)

	for _, ownerID := range s.ownerIDs {
		remotes, err := s.provider.ListOwnerAlbums(ctx, ownerID)

		if err != nil {
			return nil, fmt.Errorf("error listing remote albums for owner %s: %w", ownerID, err)
		}

		for _, remote := range remotes {
			if search != "" && !strings.Contains(strings.ToLower(remote.Title), search) {
				continue
			}

			result = append(result, RemoteCandidate{
				Album:      remote,
				IsImported: imported[remote.ID],
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Album.CreatedAt.After(result[j].Album.CreatedAt)
	})

	return result, nil
}

// AddAlbum imports a single remote album as a new pending record, the same
// way a sync run would when it discovers one.
func (s *SyncService) AddAlbum(ctx context.Context, ownerID, remoteAlbumID string) (*models.Album, error) {
	var (
		err    error
		remote *photoprovider.RemoteAlbum
	)

	if _, err = s.albumService.GetByRemoteID(remoteAlbumID); err == nil {
		return nil, models.ErrDuplicateAlbum
	} else if !errors.Is(err, models.ErrAlbumNotFound) {
		return nil, err
	}

	if remote, err = s.provider.GetAlbum(ctx, ownerID, remoteAlbumID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	album := &models.Album{
		RemoteID:        remote.ID,
		OwnerID:         remote.OwnerID,
		Title:           remote.Title,
		Description:     remote.Description,
		CoverURL:        remote.CoverURL,
		PhotoCount:      remote.PhotoCount,
		RemoteURL:       remote.URL,
		RemoteCreatedAt: remote.CreatedAt,
		Status:          models.StatusPending,
		LastSyncedAt:    &now,
	}

	if err = s.albumService.Create(album); err != nil {
		return nil, err
	}

	slog.Info("album imported manually", "remoteID", remote.ID, "albumID", album.ID)
	return album, nil
}
