package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
)

/*
memoryAlbumStore is an in-memory AlbumServicer for exercising the sync and
moderation logic without a database. It enforces remote ID uniqueness the
same way the sqlite unique index does.
*/
type memoryAlbumStore struct {
	mu     sync.Mutex
	nextID uint
	albums map[uint]*models.Album

	// Remote IDs listed here make Create report a duplicate even when no
	// record exists, simulating a row inserted between lookup and insert.
	conflictingRemoteIDs map[string]bool
}

func newMemoryAlbumStore() *memoryAlbumStore {
	return &memoryAlbumStore{
		nextID:               1,
		albums:               map[uint]*models.Album{},
		conflictingRemoteIDs: map[string]bool{},
	}
}

func (s *memoryAlbumStore) GetByID(id uint) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	album, ok := s.albums[id]
	if !ok {
		return nil, models.ErrAlbumNotFound
	}

	copied := *album
	return &copied, nil
}

func (s *memoryAlbumStore) GetByRemoteID(remoteID string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, album := range s.albums {
		if album.RemoteID == remoteID {
			copied := *album
			return &copied, nil
		}
	}

	return nil, models.ErrAlbumNotFound
}

func (s *memoryAlbumStore) GetAlbumList(options AlbumListOptions) ([]*models.Album, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []*models.Album{}

	for _, album := range s.albums {
		if options.Viewer == ViewerPublic && album.Status != models.StatusApproved {
			continue
		}

		if options.Viewer == ViewerAdmin && options.Status != "" && options.Status != "all" && string(album.Status) != options.Status {
			continue
		}

		copied := *album
		result = append(result, &copied)
	}

	return result, len(result), nil
}

func (s *memoryAlbumStore) GetStatusCounts() (models.AlbumStatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := models.AlbumStatusCounts{}

	for _, album := range s.albums {
		switch album.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusApproved:
			counts.Approved++
		case models.StatusRejected:
			counts.Rejected++
		case models.StatusHidden:
			counts.Hidden++
		}
	}

	return counts, nil
}

func (s *memoryAlbumStore) GetImportedRemoteIDs() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := map[string]bool{}

	for _, album := range s.albums {
		result[album.RemoteID] = true
	}

	return result, nil
}

func (s *memoryAlbumStore) Create(album *models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflictingRemoteIDs[album.RemoteID] {
		return models.ErrDuplicateAlbum
	}

	for _, existing := range s.albums {
		if existing.RemoteID == album.RemoteID {
			return models.ErrDuplicateAlbum
		}
	}

	album.ID = s.nextID
	s.nextID++

	copied := *album
	s.albums[album.ID] = &copied
	return nil
}

func (s *memoryAlbumStore) UpdateRemoteFields(album *models.Album, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[album.ID]
	if !ok {
		return models.ErrAlbumNotFound
	}

	existing.Title = album.Title
	existing.Description = album.Description
	existing.CoverURL = album.CoverURL
	existing.PhotoCount = album.PhotoCount
	existing.RemoteURL = album.RemoteURL
	existing.LastSyncedAt = &syncedAt
	return nil
}

func (s *memoryAlbumStore) TouchLastSynced(id uint, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[id]
	if !ok {
		return models.ErrAlbumNotFound
	}

	existing.LastSyncedAt = &syncedAt
	return nil
}

func (s *memoryAlbumStore) UpdateModeration(album *models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[album.ID]
	if !ok {
		return models.ErrAlbumNotFound
	}

	existing.Status = album.Status
	existing.RejectionReason = album.RejectionReason
	existing.ApprovedBy = album.ApprovedBy
	existing.ApprovedAt = album.ApprovedAt
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryAlbumStore) UpdateOverrides(id uint, overrides AlbumOverrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[id]
	if !ok {
		return models.ErrAlbumNotFound
	}

	if overrides.CustomTitle != nil {
		existing.CustomTitle = *overrides.CustomTitle
	}

	if overrides.CustomDescription != nil {
		existing.CustomDescription = *overrides.CustomDescription
	}

	if overrides.CustomCoverURL != nil {
		existing.CustomCoverURL = *overrides.CustomCoverURL
	}

	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryAlbumStore) UpdateDisplayOrder(id uint, displayOrder int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[id]
	if !ok {
		return models.ErrAlbumNotFound
	}

	existing.DisplayOrder = displayOrder
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

/*
memorySyncLogStore is an in-memory SyncLogServicer.
*/
type memorySyncLogStore struct {
	mu      sync.Mutex
	nextID  uint
	entries []*models.SyncLog
}

func newMemorySyncLogStore() *memorySyncLogStore {
	return &memorySyncLogStore{nextID: 1}
}

func (s *memorySyncLogStore) Start(triggeredBy string) (*models.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &models.SyncLog{
		ID:          s.nextID,
		StartedAt:   time.Now().UTC(),
		Status:      models.SyncStatusRunning,
		TriggeredBy: triggeredBy,
	}

	s.nextID++
	s.entries = append(s.entries, entry)

	copied := *entry
	return &copied, nil
}

func (s *memorySyncLogStore) finalize(id uint, status models.SyncStatus, counts models.SyncCounts, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.ID != id {
			continue
		}

		if entry.Status != models.SyncStatusRunning {
			return fmt.Errorf("sync log entry %d already finalized", id)
		}

		now := time.Now().UTC()
		entry.CompletedAt = &now
		entry.Status = status
		entry.AlbumsFound = counts.Found
		entry.AlbumsAdded = counts.Added
		entry.AlbumsUpdated = counts.Updated
		entry.AlbumsUnchanged = counts.Unchanged
		entry.ErrorMessage = errorMessage
		return nil
	}

	return models.ErrSyncLogNotFound
}

func (s *memorySyncLogStore) Complete(id uint, counts models.SyncCounts) error {
	return s.finalize(id, models.SyncStatusSuccess, counts, "")
}

func (s *memorySyncLogStore) Fail(id uint, counts models.SyncCounts, errorMessage string) error {
	return s.finalize(id, models.SyncStatusFailed, counts, errorMessage)
}

func (s *memorySyncLogStore) Latest() (*models.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil, nil
	}

	copied := *s.entries[len(s.entries)-1]
	return &copied, nil
}

func (s *memorySyncLogStore) List(limit int) ([]*models.SyncLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []*models.SyncLog{}

	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *s.entries[i]
		result = append(result, &copied)
	}

	return result, nil
}

func (s *memorySyncLogStore) FailStaleRuns(olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	swept := 0

	for _, entry := range s.entries {
		if entry.Status == models.SyncStatusRunning && entry.StartedAt.Before(cutoff) {
			now := time.Now().UTC()
			entry.CompletedAt = &now
			entry.Status = models.SyncStatusFailed
			entry.ErrorMessage = "sync did not finish; marked failed by stale-run sweep"
			swept++
		}
	}

	return swept, nil
}

/*
fakeProvider serves a scripted remote inventory. Setting failWith makes
every call fail, and blockUntil lets tests hold a run open to exercise the
concurrency guard.
*/
type fakeProvider struct {
	mu         sync.Mutex
	albums     map[string][]photoprovider.RemoteAlbum
	photos     map[string][]photoprovider.RemotePhoto
	failWith   error
	blockUntil chan struct{}
	listCalls  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		albums: map[string][]photoprovider.RemoteAlbum{},
		photos: map[string][]photoprovider.RemotePhoto{},
	}
}

func (p *fakeProvider) setAlbums(ownerID string, albums ...photoprovider.RemoteAlbum) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.albums[ownerID] = albums
}

func (p *fakeProvider) ListOwnerAlbums(ctx context.Context, ownerID string) ([]photoprovider.RemoteAlbum, error) {
	if p.blockUntil != nil {
		<-p.blockUntil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.listCalls++

	if p.failWith != nil {
		return nil, p.failWith
	}

	return p.albums[ownerID], nil
}

func (p *fakeProvider) GetAlbum(ctx context.Context, ownerID, remoteAlbumID string) (*photoprovider.RemoteAlbum, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return nil, p.failWith
	}

	for _, album := range p.albums[ownerID] {
		if album.ID == remoteAlbumID {
			copied := album
			return &copied, nil
		}
	}

	return nil, photoprovider.ErrNotFound
}

func (p *fakeProvider) ListAlbumPhotos(ctx context.Context, remoteAlbumID string, pageSize int) ([]photoprovider.RemotePhoto, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return nil, p.failWith
	}

	return p.photos[remoteAlbumID], nil
}
