package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/brightsteps/brightstepsngo/pkg/photoprovider"
)

func remoteAlbum(id, title string) photoprovider.RemoteAlbum {
	return photoprovider.RemoteAlbum{
		ID:          id,
		OwnerID:     "owner1",
		Title:       title,
		Description: "description of " + id,
		CoverURL:    "https://photos.example.com/" + id + "/cover.jpg",
		PhotoCount:  10,
		URL:         "https://photos.example.com/albums/" + id,
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newSyncFixture() (*SyncService, *memoryAlbumStore, *memorySyncLogStore, *fakeProvider) {
	albums := newMemoryAlbumStore()
	logs := newMemorySyncLogStore()
	provider := newFakeProvider()

	syncService := NewSyncService(SyncServiceConfig{
		AlbumService:   albums,
		SyncLogService: logs,
		Provider:       provider,
		OwnerIDs:       []string{"owner1"},
	})

	return syncService, albums, logs, provider
}

func TestRunSyncAddsUpdatesAndLeavesUnchanged(t *testing.T) {
	syncService, albums, _, provider := newSyncFixture()

	// r1 already exists locally with a stale title.
	existing := &models.Album{
		RemoteID:        "r1",
		OwnerID:         "owner1",
		Title:           "Old",
		Description:     "description of r1",
		CoverURL:        "https://photos.example.com/r1/cover.jpg",
		PhotoCount:      10,
		RemoteURL:       "https://photos.example.com/albums/r1",
		RemoteCreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:          models.StatusApproved,
	}

	if err := albums.Create(existing); err != nil {
		t.Fatalf("creating existing album: %v", err)
	}

	provider.setAlbums("owner1", remoteAlbum("r1", "New"), remoteAlbum("r2", "Second"), remoteAlbum("r3", "Third"))

	entry, err := syncService.RunSync(context.Background(), "admin42")
	if err != nil {
		t.Fatalf("RunSync returned error: %v", err)
	}

	if entry.Status != models.SyncStatusSuccess {
		t.Errorf("expected success, got %s", entry.Status)
	}

	if entry.AlbumsFound != 3 || entry.AlbumsAdded != 2 || entry.AlbumsUpdated != 1 || entry.AlbumsUnchanged != 0 {
		t.Errorf("unexpected counts: found=%d added=%d updated=%d unchanged=%d",
			entry.AlbumsFound, entry.AlbumsAdded, entry.AlbumsUpdated, entry.AlbumsUnchanged)
	}

	updated, err := albums.GetByRemoteID("r1")
	if err != nil {
		t.Fatalf("getting r1: %v", err)
	}

	if updated.Title != "New" {
		t.Errorf("expected r1 title updated to 'New', got '%s'", updated.Title)
	}

	if updated.Status != models.StatusApproved {
		t.Errorf("sync must not touch status; got %s", updated.Status)
	}

	for _, remoteID := range []string{"r2", "r3"} {
		added, err := albums.GetByRemoteID(remoteID)
		if err != nil {
			t.Fatalf("getting %s: %v", remoteID, err)
		}

		if added.Status != models.StatusPending {
			t.Errorf("expected %s to be pending, got %s", remoteID, added.Status)
		}
	}
}

func TestRunSyncCountsLostInsertRaceAsUnchanged(t *testing.T) {
	syncService, albums, _, provider := newSyncFixture()

	// Another writer claims r1's remote ID between our lookup and insert.
	// The unique index turns that into a duplicate error on Create, which
	// the run absorbs instead of failing.
	albums.conflictingRemoteIDs["r1"] = true
	provider.setAlbums("owner1", remoteAlbum("r1", "One"), remoteAlbum("r2", "Two"))

	entry, err := syncService.RunSync(context.Background(), "scheduler")
	if err != nil {
		t.Fatalf("RunSync returned error: %v", err)
	}

	if entry.Status != models.SyncStatusSuccess {
		t.Errorf("expected success, got %s", entry.Status)
	}

	if entry.AlbumsFound != 2 || entry.AlbumsAdded != 1 || entry.AlbumsUpdated != 0 || entry.AlbumsUnchanged != 1 {
		t.Errorf("unexpected counts: found=%d added=%d updated=%d unchanged=%d",
			entry.AlbumsFound, entry.AlbumsAdded, entry.AlbumsUpdated, entry.AlbumsUnchanged)
	}
}

func TestRunSyncIsIdempotent(t *testing.T) {
	syncService, _, _, provider := newSyncFixture()
	provider.setAlbums("owner1", remoteAlbum("r1", "One"), remoteAlbum("r2", "Two"))

	if _, err := syncService.RunSync(context.Background(), "scheduler"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	entry, err := syncService.RunSync(context.Background(), "scheduler")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if entry.AlbumsAdded != 0 || entry.AlbumsUpdated != 0 || entry.AlbumsUnchanged != 2 {
		t.Errorf("second run should be all unchanged: added=%d updated=%d unchanged=%d",
			entry.AlbumsAdded, entry.AlbumsUpdated, entry.AlbumsUnchanged)
	}
}

func TestRunSyncPreservesOverrides(t *testing.T) {
	syncService, albums, _, provider := newSyncFixture()
	provider.setAlbums("owner1", remoteAlbum("r1", "Remote Title"))

	if _, err := syncService.RunSync(context.Background(), "scheduler"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	album, _ := albums.GetByRemoteID("r1")
	customTitle := "Our Summer Outreach"

	if err := albums.UpdateOverrides(album.ID, AlbumOverrides{CustomTitle: &customTitle}); err != nil {
		t.Fatalf("setting override: %v", err)
	}

	provider.setAlbums("owner1", remoteAlbum("r1", "Renamed Remotely"))

	if _, err := syncService.RunSync(context.Background(), "scheduler"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	album, _ = albums.GetByRemoteID("r1")

	if album.CustomTitle != customTitle {
		t.Errorf("sync overwrote custom title: got '%s'", album.CustomTitle)
	}

	if album.Title != "Renamed Remotely" {
		t.Errorf("sync should still update the remote title: got '%s'", album.Title)
	}

	if album.DisplayTitle() != customTitle {
		t.Errorf("display title should prefer the override: got '%s'", album.DisplayTitle())
	}
}

func TestRunSyncRemoteFailureFinalizesLogAsFailed(t *testing.T) {
	syncService, _, logs, provider := newSyncFixture()
	provider.failWith = fmt.Errorf("connection timed out")

	failureNotified := false
	syncService.onSyncFailed = func(entry *models.SyncLog) {
		failureNotified = true
	}

	entry, err := syncService.RunSync(context.Background(), "admin42")
	if err == nil {
		t.Fatal("expected an error")
	}

	if entry == nil {
		t.Fatal("expected the failed log entry back")
	}

	if entry.Status != models.SyncStatusFailed {
		t.Errorf("expected failed status, got %s", entry.Status)
	}

	if entry.ErrorMessage == "" {
		t.Error("expected an error message on the log entry")
	}

	if !failureNotified {
		t.Error("expected the failure callback to fire")
	}

	latest, _ := logs.Latest()

	if latest.Status != models.SyncStatusFailed || latest.CompletedAt == nil {
		t.Errorf("stored entry not finalized: status=%s completedAt=%v", latest.Status, latest.CompletedAt)
	}
}

func TestRunSyncRejectsConcurrentRun(t *testing.T) {
	syncService, _, _, provider := newSyncFixture()
	provider.setAlbums("owner1", remoteAlbum("r1", "One"))
	provider.blockUntil = make(chan struct{})

	firstDone := make(chan error, 1)

	go func() {
		_, err := syncService.RunSync(context.Background(), "first")
		firstDone <- err
	}()

	// Wait for the first run to take the guard.
	deadline := time.Now().Add(time.Second)

	for !syncService.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("first run never started")
		}

		time.Sleep(time.Millisecond)
	}

	if _, err := syncService.RunSync(context.Background(), "second"); !errors.Is(err, models.ErrSyncAlreadyRunning) {
		t.Errorf("expected ErrSyncAlreadyRunning, got %v", err)
	}

	if err := syncService.TriggerAsync("third"); !errors.Is(err, models.ErrSyncAlreadyRunning) {
		t.Errorf("expected ErrSyncAlreadyRunning from TriggerAsync, got %v", err)
	}

	close(provider.blockUntil)

	if err := <-firstDone; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestAddAlbumManually(t *testing.T) {
	syncService, albums, _, provider := newSyncFixture()
	provider.setAlbums("owner1", remoteAlbum("r9", "Manual"))

	album, err := syncService.AddAlbum(context.Background(), "owner1", "r9")
	if err != nil {
		t.Fatalf("AddAlbum returned error: %v", err)
	}

	if album.Status != models.StatusPending {
		t.Errorf("manual adds start pending, got %s", album.Status)
	}

	if _, err = syncService.AddAlbum(context.Background(), "owner1", "r9"); !errors.Is(err, models.ErrDuplicateAlbum) {
		t.Errorf("expected ErrDuplicateAlbum, got %v", err)
	}

	if _, err = syncService.AddAlbum(context.Background(), "owner1", "missing"); !errors.Is(err, photoprovider.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	stored, err := albums.GetByRemoteID("r9")
	if err != nil {
		t.Fatalf("getting stored album: %v", err)
	}

	if stored.Title != "Manual" {
		t.Errorf("expected title from remote metadata, got '%s'", stored.Title)
	}
}

func TestListRemoteCandidates(t *testing.T) {
	syncService, _, _, provider := newSyncFixture()
	provider.setAlbums("owner1", remoteAlbum("r1", "Beach Cleanup"), remoteAlbum("r2", "School Visit"))

	if _, err := syncService.AddAlbum(context.Background(), "owner1", "r1"); err != nil {
		t.Fatalf("importing r1: %v", err)
	}

	candidates, err := syncService.ListRemoteCandidates(context.Background(), "")
	if err != nil {
		t.Fatalf("ListRemoteCandidates returned error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	byID := map[string]RemoteCandidate{}

	for _, candidate := range candidates {
		byID[candidate.Album.ID] = candidate
	}

	if !byID["r1"].IsImported {
		t.Error("r1 should be flagged as imported")
	}

	if byID["r2"].IsImported {
		t.Error("r2 should not be flagged as imported")
	}

	filtered, err := syncService.ListRemoteCandidates(context.Background(), "school")
	if err != nil {
		t.Fatalf("filtered ListRemoteCandidates returned error: %v", err)
	}

	if len(filtered) != 1 || filtered[0].Album.ID != "r2" {
		t.Errorf("search filter should match only r2, got %d results", len(filtered))
	}
}

func TestPublicViewerOnlySeesApproved(t *testing.T) {
	albums := newMemoryAlbumStore()

	seed := func(remoteID string, status models.AlbumStatus) {
		album := &models.Album{RemoteID: remoteID, Status: status}

		if err := albums.Create(album); err != nil {
			t.Fatalf("seeding %s: %v", remoteID, err)
		}
	}

	seed("p", models.StatusPending)
	seed("a", models.StatusApproved)
	seed("r", models.StatusRejected)
	seed("h", models.StatusHidden)

	// A public caller asking for rejected albums still only gets approved.
	result, _, err := albums.GetAlbumList(AlbumListOptions{
		Viewer: ViewerPublic,
		Status: string(models.StatusRejected),
	})

	if err != nil {
		t.Fatalf("GetAlbumList returned error: %v", err)
	}

	if len(result) != 1 || result[0].Status != models.StatusApproved {
		t.Errorf("public viewer must only see approved albums, got %d results", len(result))
	}
}
