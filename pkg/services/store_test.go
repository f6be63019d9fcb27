package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var registerBindOnce sync.Once

const testSchema = `
CREATE TABLE albums (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	deleted_at DATETIME,
	remote_id TEXT NOT NULL,
	owner_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	cover_url TEXT NOT NULL DEFAULT '',
	photo_count INTEGER NOT NULL DEFAULT 0,
	remote_url TEXT NOT NULL DEFAULT '',
	remote_created_at DATETIME,
	custom_title TEXT,
	custom_description TEXT,
	custom_cover_url TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	rejection_reason TEXT,
	approved_by TEXT,
	approved_at DATETIME,
	display_order INTEGER NOT NULL DEFAULT 0,
	last_synced_at DATETIME
);

CREATE UNIQUE INDEX idx_albums_remote_id ON albums(remote_id);

CREATE TABLE sync_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at DATETIME NOT NULL,
	completed_at DATETIME,
	status TEXT NOT NULL,
	triggered_by TEXT NOT NULL DEFAULT '',
	albums_found INTEGER NOT NULL DEFAULT 0,
	albums_added INTEGER NOT NULL DEFAULT 0,
	albums_updated INTEGER NOT NULL DEFAULT 0,
	albums_unchanged INTEGER NOT NULL DEFAULT 0,
	error_message TEXT
);
`

func newTestDB(t *testing.T) *sqlz.DB {
	t.Helper()

	registerBindOnce.Do(func() {
		binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	})

	db, err := sqlz.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connecting to sqlite: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Pool().Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = db.Exec(ctx, testSchema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

func seedAlbum(t *testing.T, service AlbumService, remoteID, title string, status models.AlbumStatus) *models.Album {
	t.Helper()

	album := &models.Album{
		RemoteID:        remoteID,
		OwnerID:         "owner1",
		Title:           title,
		Description:     "desc",
		CoverURL:        "https://c/" + remoteID + ".jpg",
		PhotoCount:      3,
		RemoteURL:       "https://r/" + remoteID,
		RemoteCreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:          status,
	}

	if err := service.Create(album); err != nil {
		t.Fatalf("seeding album %s: %v", remoteID, err)
	}

	return album
}

func TestAlbumStoreCreateAndGet(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})
	seeded := seedAlbum(t, service, "r1", "First", models.StatusPending)

	if seeded.ID == 0 {
		t.Fatal("expected an assigned ID")
	}

	byID, err := service.GetByID(seeded.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	if byID.RemoteID != "r1" || byID.Title != "First" || byID.Status != models.StatusPending {
		t.Errorf("unexpected album back: %+v", byID)
	}

	byRemote, err := service.GetByRemoteID("r1")
	if err != nil {
		t.Fatalf("GetByRemoteID returned error: %v", err)
	}

	if byRemote.ID != seeded.ID {
		t.Errorf("expected same record, got ID %d", byRemote.ID)
	}

	if _, err = service.GetByID(9999); !errors.Is(err, models.ErrAlbumNotFound) {
		t.Errorf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestAlbumStoreRemoteIDUniqueness(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})
	seedAlbum(t, service, "r1", "First", models.StatusPending)

	duplicate := &models.Album{RemoteID: "r1", Title: "Copy", Status: models.StatusPending}

	if err := service.Create(duplicate); !errors.Is(err, models.ErrDuplicateAlbum) {
		t.Errorf("expected ErrDuplicateAlbum from the unique index, got %v", err)
	}
}

func TestAlbumStoreListFilteringAndCounts(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})

	seedAlbum(t, service, "r1", "Beach Cleanup", models.StatusApproved)
	seedAlbum(t, service, "r2", "School Visit", models.StatusApproved)
	seedAlbum(t, service, "r3", "Fundraiser", models.StatusPending)
	seedAlbum(t, service, "r4", "Retreat", models.StatusRejected)

	// Admin filtering by status.
	albums, total, err := service.GetAlbumList(AlbumListOptions{Viewer: ViewerAdmin, Status: "approved"})
	if err != nil {
		t.Fatalf("GetAlbumList returned error: %v", err)
	}

	if total != 2 || len(albums) != 2 {
		t.Errorf("expected 2 approved albums, got total=%d len=%d", total, len(albums))
	}

	// Case-insensitive substring search.
	albums, total, err = service.GetAlbumList(AlbumListOptions{Viewer: ViewerAdmin, Status: "all", Search: "school"})
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}

	if total != 1 || albums[0].RemoteID != "r2" {
		t.Errorf("expected only r2 for 'school', got total=%d", total)
	}

	// Search matches the custom title once an override is set.
	target, _ := service.GetByRemoteID("r1")
	customTitle := "Coastal Day"

	if err = service.UpdateOverrides(target.ID, AlbumOverrides{CustomTitle: &customTitle}); err != nil {
		t.Fatalf("setting override: %v", err)
	}

	_, total, err = service.GetAlbumList(AlbumListOptions{Viewer: ViewerAdmin, Status: "all", Search: "coastal"})
	if err != nil {
		t.Fatalf("override search returned error: %v", err)
	}

	if total != 1 {
		t.Errorf("expected the override title to be searchable, got total=%d", total)
	}

	// Public viewers only see approved, no matter the filter.
	albums, _, err = service.GetAlbumList(AlbumListOptions{Viewer: ViewerPublic, Status: "pending"})
	if err != nil {
		t.Fatalf("public list returned error: %v", err)
	}

	for _, album := range albums {
		if album.Status != models.StatusApproved {
			t.Errorf("public viewer saw a %s album", album.Status)
		}
	}

	counts, err := service.GetStatusCounts()
	if err != nil {
		t.Fatalf("GetStatusCounts returned error: %v", err)
	}

	if counts.Approved != 2 || counts.Pending != 1 || counts.Rejected != 1 || counts.Hidden != 0 {
		t.Errorf("unexpected counts: %+v", counts)
	}

	if counts.Total() != 4 {
		t.Errorf("expected total 4, got %d", counts.Total())
	}
}

func TestAlbumStoreOverrideClearViaEmptyString(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})
	seeded := seedAlbum(t, service, "r1", "Remote Title", models.StatusApproved)

	customTitle := "Custom"

	if err := service.UpdateOverrides(seeded.ID, AlbumOverrides{CustomTitle: &customTitle}); err != nil {
		t.Fatalf("setting override: %v", err)
	}

	stored, _ := service.GetByID(seeded.ID)

	if stored.CustomTitle != "Custom" {
		t.Fatalf("expected override stored, got '%s'", stored.CustomTitle)
	}

	// An omitted field stays put, an empty string clears.
	empty := ""

	if err := service.UpdateOverrides(seeded.ID, AlbumOverrides{CustomTitle: &empty}); err != nil {
		t.Fatalf("clearing override: %v", err)
	}

	stored, _ = service.GetByID(seeded.ID)

	if stored.CustomTitle != "" {
		t.Errorf("expected override cleared, got '%s'", stored.CustomTitle)
	}

	if stored.DisplayTitle() != "Remote Title" {
		t.Errorf("expected fallback to remote title, got '%s'", stored.DisplayTitle())
	}
}

func TestAlbumStoreCommandsOnMissingAlbumReportNotFound(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})

	customTitle := "Custom"

	err := service.UpdateOverrides(999, AlbumOverrides{CustomTitle: &customTitle})

	if !errors.Is(err, models.ErrAlbumNotFound) {
		t.Errorf("expected ErrAlbumNotFound from UpdateOverrides, got %v", err)
	}

	err = service.UpdateDisplayOrder(999, 5)

	if !errors.Is(err, models.ErrAlbumNotFound) {
		t.Errorf("expected ErrAlbumNotFound from UpdateDisplayOrder, got %v", err)
	}
}

func TestAlbumStoreSyncDoesNotBumpUpdatedAt(t *testing.T) {
	service := NewAlbumService(AlbumServiceConfig{DB: newTestDB(t)})
	seeded := seedAlbum(t, service, "r1", "Title", models.StatusApproved)

	before, _ := service.GetByID(seeded.ID)

	time.Sleep(time.Millisecond * 5)
	syncedAt := time.Now().UTC()

	seeded.Title = "Newer Title"

	if err := service.UpdateRemoteFields(seeded, syncedAt); err != nil {
		t.Fatalf("UpdateRemoteFields returned error: %v", err)
	}

	after, _ := service.GetByID(seeded.ID)

	if after.Title != "Newer Title" {
		t.Errorf("expected title updated, got '%s'", after.Title)
	}

	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("sync must not bump updated_at")
	}

	if after.LastSyncedAt == nil {
		t.Error("expected last_synced_at set")
	}
}

func TestSyncLogStoreLifecycle(t *testing.T) {
	service := NewSyncLogService(SyncLogServiceConfig{DB: newTestDB(t)})

	latest, err := service.Latest()
	if err != nil {
		t.Fatalf("Latest on empty store returned error: %v", err)
	}

	if latest != nil {
		t.Fatal("expected nil latest on empty store")
	}

	entry, err := service.Start("admin42")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if entry.ID == 0 || entry.Status != models.SyncStatusRunning {
		t.Fatalf("unexpected started entry: %+v", entry)
	}

	counts := models.SyncCounts{Found: 3, Added: 2, Updated: 1}

	if err = service.Complete(entry.ID, counts); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	latest, err = service.Latest()
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}

	if latest.Status != models.SyncStatusSuccess || latest.AlbumsAdded != 2 || latest.CompletedAt == nil {
		t.Errorf("unexpected finalized entry: %+v", latest)
	}

	if latest.Duration() < 0 {
		t.Errorf("expected non-negative duration, got %v", latest.Duration())
	}

	// Finalization only applies once: a second finalize is a no-op.
	if err = service.Fail(entry.ID, models.SyncCounts{}, "late failure"); err != nil {
		t.Fatalf("second finalize returned error: %v", err)
	}

	latest, _ = service.Latest()

	if latest.Status != models.SyncStatusSuccess {
		t.Errorf("finalized entry was mutated again: %+v", latest)
	}
}

func TestSyncLogStoreListAndStaleSweep(t *testing.T) {
	service := NewSyncLogService(SyncLogServiceConfig{DB: newTestDB(t)})

	first, _ := service.Start("scheduler")
	_ = service.Complete(first.ID, models.SyncCounts{Found: 1, Unchanged: 1})

	second, _ := service.Start("admin42")

	entries, err := service.List(10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].ID != second.ID {
		t.Errorf("expected most recent first, got ID %d", entries[0].ID)
	}

	// The running entry is too young to sweep.
	swept, err := service.FailStaleRuns(time.Hour)
	if err != nil {
		t.Fatalf("FailStaleRuns returned error: %v", err)
	}

	if swept != 0 {
		t.Errorf("expected nothing swept, got %d", swept)
	}

	// With a zero TTL everything running is stale.
	time.Sleep(time.Millisecond * 5)

	swept, err = service.FailStaleRuns(0)
	if err != nil {
		t.Fatalf("FailStaleRuns returned error: %v", err)
	}

	if swept != 1 {
		t.Errorf("expected 1 swept, got %d", swept)
	}

	latest, _ := service.Latest()

	if latest.Status != models.SyncStatusFailed || latest.ErrorMessage == "" {
		t.Errorf("swept entry not failed: %+v", latest)
	}
}
