package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/rfberaldo/sqlz"
)

// Viewer identifies who is asking. Public viewers only ever see approved
// albums no matter what filter they request.
type Viewer int

const (
	ViewerPublic Viewer = iota
	ViewerAdmin
)

type AlbumListOptions struct {
	Viewer   Viewer
	Status   string // "", "all", or one of the AlbumStatus values
	Search   string // case-insensitive substring over the effective title
	Page     int    // 1-based
	PageSize int
}

// AlbumOverrides is a partial update. Nil means leave the field alone; an
// empty string clears the override so display falls back to the remote value.
type AlbumOverrides struct {
	CustomTitle       *string
	CustomDescription *string
	CustomCoverURL    *string
}

type AlbumServicer interface {
	GetByID(id uint) (*models.Album, error)
	GetByRemoteID(remoteID string) (*models.Album, error)
	GetAlbumList(options AlbumListOptions) ([]*models.Album, int, error)
	GetStatusCounts() (models.AlbumStatusCounts, error)
	GetImportedRemoteIDs() (map[string]bool, error)
	Create(album *models.Album) error
	UpdateRemoteFields(album *models.Album, syncedAt time.Time) error
	TouchLastSynced(id uint, syncedAt time.Time) error
	UpdateModeration(album *models.Album) error
	UpdateOverrides(id uint, overrides AlbumOverrides) error
	UpdateDisplayOrder(id uint, displayOrder int) error
}

type AlbumServiceConfig struct {
	DB *sqlz.DB
}

type AlbumService struct {
	db *sqlz.DB
}

func NewAlbumService(config AlbumServiceConfig) AlbumService {
	return AlbumService{
		db: config.DB,
	}
}

const albumColumns = `
   a.id
   , a.created_at
   , a.updated_at
   , a.deleted_at
   , a.remote_id
   , a.owner_id
   , a.title
   , a.description
   , a.cover_url
   , a.photo_count
   , a.remote_url
   , a.remote_created_at
   , COALESCE(a.custom_title, '') AS custom_title
   , COALESCE(a.custom_description, '') AS custom_description
   , COALESCE(a.custom_cover_url, '') AS custom_cover_url
   , a.status
   , COALESCE(a.rejection_reason, '') AS rejection_reason
   , COALESCE(a.approved_by, '') AS approved_by
   , a.approved_at
   , a.display_order
   , a.last_synced_at
`

func (s AlbumService) GetByID(id uint) (*models.Album, error) {
	var (
		err error
	)

	result := &models.Album{}

	sql := `
SELECT ` + albumColumns + `
FROM albums AS a
WHERE 1=1
   AND a.id=?
   `

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrAlbumNotFound
		}

		return nil, fmt.Errorf("error querying for album %d: %w", id, err)
	}

	return result, nil
}

func (s AlbumService) GetByRemoteID(remoteID string) (*models.Album, error) {
	var (
		err error
	)

	result := &models.Album{}

	sql := `
SELECT ` + albumColumns + `
FROM albums AS a
WHERE 1=1
   AND a.remote_id=?
   `

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, remoteID); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrAlbumNotFound
		}

		return nil, fmt.Errorf("error querying for album by remote ID %s: %w", remoteID, err)
	}

	return result, nil
}

/*
GetAlbumList returns one page of albums plus the total count matching the
filter. Public viewers are pinned to approved albums regardless of the
status filter they asked for.
*/
func (s AlbumService) GetAlbumList(options AlbumListOptions) ([]*models.Album, int, error) {
	var (
		err    error
		total  int
		result []*models.Album
	)

	if options.PageSize <= 0 {
		options.PageSize = 20
	}

	if options.Page <= 0 {
		options.Page = 1
	}

	where := strings.Builder{}
	params := []any{}

	if options.Viewer == ViewerPublic {
		where.WriteString(" AND a.status=?")
		params = append(params, string(models.StatusApproved))
	} else if options.Status != "" && options.Status != "all" {
		where.WriteString(" AND a.status=?")
		params = append(params, options.Status)
	}

	if options.Search != "" {
		where.WriteString(" AND LOWER(COALESCE(NULLIF(a.custom_title, ''), a.title)) LIKE ?")
		params = append(params, "%"+strings.ToLower(options.Search)+"%")
	}

	countSql := `
SELECT COUNT(*)
FROM albums AS a
WHERE 1=1
` + where.String()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &total, countSql, params...); err != nil {
		return nil, 0, fmt.Errorf("error counting albums: %w", err)
	}

	sql := `
SELECT ` + albumColumns + `
FROM albums AS a
WHERE 1=1
` + where.String() + `
ORDER BY a.display_order, a.remote_created_at DESC
LIMIT ? OFFSET ?
`

	params = append(params, options.PageSize, (options.Page-1)*options.PageSize)

	ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, params...); err != nil {
		return nil, 0, fmt.Errorf("error querying for albums: %w", err)
	}

	return result, total, nil
}

// GetStatusCounts computes the per-status breakdown over all albums,
// ignoring any filter.
func (s AlbumService) GetStatusCounts() (models.AlbumStatusCounts, error) {
	var (
		err  error
		rows []struct {
			Status string
			Count  int
		}
	)

	result := models.AlbumStatusCounts{}

	sql := `
SELECT
   a.status
   , COUNT(*) AS count
FROM albums AS a
WHERE 1=1
GROUP BY a.status
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &rows, sql); err != nil {
		return result, fmt.Errorf("error counting albums by status: %w", err)
	}

	for _, row := range rows {
		switch models.AlbumStatus(row.Status) {
		case models.StatusPending:
			result.Pending = row.Count
		case models.StatusApproved:
			result.Approved = row.Count
		case models.StatusRejected:
			result.Rejected = row.Count
		case models.StatusHidden:
			result.Hidden = row.Count
		}
	}

	return result, nil
}

func (s AlbumService) GetImportedRemoteIDs() (map[string]bool, error) {
	var (
		err error
		ids []string
	)

	sql := `
SELECT a.remote_id
FROM albums AS a
WHERE 1=1
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &ids, sql); err != nil {
		return nil, fmt.Errorf("error querying for imported remote IDs: %w", err)
	}

	result := map[string]bool{}

	for _, id := range ids {
		result[id] = true
	}

	return result, nil
}

func (s AlbumService) Create(album *models.Album) error {
	var (
		err error
	)

	if !album.Status.IsValid() {
		album.Status = models.StatusPending
	}

	now := time.Now().UTC()
	album.CreatedAt = now
	album.UpdatedAt = now

	sql := `
INSERT INTO albums (
   created_at,
   updated_at,
   remote_id,
   owner_id,
   title,
   description,
   cover_url,
   photo_count,
   remote_url,
   remote_created_at,
   status,
   display_order,
   last_synced_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

	params := []any{
		album.CreatedAt,
		album.UpdatedAt,
		album.RemoteID,
		album.OwnerID,
		album.Title,
		album.Description,
		album.CoverURL,
		album.PhotoCount,
		album.RemoteURL,
		album.RemoteCreatedAt,
		string(album.Status),
		album.DisplayOrder,
		album.LastSyncedAt,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, params...)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.ErrDuplicateAlbum
		}

		return fmt.Errorf("error inserting album for remote ID %s: %w", album.RemoteID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		album.ID = uint(id)
	}

	return nil
}

/*
UpdateRemoteFields writes the remote-sourced display fields plus the
last-synced timestamp. Status, overrides, display order, and updated_at
are deliberately left out: sync must never look like a human edit.
*/
func (s AlbumService) UpdateRemoteFields(album *models.Album, syncedAt time.Time) error {
	var (
		err error
	)

	sql := `
UPDATE albums SET
   title=?,
   description=?,
   cover_url=?,
   photo_count=?,
   remote_url=?,
   last_synced_at=?
WHERE 1=1
   AND id=?
`

	params := []any{
		album.Title,
		album.Description,
		album.CoverURL,
		album.PhotoCount,
		album.RemoteURL,
		syncedAt,
		album.ID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating remote fields for album %d: %w", album.ID, err)
	}

	return nil
}

func (s AlbumService) TouchLastSynced(id uint, syncedAt time.Time) error {
	var (
		err error
	)

	sql := `
UPDATE albums SET
   last_synced_at=?
WHERE 1=1
   AND id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, syncedAt, id); err != nil {
		return fmt.Errorf("error touching last synced for album %d: %w", id, err)
	}

	return nil
}

// UpdateModeration persists the moderation fields after a transition. The
// legality of the transition itself is the ModerationService's job.
func (s AlbumService) UpdateModeration(album *models.Album) error {
	var (
		err error
	)

	album.UpdatedAt = time.Now().UTC()

	sql := `
UPDATE albums SET
   status=?,
   rejection_reason=?,
   approved_by=?,
   approved_at=?,
   updated_at=?
WHERE 1=1
   AND id=?
`

	params := []any{
		string(album.Status),
		album.RejectionReason,
		album.ApprovedBy,
		album.ApprovedAt,
		album.UpdatedAt,
		album.ID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating moderation fields for album %d: %w", album.ID, err)
	}

	return nil
}

func (s AlbumService) UpdateOverrides(id uint, overrides AlbumOverrides) error {
	var (
		err error
	)

	assignments := []string{}
	params := []any{}

	appendOverride := func(column string, value *string) {
		if value == nil {
			return
		}

		// Empty string clears the override so display falls back to the
		// remote-sourced value.
		if *value == "" {
			assignments = append(assignments, column+"=NULL")
			return
		}

		assignments = append(assignments, column+"=?")
		params = append(params, *value)
	}

	appendOverride("custom_title", overrides.CustomTitle)
	appendOverride("custom_description", overrides.CustomDescription)
	appendOverride("custom_cover_url", overrides.CustomCoverURL)

	if len(assignments) == 0 {
		return nil
	}

	assignments = append(assignments, "updated_at=?")
	params = append(params, time.Now().UTC())
	params = append(params, id)

	sql := fmt.Sprintf(`
UPDATE albums SET
   %s
WHERE 1=1
   AND id=?
`, strings.Join(assignments, ",\n   "))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, params...)

	if err != nil {
		return fmt.Errorf("error updating overrides for album %d: %w", id, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrAlbumNotFound
	}

	return nil
}

func (s AlbumService) UpdateDisplayOrder(id uint, displayOrder int) error {
	var (
		err error
	)

	sql := `
UPDATE albums SET
   display_order=?,
   updated_at=?
WHERE 1=1
   AND id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, displayOrder, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("error updating display order for album %d: %w", id, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return models.ErrAlbumNotFound
	}

	return nil
}
