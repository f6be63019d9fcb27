package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type TeamServicer interface {
	GetRoster() ([]*models.TeamCategory, error)
	GetCategory(id uint) (*models.TeamCategory, error)
	CreateCategory(category *models.TeamCategory) error
	UpdateCategory(category *models.TeamCategory) error
	DeleteCategory(id uint) error
	GetMember(id uint) (*models.TeamMember, error)
	CreateMember(member *models.TeamMember) error
	UpdateMember(member *models.TeamMember) error
	DeleteMember(id uint) error
}

type TeamServiceConfig struct {
	DB *sqlz.DB
}

type TeamService struct {
	db *sqlz.DB
}

func NewTeamService(config TeamServiceConfig) TeamService {
	return TeamService{
		db: config.DB,
	}
}

// GetRoster returns every category with its members, both in display order.
func (s TeamService) GetRoster() ([]*models.TeamCategory, error) {
	var (
		err        error
		categories []*models.TeamCategory
		members    []models.TeamMember
	)

	sql := `
SELECT
   c.id
   , c.created_at
   , c.updated_at
   , c.deleted_at
   , c.name
   , c.display_order
FROM team_categories AS c
WHERE 1=1
   AND c.deleted_at IS NULL
ORDER BY c.display_order, c.name
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &categories, sql); err != nil {
		return nil, fmt.Errorf("error querying for team categories: %w", err)
	}

	sql = `
SELECT
   m.id
   , m.created_at
   , m.updated_at
   , m.deleted_at
   , m.category_id
   , m.name
   , m.role
   , COALESCE(m.bio, '') AS bio
   , COALESCE(m.photo_url, '') AS photo_url
   , m.display_order
FROM team_members AS m
WHERE 1=1
   AND m.deleted_at IS NULL
ORDER BY m.display_order, m.name
`

	ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &members, sql); err != nil {
		return nil, fmt.Errorf("error querying for team members: %w", err)
	}

	byCategory := map[uint][]models.TeamMember{}

	for _, member := range members {
		byCategory[member.CategoryID] = append(byCategory[member.CategoryID], member)
	}

	for _, category := range categories {
		category.Members = byCategory[category.ID]
	}

	return categories, nil
}

func (s TeamService) GetCategory(id uint) (*models.TeamCategory, error) {
	var (
		err error
	)

	result := &models.TeamCategory{}

	sql := `
SELECT
   c.id
   , c.created_at
   , c.updated_at
   , c.deleted_at
   , c.name
   , c.display_order
FROM team_categories AS c
WHERE 1=1
   AND c.deleted_at IS NULL
   AND c.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrTeamCategoryNotFound
		}

		return nil, fmt.Errorf("error querying for team category %d: %w", id, err)
	}

	return result, nil
}

func (s TeamService) CreateCategory(category *models.TeamCategory) error {
	var (
		err error
	)

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	sql := `
INSERT INTO team_categories (created_at, updated_at, name, display_order)
VALUES (?, ?, ?, ?)
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, category.CreatedAt, category.UpdatedAt, category.Name, category.DisplayOrder)

	if err != nil {
		return fmt.Errorf("error inserting team category: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		category.ID = uint(id)
	}

	return nil
}

func (s TeamService) UpdateCategory(category *models.TeamCategory) error {
	var (
		err error
	)

	sql := `
UPDATE team_categories SET
   updated_at=?,
   name=?,
   display_order=?
WHERE 1=1
   AND deleted_at IS NULL
   AND id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, time.Now().UTC(), category.Name, category.DisplayOrder, category.ID); err != nil {
		return fmt.Errorf("error updating team category %d: %w", category.ID, err)
	}

	return nil
}

// DeleteCategory soft deletes the category and its members.
func (s TeamService) DeleteCategory(id uint) error {
	var (
		err error
	)

	now := time.Now().UTC()

	sql := `
UPDATE team_categories SET
   deleted_at=?
WHERE 1=1
   AND id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, now, id); err != nil {
		return fmt.Errorf("error deleting team category %d: %w", id, err)
	}

	sql = `
UPDATE team_members SET
   deleted_at=?
WHERE 1=1
   AND category_id=?
`

	ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, now, id); err != nil {
		return fmt.Errorf("error deleting members of team category %d: %w", id, err)
	}

	return nil
}

func (s TeamService) GetMember(id uint) (*models.TeamMember, error) {
	var (
		err error
	)

	result := &models.TeamMember{}

	sql := `
SELECT
   m.id
   , m.created_at
   , m.updated_at
   , m.deleted_at
   , m.category_id
   , m.name
   , m.role
   , COALESCE(m.bio, '') AS bio
   , COALESCE(m.photo_url, '') AS photo_url
   , m.display_order
FROM team_members AS m
WHERE 1=1
   AND m.deleted_at IS NULL
   AND m.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrTeamMemberNotFound
		}

		return nil, fmt.Errorf("error querying for team member %d: %w", id, err)
	}

	return result, nil
}

func (s TeamService) CreateMember(member *models.TeamMember) error {
	var (
		err error
	)

	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	sql := `
INSERT INTO team_members (
   created_at,
   updated_at,
   category_id,
   name,
   role,
   bio,
   photo_url,
   display_order
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

	params := []any{
		member.CreatedAt,
		member.UpdatedAt,
		member.CategoryID,
		member.Name,
		member.Role,
		member.Bio,
		member.PhotoURL,
		member.DisplayOrder,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, params...)

	if err != nil {
		return fmt.Errorf("error inserting team member: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		member.ID = uint(id)
	}

	return nil
}

func (s TeamService) UpdateMember(member *models.TeamMember) error {
	var (
		err error
	)

	sql := `
UPDATE team_members SET
   updated_at=?,
   category_id=?,
   name=?,
   role=?,
   bio=?,
   photo_url=?,
   display_order=?
WHERE 1=1
   AND deleted_at IS NULL
   AND id=?
`

	params := []any{
		time.Now().UTC(),
		member.CategoryID,
		member.Name,
		member.Role,
		member.Bio,
		member.PhotoURL,
		member.DisplayOrder,
		member.ID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating team member %d: %w", member.ID, err)
	}

	return nil
}

func (s TeamService) DeleteMember(id uint) error {
	var (
		err error
	)

	sql := `
UPDATE team_members SET
   deleted_at=?
WHERE 1=1
   AND id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("error deleting team member %d: %w", id, err)
	}

	return nil
}
