package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type EmpowermentListOptions struct {
	Tag           string
	Search        string
	PublishedOnly bool
	Page          int
	PageSize      int
}

type EmpowermentServicer interface {
	GetByID(id uint) (*models.Empowerment, error)
	GetList(options EmpowermentListOptions) ([]*models.Empowerment, int, error)
	Create(empowerment *models.Empowerment) error
	Update(empowerment *models.Empowerment) error
	Delete(id uint) error
}

type EmpowermentServiceConfig struct {
	DB *sqlz.DB
}

type EmpowermentService struct {
	db *sqlz.DB
}

func NewEmpowermentService(config EmpowermentServiceConfig) EmpowermentService {
	return EmpowermentService{
		db: config.DB,
	}
}

const empowermentColumns = `
   e.id
   , e.created_at
   , e.updated_at
   , e.deleted_at
   , e.title
   , e.body
   , COALESCE(e.image_url, '') AS image_url
   , COALESCE(e.tags, '') AS tags
   , e.is_published
`

func (s EmpowermentService) GetByID(id uint) (*models.Empowerment, error) {
	var (
		err error
	)

	result := &models.Empowerment{}

	sql := `
SELECT ` + empowermentColumns + `
FROM empowerments AS e
WHERE 1=1
   AND e.deleted_at IS NULL
   AND e.id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, result, sql, id); err != nil {
		if sqlz.IsNotFound(err) {
			return nil, models.ErrEmpowermentNotFound
		}

		return nil, fmt.Errorf("error querying for empowerment %d: %w", id, err)
	}

	return result, nil
}

func (s EmpowermentService) GetList(options EmpowermentListOptions) ([]*models.Empowerment, int, error) {
	var (
		err    error
		total  int
		result []*models.Empowerment
	)

	if options.PageSize <= 0 {
		options.PageSize = 10
	}

	if options.Page <= 0 {
		options.Page = 1
	}

	where := strings.Builder{}
	params := []any{}

	if options.PublishedOnly {
		where.WriteString(" AND e.is_published=1")
	}

	if options.Tag != "" {
		where.WriteString(" AND (',' || LOWER(COALESCE(e.tags, '')) || ',') LIKE ?")
		params = append(params, "%,"+strings.ToLower(strings.TrimSpace(options.Tag))+",%")
	}

	if options.Search != "" {
		where.WriteString(" AND LOWER(e.title) LIKE ?")
		params = append(params, "%"+strings.ToLower(options.Search)+"%")
	}

	countSql := `
SELECT COUNT(*)
FROM empowerments AS e
WHERE 1=1
   AND e.deleted_at IS NULL
` + where.String()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &total, countSql, params...); err != nil {
		return nil, 0, fmt.Errorf("error counting empowerments: %w", err)
	}

	sql := `
SELECT ` + empowermentColumns + `
FROM empowerments AS e
WHERE 1=1
   AND e.deleted_at IS NULL
` + where.String() + `
ORDER BY e.created_at DESC
LIMIT ? OFFSET ?
`

	params = append(params, options.PageSize, (options.Page-1)*options.PageSize)

	ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &result, sql, params...); err != nil {
		return nil, 0, fmt.Errorf("error querying for empowerments: %w", err)
	}

	return result, total, nil
}

func (s EmpowermentService) Create(empowerment *models.Empowerment) error {
	var (
		err error
	)

	now := time.Now().UTC()
	empowerment.CreatedAt = now
	empowerment.UpdatedAt = now

	sql := `
INSERT INTO empowerments (
   created_at,
   updated_at,
   title,
   body,
   image_url,
   tags,
   is_published
) VALUES (?, ?, ?, ?, ?, ?, ?)
`

	params := []any{
		empowerment.CreatedAt,
		empowerment.UpdatedAt,
		empowerment.Title,
		empowerment.Body,
		empowerment.ImageURL,
		normalizeTags(empowerment.Tags),
		empowerment.IsPublished,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, params...)

	if err != nil {
		return fmt.Errorf("error inserting empowerment: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		empowerment.ID = uint(id)
	}

	return nil
}

func (s EmpowermentService) Update(empowerment *models.Empowerment) error {
	var (
		err error
	)

	empowerment.UpdatedAt = time.Now().UTC()

	sql := `
UPDATE empowerments SET
   updated_at=?,
   title=?,
   body=?,
   image_url=?,
   tags=?,
   is_published=?
WHERE 1=1
   AND deleted_at IS NULL
   AND id=?
`

	params := []any{
		empowerment.UpdatedAt,
		empowerment.Title,
		empowerment.Body,
		empowerment.ImageURL,
		normalizeTags(empowerment.Tags),
		empowerment.IsPublished,
		empowerment.ID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, params...); err != nil {
		return fmt.Errorf("error updating empowerment %d: %w", empowerment.ID, err)
	}

	return nil
}

// Delete is a soft delete.
func (s EmpowermentService) Delete(id uint) error {
	var (
		err error
	)

	sql := `
UPDATE empowerments SET
   deleted_at=?
WHERE 1=1
   AND id=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("error deleting empowerment %d: %w", id, err)
	}

	return nil
}

// normalizeTags trims whitespace and drops empty entries so tag filters can
// rely on a clean comma separated list.
func normalizeTags(tags string) string {
	cleaned := []string{}

	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)

		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}

	return strings.Join(cleaned, ",")
}
