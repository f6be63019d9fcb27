package services

import (
	"context"
	"fmt"
	"time"

	"github.com/brightsteps/brightstepsngo/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type SettingsServicer interface {
	Get(key string) (string, error)
	GetAll() (map[string]string, error)
	Set(key, value string) error
	SetAll(values map[string]string) error
}

type SettingsServiceConfig struct {
	DB *sqlz.DB
}

// SettingsService stores the editable site content as key/value pairs:
// hero text, contact details, social links, impact numbers.
type SettingsService struct {
	db *sqlz.DB
}

func NewSettingsService(config SettingsServiceConfig) SettingsService {
	return SettingsService{
		db: config.DB,
	}
}

func (s SettingsService) Get(key string) (string, error) {
	var (
		err    error
		result models.Setting
	)

	sql := `
SELECT
   s.key
   , s.value
   , s.updated_at
FROM settings AS s
WHERE 1=1
   AND s.key=?
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &result, sql, key); err != nil {
		if sqlz.IsNotFound(err) {
			return "", nil
		}

		return "", fmt.Errorf("error querying for setting '%s': %w", key, err)
	}

	return result.Value, nil
}

func (s SettingsService) GetAll() (map[string]string, error) {
	var (
		err      error
		settings []models.Setting
	)

	sql := `
SELECT
   s.key
   , s.value
   , s.updated_at
FROM settings AS s
WHERE 1=1
ORDER BY s.key
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &settings, sql); err != nil {
		return nil, fmt.Errorf("error querying for settings: %w", err)
	}

	result := map[string]string{}

	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}

	return result, nil
}

func (s SettingsService) Set(key, value string) error {
	var (
		err error
	)

	sql := `
INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
   value=excluded.value,
   updated_at=excluded.updated_at
`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err = s.db.Exec(ctx, sql, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("error saving setting '%s': %w", key, err)
	}

	return nil
}

func (s SettingsService) SetAll(values map[string]string) error {
	for key, value := range values {
		if err := s.Set(key, value); err != nil {
			return err
		}
	}

	return nil
}
