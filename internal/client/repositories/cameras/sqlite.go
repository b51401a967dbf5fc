package cameras

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/dmitrijs2005/camkeeper/internal/common"
	"github.com/dmitrijs2005/camkeeper/internal/dbx"
)

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Camera) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cameras (id, name, rtsp_url, pipeline, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rtsp_url = excluded.rtsp_url,
			pipeline = excluded.pipeline,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.RTSPURL, c.Pipeline, c.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert camera: %w", err)
	}
	return nil
}

// ReplaceAll is meant to run on a *sql.Tx so readers never see a half-empty cache.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, cams []models.Camera) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cameras`); err != nil {
		return fmt.Errorf("failed to clear cameras: %w", err)
	}
	for i := range cams {
		if err := r.Upsert(ctx, &cams[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Camera, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, rtsp_url, pipeline, updated_at FROM cameras ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select cameras: %w", err)
	}
	defer rows.Close()

	var result []models.Camera
	for rows.Next() {
		var c models.Camera
		if err := rows.Scan(&c.ID, &c.Name, &c.RTSPURL, &c.Pipeline, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Camera, error) {
	c := &models.Camera{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, rtsp_url, pipeline, updated_at FROM cameras WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.RTSPURL, &c.Pipeline, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cameras WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete camera %s: %w", id, err)
	}
	return nil
}
