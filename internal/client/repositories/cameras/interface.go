package cameras

import (
	"context"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
)

// Repository describes the local camera cache.
type Repository interface {
	// Upsert inserts a camera or updates it by ID.
	Upsert(ctx context.Context, c *models.Camera) error

	// ReplaceAll drops every cached camera and stores cams instead.
	ReplaceAll(ctx context.Context, cams []models.Camera) error

	// GetAll returns cached cameras ordered by name.
	GetAll(ctx context.Context) ([]models.Camera, error)

	// GetByID returns common.ErrorNotFound when the camera is not cached.
	GetByID(ctx context.Context, id string) (*models.Camera, error)

	// DeleteByID removes a camera; deleting a missing camera is not an error.
	DeleteByID(ctx context.Context, id string) error
}
