// Package cameras manages camera configuration records through the remote
// camera API and mirrors them into the local SQLite cache so the list stays
// readable while the API is unreachable.
package cameras

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	repo "github.com/dmitrijs2005/camkeeper/internal/client/repositories/cameras"
	"github.com/dmitrijs2005/camkeeper/internal/common"
	"github.com/dmitrijs2005/camkeeper/internal/dbx"
	"github.com/dmitrijs2005/camkeeper/internal/logging"
	"github.com/dmitrijs2005/camkeeper/internal/netx"
)

// API is the subset of netx.Client used here.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string) error
}

type Service struct {
	api    API
	db     *sql.DB
	logger logging.Logger
}

func NewService(api API, db *sql.DB, logger logging.Logger) *Service {
	return &Service{api: api, db: db, logger: logger.With("component", "cameras")}
}

func itemPath(id string) string {
	return "cameras/" + url.PathEscape(id)
}

// List fetches all cameras and refreshes the cache. When the API is
// unavailable the cached list is returned with offline set.
func (s *Service) List(ctx context.Context) (cams []models.Camera, offline bool, err error) {
	err = s.api.Get(ctx, "cameras", &cams)
	if errors.Is(err, netx.ErrUnavailable) {
		s.logger.Warn(ctx, "camera api unavailable, using cache", "error", err)
		cached, cerr := repo.NewSQLiteRepository(s.db).GetAll(ctx)
		if cerr != nil {
			return nil, true, fmt.Errorf("read camera cache: %w", cerr)
		}
		return cached, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("list cameras: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return repo.NewSQLiteRepository(tx).ReplaceAll(ctx, cams)
	})
	if err != nil {
		s.logger.Error(ctx, "camera cache not refreshed", "error", err)
	}
	return cams, false, nil
}

// Get returns one camera, from the cache when the API is unavailable.
func (s *Service) Get(ctx context.Context, id string) (*models.Camera, error) {
	var c models.Camera
	err := s.api.Get(ctx, itemPath(id), &c)
	switch {
	case errors.Is(err, netx.ErrUnavailable):
		cached, cerr := repo.NewSQLiteRepository(s.db).GetByID(ctx, id)
		if errors.Is(cerr, common.ErrorNotFound) {
			return nil, fmt.Errorf("get camera %s: %w", id, err)
		}
		return cached, cerr
	case errors.Is(err, netx.ErrNotFound):
		s.forget(ctx, id)
		return nil, fmt.Errorf("camera %s: %w", id, common.ErrorNotFound)
	case err != nil:
		return nil, fmt.Errorf("get camera %s: %w", id, err)
	}
	s.remember(ctx, &c)
	return &c, nil
}

// Create validates c and stores it remotely; the returned record carries the
// server-assigned ID.
func (s *Service) Create(ctx context.Context, c models.Camera) (*models.Camera, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var created models.Camera
	if err := s.api.Post(ctx, "cameras", c, &created); err != nil {
		return nil, fmt.Errorf("create camera: %w", err)
	}
	s.remember(ctx, &created)
	return &created, nil
}

func (s *Service) Update(ctx context.Context, c models.Camera) (*models.Camera, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("%w: id is required", models.ErrInvalidCamera)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var updated models.Camera
	if err := s.api.Put(ctx, itemPath(c.ID), c, &updated); err != nil {
		return nil, fmt.Errorf("update camera %s: %w", c.ID, err)
	}
	s.remember(ctx, &updated)
	return &updated, nil
}

// Delete removes the camera remotely and from the cache. A camera the API
// no longer knows is dropped from the cache and reported as success.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.api.Delete(ctx, itemPath(id))
	if err != nil && !errors.Is(err, netx.ErrNotFound) {
		return fmt.Errorf("delete camera %s: %w", id, err)
	}
	s.forget(ctx, id)
	return nil
}

func (s *Service) remember(ctx context.Context, c *models.Camera) {
	if err := repo.NewSQLiteRepository(s.db).Upsert(ctx, c); err != nil {
		s.logger.Error(ctx, "camera not cached", "id", c.ID, "error", err)
	}
}

func (s *Service) forget(ctx context.Context, id string) {
	if err := repo.NewSQLiteRepository(s.db).DeleteByID(ctx, id); err != nil {
		s.logger.Error(ctx, "camera not evicted", "id", id, "error", err)
	}
}

// Purge drops every cached camera. The cache belongs to the signed-in user
// and must not outlive the session.
func (s *Service) Purge(ctx context.Context) {
	if err := repo.NewSQLiteRepository(s.db).ReplaceAll(ctx, nil); err != nil {
		s.logger.Error(ctx, "camera cache not purged", "error", err)
	}
}
