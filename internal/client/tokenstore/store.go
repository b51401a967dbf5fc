// Package tokenstore persists the four session slots (access token, ID
// token, refresh token, serialized user) in the local metadata table.
//
// The store is a passive delegate of the session service: it never decides
// whether a bundle is usable, and storage failures never reach the caller.
// A failed Save only means the session will not survive a restart.
package tokenstore

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/dmitrijs2005/camkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/camkeeper/internal/common"
	"github.com/dmitrijs2005/camkeeper/internal/dbx"
	"github.com/dmitrijs2005/camkeeper/internal/logging"
)

// Store is the persistence contract used by the session service.
type Store interface {
	Save(ctx context.Context, b models.TokenBundle)
	Load(ctx context.Context) (models.TokenBundle, error)
	Clear(ctx context.Context)
}

// SQLiteStore implements Store on top of the metadata repository.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

func NewSQLiteStore(db *sql.DB, logger logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger.With("component", "tokenstore")}
}

// Save writes all four slots in one transaction. Errors are logged only.
func (s *SQLiteStore) Save(ctx context.Context, b models.TokenBundle) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		values := map[string][]byte{
			common.AccessTokenKey:  []byte(b.AccessToken),
			common.IDTokenKey:      []byte(b.IDToken),
			common.RefreshTokenKey: []byte(b.RefreshToken),
			common.UserKey:         b.User,
		}
		for _, k := range common.SessionKeys {
			if err := repo.Set(ctx, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "session not persisted", "error", err)
	}
}

// Load returns whatever slots are present. A missing slot is left empty.
func (s *SQLiteStore) Load(ctx context.Context) (models.TokenBundle, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	var b models.TokenBundle
	for _, k := range common.SessionKeys {
		v, err := repo.Get(ctx, k)
		if err != nil {
			return models.TokenBundle{}, err
		}
		switch k {
		case common.AccessTokenKey:
			b.AccessToken = string(v)
		case common.IDTokenKey:
			b.IDToken = string(v)
		case common.RefreshTokenKey:
			b.RefreshToken = string(v)
		case common.UserKey:
			b.User = v
		}
	}
	return b, nil
}

// Clear removes the four slots. Safe to call on an empty store.
func (s *SQLiteStore) Clear(ctx context.Context) {
	repo := metadata.NewSQLiteRepository(s.db)
	if err := repo.DeleteKeys(ctx, common.SessionKeys...); err != nil {
		s.logger.Error(ctx, "session slots not cleared", "error", err)
	}
}
