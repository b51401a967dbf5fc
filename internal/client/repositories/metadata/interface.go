// Package metadata stores small named values in the local "metadata" table:
// the persisted session slots and client preferences such as the last
// email used to sign in.
package metadata

import (
	"context"
)

// Repository is a key/value view over the metadata table.
//
// Get returns (nil, nil) for a missing key and a non-nil empty slice for a
// key stored with an empty value. DeleteKeys is idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	DeleteKeys(ctx context.Context, keys ...string) error
}
