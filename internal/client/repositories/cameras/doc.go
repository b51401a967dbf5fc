// Package cameras caches camera configuration records in the local SQLite
// database so the last known list stays available when the camera API is
// unreachable.
//
// The cache is replaced wholesale after every successful remote listing
// (ReplaceAll inside one transaction) and patched after single-record
// writes (Upsert, DeleteByID).
package cameras
