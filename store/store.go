// Package store defines the durable byte store the cache persists into.
//
// Implementations MUST be byte-for-byte transparent: Read must return exactly
// the same []byte that was previously passed to Write for a locator (no
// prepended/appended metadata, no re-encoding, no mutation). Writes have
// overwrite semantics: the new blob fully replaces any prior one.
//
// A locator is fully owned by one cache instance at a time. Overlapping
// writers race non-deterministically; no coordination is attempted here.
package store

import (
	"context"
	"errors"
)

// ErrNotFound reports that no blob exists under the locator.
var ErrNotFound = errors.New("store: not found")

// Store is a minimal durable byte store keyed by locator.
// Locator selection is the caller's concern; the cache only passes it through.
type Store interface {
	// Read returns the blob under locator. A missing blob is ErrNotFound;
	// anything else is an IO failure.
	Read(ctx context.Context, locator string) ([]byte, error)

	// Write stores the blob under locator, replacing any existing one.
	Write(ctx context.Context, locator string, data []byte) error

	// EnsureContainer creates whatever the locator lives in (directory,
	// keyspace, ...) when the backend has such a notion. No-op otherwise.
	EnsureContainer(ctx context.Context, locator string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
