// Package cache provides pluggable byte caches for generated meshes.
//
// A [Cache] stores opaque values under string keys with an optional TTL.
// Backends:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several machines
//   - [MongoCache]: documents in a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// Keys are derived by a [Keyer] so that every option that changes the cached
// value also changes the key. [Open] selects a backend from a [Config].
package cache

import (
	"context"
	"time"
)

// TTLs for cached values.
const (
	// TTLMesh is how long a generated mesh snapshot stays cached.
	// Generation is deterministic, so the TTL only bounds disk usage.
	TTLMesh = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value cache.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer derives cache keys.
type Keyer interface {
	// MeshKey returns the key of a generated mesh snapshot.
	MeshKey(shape string, opts MeshKeyOpts) string
}

// MeshKeyOpts lists the generator options that affect a mesh snapshot.
type MeshKeyOpts struct {
	Resolution int     `json:"resolution"`
	Radius     float64 `json:"radius"`
	// Input is the content hash of a soup file, for shape "file".
	Input string `json:"input,omitempty"`
}

// keyVersion is bumped when the snapshot format changes.
const keyVersion = "v1"

// DefaultKeyer produces keys of the form "mesh:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MeshKey hashes the shape name and options.
func (DefaultKeyer) MeshKey(shape string, opts MeshKeyOpts) string {
	return meshKey(shape, opts)
}

var _ Keyer = DefaultKeyer{}
