// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about mesh builds, collapses, and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the mesh packages stay
// free of any observability framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMeshHooks(&myMeshHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Mesh().OnBuildStart(ctx, shape)
//	// ... build mesh ...
//	observability.Mesh().OnBuildComplete(ctx, shape, vertices, faces, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Mesh Hooks
// =============================================================================

// MeshHooks receives events from mesh construction and surgery.
type MeshHooks interface {
	// Build events
	OnBuildStart(ctx context.Context, shape string)
	OnBuildComplete(ctx context.Context, shape string, vertices, faces int, duration time.Duration, err error)

	// OnCollapse records one edge collapse attempt. class is the topology
	// class name, or empty when classification failed.
	OnCollapse(ctx context.Context, class string, err error)

	// OnValidate records a full-mesh validation pass.
	OnValidate(ctx context.Context, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMeshHooks is a no-op implementation of MeshHooks.
type NoopMeshHooks struct{}

func (NoopMeshHooks) OnBuildStart(context.Context, string) {}
func (NoopMeshHooks) OnBuildComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopMeshHooks) OnCollapse(context.Context, string, error)        {}
func (NoopMeshHooks) OnValidate(context.Context, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	meshHooks  MeshHooks  = NoopMeshHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetMeshHooks registers custom mesh hooks.
// This should be called once at application startup before any mesh operations.
func SetMeshHooks(h MeshHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		meshHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Mesh returns the registered mesh hooks.
func Mesh() MeshHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return meshHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	meshHooks = NoopMeshHooks{}
	cacheHooks = NoopCacheHooks{}
}
