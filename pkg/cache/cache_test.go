package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/meshsurgery/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// testCacheContract exercises the behaviour shared by all storing backends.
func testCacheContract(t *testing.T, c Cache, prefix string) {
	t.Helper()
	ctx := context.Background()
	key := prefix + "mesh:contract"

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %t, err %v", hit, err)
	}

	want := []byte(`{"points":[],"polygons":[]}`)
	if err := c.Set(ctx, key, want, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %t, err %v", hit, err)
	}
	if string(got) != string(want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}

	if cl, ok := c.(Clearer); ok {
		for _, k := range []string{"a", "b", "c"} {
			if err := c.Set(ctx, prefix+k, []byte(k), 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
		}
		n, err := cl.Clear(ctx)
		if err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if n != 3 {
			t.Errorf("Clear removed %d entries, want 3", n)
		}
		if _, hit, _ := c.Get(ctx, prefix+"a"); hit {
			t.Error("entry still present after Clear")
		}
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	testCacheContract(t, c, "")
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned as hit")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %t, err %v, want clean miss", hit, err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("MESHSURGERY_REDIS_URL")
	if url == "" {
		t.Skip("MESHSURGERY_REDIS_URL not set")
	}
	ns := "meshsurgery-test:" + t.Name() + ":"
	c, err := NewRedisCache(context.Background(), url, ns)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	testCacheContract(t, c, ns)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("MESHSURGERY_MONGO_URI")
	if uri == "" {
		t.Skip("MESHSURGERY_MONGO_URI not set")
	}
	ns := "meshsurgery-test:" + t.Name() + ":"
	c, err := NewMongoCache(context.Background(), uri, "meshsurgery_test", "cache", ns)
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	testCacheContract(t, c, ns)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{"default is file", Config{Dir: dir}, "*cache.FileCache", nil},
		{"file", Config{Backend: BackendFile, Dir: dir}, "*cache.FileCache", nil},
		{"none", Config{Backend: BackendNone}, "*cache.NullCache", nil},
		{"unknown", Config{Backend: "memcached"}, "", ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			switch c.(type) {
			case *FileCache:
				if tt.want != "*cache.FileCache" {
					t.Errorf("Open returned FileCache, want %s", tt.want)
				}
			case *NullCache:
				if tt.want != "*cache.NullCache" {
					t.Errorf("Open returned NullCache, want %s", tt.want)
				}
			default:
				t.Errorf("Open returned %T", c)
			}
		})
	}

	for _, cfg := range []Config{
		{Backend: BackendFile},
		{Backend: BackendRedis},
		{Backend: BackendMongo},
	} {
		if _, err := Open(ctx, cfg); err == nil {
			t.Errorf("Open(%+v) succeeded without a location", cfg)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets, bytes int
}

func (h *countingHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string) { h.misses++ }
func (h *countingHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.sets++
	h.bytes += size
}

func TestInstrumented(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc, "mesh")

	_, _, _ = c.Get(ctx, "k")
	_ = c.Set(ctx, "k", []byte("12345"), 0)
	_, _, _ = c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 || hooks.bytes != 5 {
		t.Errorf("hooks = %+v, want 1 hit, 1 miss, 1 set of 5 bytes", *hooks)
	}
	if n, err := c.Clear(ctx); err != nil || n != 1 {
		t.Errorf("Clear = %d, %v, want 1, nil", n, err)
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"hello", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}
	for _, tt := range tests {
		if got := Hash([]byte(tt.data)); got != tt.want {
			t.Errorf("Hash(%q) = %s, want %s", tt.data, got, tt.want)
		}
	}
}

func TestMeshKeySeparatesComponents(t *testing.T) {
	// An input hash only matters for soup files, and a soup edit must
	// change the key.
	a := meshKey("file", MeshKeyOpts{Input: Hash([]byte(`{"points":[]}`))})
	b := meshKey("file", MeshKeyOpts{Input: Hash([]byte(`{"points": []}`))})
	if a == b {
		t.Error("different soup contents share a key")
	}
	if meshKey("grid", MeshKeyOpts{}) == meshKey("grid", MeshKeyOpts{Resolution: 1}) {
		t.Error("resolution is not part of the key")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	k1 := k.MeshKey("sphere", MeshKeyOpts{Resolution: 32, Radius: 1})
	k2 := k.MeshKey("sphere", MeshKeyOpts{Resolution: 64, Radius: 1})
	k3 := k.MeshKey("box", MeshKeyOpts{Resolution: 32, Radius: 1})
	if k1 == k2 || k1 == k3 {
		t.Error("Different shapes or options should produce different keys")
	}
	if k1 != k.MeshKey("sphere", MeshKeyOpts{Resolution: 32, Radius: 1}) {
		t.Error("MeshKey should be deterministic")
	}
	if len(k1) != len("mesh:")+64 || k1[:5] != "mesh:" {
		t.Errorf("MeshKey unexpected: %s", k1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "meshsurgery:")
	key := scoped.MeshKey("grid", MeshKeyOpts{Resolution: 4})
	want := "meshsurgery:" + NewDefaultKeyer().MeshKey("grid", MeshKeyOpts{Resolution: 4})
	if key != want {
		t.Errorf("ScopedKeyer MeshKey = %s, want %s", key, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.MeshKey("fan", MeshKeyOpts{})
	if key[:12] != "prefix:mesh:" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}

	// Error message is preserved
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrUnknownBackend) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrUnknownBackend
	})
	if err != ErrUnknownBackend {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("err = %v after %d calls, want ErrUnavailable after 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
