package cache

// ScopedKeyer wraps a Keyer with a prefix so several tools, or several
// versions of one, can share a Redis or Mongo backend without collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "meshsurgery:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MeshKey generates a prefixed mesh key.
func (k *ScopedKeyer) MeshKey(shape string, opts MeshKeyOpts) string {
	return k.prefix + k.inner.MeshKey(shape, opts)
}
