package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects or server
// instances can share one backend without colliding.
//
// Example usage:
//
//	// Keys of the project served at /shows/spring
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "shows/spring:")
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

// SceneKey generates a prefixed scene key.
func (k *ScopedKeyer) SceneKey(projectHash string, scene int, opts RenderKeyOpts) string {
	return k.prefix + k.inner.SceneKey(projectHash, scene, opts)
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(projectHash string, from, to, frame int, opts RenderKeyOpts) string {
	return k.prefix + k.inner.FrameKey(projectHash, from, to, frame, opts)
}
