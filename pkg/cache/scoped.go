package cache

// ScopedKeyer wraps a Keyer with a prefix so several atlases can share one
// backend.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	prod := NewScopedKeyer(NewDefaultKeyer(), "prod:")
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

// RecordsKey generates a prefixed key for record caching.
func (k *ScopedKeyer) RecordsKey(source string) string {
	return k.prefix + k.inner.RecordsKey(source)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(fingerprint string) string {
	return k.prefix + k.inner.LayoutKey(fingerprint)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// ProfileKey generates a prefixed key for profile validation caching.
func (k *ScopedKeyer) ProfileKey(url string) string {
	return k.prefix + k.inner.ProfileKey(url)
}
