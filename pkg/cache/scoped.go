package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or several
// API keys with different quotas) can share one Redis without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// SearchKey generates a prefixed key for species searches.
func (k *ScopedKeyer) SearchKey(namespace, term string, limit int) string {
	return k.prefix + k.inner.SearchKey(namespace, term, limit)
}

// SpeciesKey generates a prefixed key for species details.
func (k *ScopedKeyer) SpeciesKey(namespace string, id int) string {
	return k.prefix + k.inner.SpeciesKey(namespace, id)
}

// UpstreamScope derives a key prefix from an upstream base URL, so entries
// fetched from a mock or staging API never answer production lookups.
func UpstreamScope(baseURL string) string {
	return Hash([]byte(baseURL))[:12] + ":"
}
