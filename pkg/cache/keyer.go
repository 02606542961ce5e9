package cache

import (
	"fmt"
	"strings"
)

// Keyer builds cache keys from logical request parameters.
type Keyer interface {
	// SearchKey identifies a species search by normalized term and page size.
	SearchKey(namespace, term string, limit int) string

	// SpeciesKey identifies a species detail lookup.
	SpeciesKey(namespace string, id int) string
}

// DefaultKeyer produces human-readable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default key builder.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SearchKey lower-cases and collapses whitespace in term, so "Sweet  Basil"
// and "sweet basil" share a cache entry.
func (DefaultKeyer) SearchKey(namespace, term string, limit int) string {
	term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
	return fmt.Sprintf("search:%s:%s:%d", namespace, term, limit)
}

func (DefaultKeyer) SpeciesKey(namespace string, id int) string {
	return fmt.Sprintf("species:%s:%d", namespace, id)
}
