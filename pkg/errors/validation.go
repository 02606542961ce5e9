package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxSearchLimit is the largest page size accepted by the species search.
const MaxSearchLimit = 30

// ValidateSearchTerm validates a free-text species search term.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only terms
//   - No control characters or null bytes
//   - Maximum length of 100 characters
func ValidateSearchTerm(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return New(ErrCodeInvalidSearch, "search term cannot be empty")
	}

	if len(term) > 100 {
		return New(ErrCodeInvalidSearch, "search term too long (max 100 characters)")
	}

	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSearch, "search term contains invalid control characters")
		}
	}

	return nil
}

// ValidateLimit validates a search page size.
func ValidateLimit(limit int) error {
	if limit < 1 || limit > MaxSearchLimit {
		return New(ErrCodeInvalidLimit, "limit must be between 1 and %d, got %d", MaxSearchLimit, limit)
	}
	return nil
}

// ValidateSpeciesID validates a numeric species identifier.
func ValidateSpeciesID(id int) error {
	if id <= 0 {
		return New(ErrCodeInvalidSpeciesID, "species id must be positive, got %d", id)
	}
	return nil
}

// ParseSpeciesID parses a species identifier as accepted on the command line
// and the HTTP API. Both "1234" and the internal "perenual-1234" form are valid.
func ParseSpeciesID(raw string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "perenual-")
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, New(ErrCodeInvalidSpeciesID, "invalid species id: %q", raw)
	}
	if err := ValidateSpeciesID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
