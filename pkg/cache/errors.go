package cache

import "errors"

// ErrClosed is returned by operations on a cache that has been closed.
var ErrClosed = errors.New("cache closed")
