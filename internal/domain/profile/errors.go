package profile

import "errors"

// ErrNotFound means the user has no row in the analytics users table.
// Callers skip enrichment for unknown users instead of retrying.
var ErrNotFound = errors.New("user profile not found")
