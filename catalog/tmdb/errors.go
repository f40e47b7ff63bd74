package tmdb

import "errors"

var (
	// ErrAPIKeyRequired is returned when a client is created without credentials.
	ErrAPIKeyRequired = errors.New("catalog API key required")
)
