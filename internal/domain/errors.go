package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied marks store errors caused by missing write/read
	// authorization; the services translate it into the read- or
	// write-side condition below.
	ErrPermissionDenied = errors.New("permission denied")

	// Read-side conditions. The catalog keeps previously loaded data when
	// any of these occur.
	ErrFetchTimeout = errors.New("catalog fetch timed out")
	ErrFetchDenied  = errors.New("catalog fetch denied")
	ErrFetchFailed  = errors.New("catalog fetch failed")

	// Write-side conditions. The editor draft is preserved when these occur.
	ErrSaveDenied = errors.New("save denied")
	ErrSaveFailed = errors.New("save failed")

	ErrCacheMiss = errors.New("cache miss")
)

// ValidationError reports the first field that failed draft validation.
// It is returned, never panicked, so forms can render it inline.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
