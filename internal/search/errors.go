package search

import "errors"

// Sentinel errors returned by Find and friends. Callers match them with
// errors.Is; the underlying cause stays reachable through the wrap chain.
var (
	ErrEmptyPattern = errors.New("pattern must not be empty")
	ErrFileNotFound = errors.New("file not found")
	ErrRead         = errors.New("read failed")
	ErrCanceled     = errors.New("search canceled")
)
