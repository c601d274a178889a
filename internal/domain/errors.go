package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrMovieNotFound indicates the requested movie is not in the local catalog
	ErrMovieNotFound = errors.New("movie not found")

	// ErrServerOffline indicates the catalog server is unreachable
	ErrServerOffline = errors.New("catalog server is unreachable")

	// ErrAuthFailed indicates the server rejected the credentials
	ErrAuthFailed = errors.New("catalog credentials were rejected")

	// ErrNotConfigured indicates no server credentials are available
	ErrNotConfigured = errors.New("not logged in to a catalog server")

	// ErrSyncInProgress indicates a full sync is already running
	ErrSyncInProgress = errors.New("a catalog sync is already in progress")
)
