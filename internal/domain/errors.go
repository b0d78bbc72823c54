package domain

import "errors"

// Sentinel errors for listing operations
var (
	// ErrInvalidMediaKind indicates a kind outside the known catalog kinds
	ErrInvalidMediaKind = errors.New("invalid media kind")

	// ErrInvalidSortMode indicates a sort index outside the kind's sort catalog
	ErrInvalidSortMode = errors.New("invalid sort mode")

	// ErrUnsupportedLimiterKind indicates the kind cannot anchor a limiter
	ErrUnsupportedLimiterKind = errors.New("limiter not supported for media kind")

	// ErrInvalidLimiter indicates a limiter whose payload does not match its kind
	ErrInvalidLimiter = errors.New("invalid limiter")

	// ErrRowNotFound indicates the requested row is not in the loaded row set
	ErrRowNotFound = errors.New("row not found")

	// ErrCatalogAccess indicates the catalog failed to execute a query
	ErrCatalogAccess = errors.New("catalog access failed")

	// ErrStaleQuery indicates a query result was superseded before it arrived
	ErrStaleQuery = errors.New("query superseded")
)
