package domain

import "errors"

var (
	// ErrInvalidURL is returned when the submitted URL is empty, malformed,
	// or not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid product URL")

	// ErrExtractionFailed is returned when a page yields neither a title nor
	// a price.
	ErrExtractionFailed = errors.New("could not extract product information")

	// ErrPageBlocked is returned when the target site refuses the fetch
	// (HTTP 403/429).
	ErrPageBlocked = errors.New("product page blocked the request")

	// ErrExtractionTimeout is returned when the page fetch exceeds its
	// deadline.
	ErrExtractionTimeout = errors.New("product page fetch timed out")

	// ErrAnalysisUnavailable is returned when the inference capability fails
	// or returns a semantically empty critique.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")

	// ErrAnalysisTimeout is returned when the inference call exceeds its
	// deadline.
	ErrAnalysisTimeout = errors.New("analysis timed out")

	// ErrNotFound is returned when no saved product exists with the given id.
	ErrNotFound = errors.New("saved product not found")

	// ErrNotOwner is returned when a saved product exists but belongs to a
	// different user. Boundaries must report it identically to ErrNotFound.
	ErrNotOwner = errors.New("saved product owned by another user")

	// ErrPersistenceFailed is returned when the saved product store fails.
	ErrPersistenceFailed = errors.New("saved product store failure")

	// ErrUnauthenticated is returned when the bearer token is missing or
	// fails verification.
	ErrUnauthenticated = errors.New("invalid or missing credentials")
)
