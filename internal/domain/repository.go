package domain

import "context"

// ContentExtractor fetches a product page and parses it into a RawExtraction.
// Implementations are vendor-agnostic by default; site-specific variants can
// be added behind the same interface.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (*RawExtraction, error)
}

// InferenceClient sends extracted product fields to an external inference
// capability and returns its structured critique.
type InferenceClient interface {
	Analyze(ctx context.Context, extraction *RawExtraction) (*AnalysisResult, error)
}

// SavedProductRepository persists saved products per owner.
type SavedProductRepository interface {
	// Insert stores a new saved product under its pre-assigned ID.
	Insert(ctx context.Context, saved *SavedProduct) error

	// ListByOwner returns the owner's saved products ordered by SavedAt
	// descending.
	ListByOwner(ctx context.Context, ownerID string) ([]*SavedProduct, error)

	// Delete removes the saved product with the given id if it is owned by
	// requesterID. Returns ErrNotFound if no record exists and ErrNotOwner if
	// it exists under a different owner. The ownership check and the removal
	// are atomic: of two racing deletes, exactly one succeeds.
	Delete(ctx context.Context, id, requesterID string) error
}

// TokenVerifier validates a bearer token and resolves the caller identity.
// Token issuance and refresh are external to this service.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
