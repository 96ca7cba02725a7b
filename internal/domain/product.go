package domain

import "time"

// Price is a decimal amount tagged with its ISO 4217 currency code.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Rating aggregates review data scraped from a product page.
// A page without review markup yields a nil *Rating.
type Rating struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// RawExtraction holds the vendor-agnostic fields parsed from a product page.
// It is scoped to a single pipeline invocation and never persisted.
type RawExtraction struct {
	SourceURL   string   `json:"sourceUrl"`
	Title       string   `json:"title"`
	Price       Price    `json:"price"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
	Rating      *Rating  `json:"rating,omitempty"`
}

// AnalysisResult is the structured critique produced by the inference
// capability. Transient, scoped to a single pipeline invocation.
type AnalysisResult struct {
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Recommendation string   `json:"recommendation"`
}

// Product is the canonical record composed from an extraction and its
// analysis. Immutable once composed; repeated analysis of the same URL
// yields a new Product with a new ID.
type Product struct {
	ID          string         `json:"id"`
	SourceURL   string         `json:"sourceUrl"`
	Title       string         `json:"title"`
	Price       Price          `json:"price"`
	Images      []string       `json:"images"`
	Description string         `json:"description"`
	Rating      *Rating        `json:"rating,omitempty"`
	Analysis    AnalysisResult `json:"analysis"`
	AnalyzedAt  time.Time      `json:"analyzedAt"`
}

// SavedProduct is a Product persisted under a user's account. Its ID is
// assigned by the store and is always distinct from the transient Product ID.
type SavedProduct struct {
	ID      string    `json:"id" bson:"_id"`
	Product Product   `json:"product" bson:"product"`
	OwnerID string    `json:"ownerId" bson:"owner_id"`
	SavedAt time.Time `json:"savedAt" bson:"saved_at"`
}

// AnalyzeRequest is the request body for the analyze endpoint.
type AnalyzeRequest struct {
	URL string `json:"url" binding:"required"`
}
