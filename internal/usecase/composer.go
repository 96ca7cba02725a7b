package usecase

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/buybuddy/backend/internal/domain"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces unique identifiers for products and saved products.
type IDGenerator interface {
	NewID() string
}

// ULIDGenerator generates ULIDs with monotonic entropy, so two IDs minted at
// the same millisecond never collide across concurrent invocations.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a ULIDGenerator backed by crypto/rand.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewID returns a fresh ULID string.
func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}

// Composer merges an extraction and its analysis into a canonical Product.
type Composer struct {
	ids IDGenerator
	now func() time.Time
}

// NewComposer creates a composer with the given identifier generator.
func NewComposer(ids IDGenerator) *Composer {
	return &Composer{
		ids: ids,
		now: time.Now,
	}
}

// Compose copies all extraction fields verbatim, attaches the analysis, and
// stamps a fresh ID and analyzedAt timestamp. Deterministic apart from the ID
// and the timestamp; no error path.
func (c *Composer) Compose(extraction *domain.RawExtraction, analysis *domain.AnalysisResult, sourceURL string) *domain.Product {
	images := make([]string, len(extraction.Images))
	copy(images, extraction.Images)

	var rating *domain.Rating
	if extraction.Rating != nil {
		r := *extraction.Rating
		rating = &r
	}

	return &domain.Product{
		ID:          c.ids.NewID(),
		SourceURL:   sourceURL,
		Title:       extraction.Title,
		Price:       extraction.Price,
		Images:      images,
		Description: extraction.Description,
		Rating:      rating,
		Analysis:    *analysis,
		AnalyzedAt:  c.now().UTC(),
	}
}
