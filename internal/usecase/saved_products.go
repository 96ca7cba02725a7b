package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/buybuddy/backend/internal/domain"
)

// SavedProductService owns the save/list/delete path for a user's saved
// products. It assigns store-side identifiers and enforces that the
// repository's ownership decisions are logged before they leave the service.
type SavedProductService struct {
	repo   domain.SavedProductRepository
	ids    IDGenerator
	now    func() time.Time
	logger *slog.Logger
}

// NewSavedProductService creates the service with its repository and
// identifier generator injected. logger may be nil.
func NewSavedProductService(repo domain.SavedProductRepository, ids IDGenerator, logger *slog.Logger) *SavedProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SavedProductService{
		repo:   repo,
		ids:    ids,
		now:    time.Now,
		logger: logger,
	}
}

// Save persists a composed product under the owner's account. Every save
// creates an independent record with its own identifier, distinct from the
// transient product ID; nothing is deduplicated or overwritten.
func (s *SavedProductService) Save(ctx context.Context, product *domain.Product, ownerID string) (*domain.SavedProduct, error) {
	if product == nil {
		return nil, errors.New("product is required")
	}
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}

	saved := &domain.SavedProduct{
		ID:      s.ids.NewID(),
		Product: *product,
		OwnerID: ownerID,
		SavedAt: s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, saved); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	s.logger.Info("product saved", "saved_id", saved.ID, "owner", ownerID)
	return saved, nil
}

// List returns the owner's saved products ordered by save time descending.
func (s *SavedProductService) List(ctx context.Context, ownerID string) ([]*domain.SavedProduct, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}

	products, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return products, nil
}

// Delete removes a saved product if the requester owns it. Ownership
// violations are logged for auditing; the boundary reports them identically
// to a missing record.
func (s *SavedProductService) Delete(ctx context.Context, id, requesterID string) error {
	if id == "" || requesterID == "" {
		return domain.ErrNotFound
	}

	err := s.repo.Delete(ctx, id, requesterID)
	switch {
	case err == nil:
		s.logger.Info("saved product deleted", "saved_id", id, "owner", requesterID)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return err
	case errors.Is(err, domain.ErrNotOwner):
		s.logger.Warn("ownership violation on delete", "saved_id", id, "requester", requesterID)
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
}
