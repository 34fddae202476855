package listings

import (
	"context"
	"errors"
	"fmt"

	"swapshop-backend/internal/domain"
	"swapshop-backend/internal/infrastructure/audit"
	"swapshop-backend/internal/infrastructure/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the back half of the ingestion pipeline: enrichment, assembly and
// the persistence gateway. Cache and Audit are optional.
type Service struct {
	DB    *gorm.DB
	Cache *cache.ListingCache
	Audit *audit.Store
}

// Input carries the validated fields and image identifiers out of the pipeline.
type Input struct {
	Title       string
	Description string
	Price       float64
	CategoryID  uuid.UUID
	UserID      uuid.UUID
	Location    *domain.Location
	NewImages   []string
	OldImages   []string
}

// enrichment resolves the category and user and computes the seller's current
// listing count. Both lookups run before any write; either failing leaves the
// store untouched.
type enrichment struct {
	category *domain.Category
	user     *domain.User
	count    int64
}

func (s *Service) enrich(ctx context.Context, categoryID, userID uuid.UUID) (*enrichment, error) {
	var category domain.Category
	if err := s.DB.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, fmt.Errorf("resolving category: %w", err)
	}

	var user domain.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidUser
		}
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	// Not transactional with the write that follows: two concurrent requests
	// from the same seller can read the same count. Accepted race.
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("added_by_id = ?", user.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("counting seller listings: %w", err)
	}

	return &enrichment{category: &category, user: &user, count: count}, nil
}

// Create persists a new listing. The seller snapshot anticipates the record
// about to be inserted, so its count is existing count + 1.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Listing, error) {
	enr, err := s.enrich(ctx, in.CategoryID, in.UserID)
	if err != nil {
		return nil, err
	}

	listing := assemble(in, enr.category, enr.user, enr.count+1, false)
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	s.Audit.MarkAttached(ctx, in.NewImages, listing.ID)
	s.Cache.Invalidate(ctx)
	return listing, nil
}

// Update does a full-record replace. The listing being updated is already
// counted, so the seller snapshot takes the existing count with no increment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*domain.Listing, error) {
	enr, err := s.enrich(ctx, in.CategoryID, in.UserID)
	if err != nil {
		return nil, err
	}

	var existing domain.Listing
	if err := s.DB.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("fetching listing: %w", err)
	}

	updated := assemble(in, enr.category, enr.user, enr.count, true)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.DB.WithContext(ctx).Save(updated).Error; err != nil {
		return nil, fmt.Errorf("updating listing: %w", err)
	}

	s.Audit.MarkAttached(ctx, in.NewImages, updated.ID)
	s.Cache.Invalidate(ctx)
	return updated, nil
}

// Get returns the listing or ErrListingNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	return &listing, nil
}

// List returns all listings ordered by creation time descending.
func (s *Service) List(ctx context.Context) ([]domain.Listing, error) {
	if cached, ok := s.Cache.GetAll(ctx); ok {
		return cached, nil
	}
	var listings []domain.Listing
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	s.Cache.SetAll(ctx, listings)
	return listings, nil
}

// Delete removes the listing and returns its pre-removal state, or
// ErrListingNotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	if err := s.DB.WithContext(ctx).Delete(&domain.Listing{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("deleting listing: %w", err)
	}
	s.Cache.Invalidate(ctx)
	return &listing, nil
}
