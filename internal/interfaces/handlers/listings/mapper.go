package listings

import (
	"time"

	"swapshop-backend/internal/domain"

	"github.com/google/uuid"
)

// Resource is the reshaped wire form of a listing for list/fetch responses:
// image identifiers become URLs and the seller snapshot drops internal fields.
type Resource struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Price       float64                 `json:"price"`
	Images      []ImageResource         `json:"images"`
	Category    domain.CategorySnapshot `json:"category"`
	AddedBy     SellerResource          `json:"addedBy"`
	Location    *domain.Location        `json:"location,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// ImageResource carries the derived variant URLs for one stored image.
type ImageResource struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	FileName     string `json:"fileName"`
}

type SellerResource struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Images       string    `json:"images"`
	ListingCount int64     `json:"listingCount"`
}

func mapListing(l *domain.Listing, baseURL string) Resource {
	images := make([]ImageResource, 0, len(l.Images))
	for _, ref := range l.Images {
		images = append(images, ImageResource{
			URL:          baseURL + ref.FileName + "_full.jpg",
			ThumbnailURL: baseURL + ref.FileName + "_thumb.jpg",
			FileName:     ref.FileName,
		})
	}
	return Resource{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Images:      images,
		Category:    l.Category,
		AddedBy: SellerResource{
			ID:           l.AddedBy.ID,
			Name:         l.AddedBy.Name,
			Email:        l.AddedBy.Email,
			Images:       l.AddedBy.Image,
			ListingCount: l.AddedBy.ListingCount,
		},
		Location:  l.Location,
		CreatedAt: l.CreatedAt,
	}
}
