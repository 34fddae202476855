package listings

import "swapshop-backend/internal/domain"

// assemble merges validated fields, the frozen enrichment snapshots, the
// parsed location and the image identifiers into one record.
//
// On creation the image list is exactly the newly transformed uploads. On
// update, newly transformed uploads come first, followed by the old images the
// caller chose to retain; an update with neither yields an empty list. No
// deduplication is performed.
func assemble(in Input, category *domain.Category, user *domain.User, listingCount int64, update bool) *domain.Listing {
	names := in.NewImages
	if update && len(in.OldImages) > 0 {
		names = append(append([]string{}, in.NewImages...), in.OldImages...)
	}
	images := make(domain.ImageRefs, 0, len(names))
	for _, n := range names {
		images = append(images, domain.ImageRef{FileName: n})
	}

	return &domain.Listing{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    category.Snapshot(),
		AddedByID:   user.ID,
		AddedBy:     user.Snapshot(listingCount),
		Images:      images,
		Location:    in.Location,
	}
}
