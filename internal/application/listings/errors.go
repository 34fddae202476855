package listings

import "errors"

var (
	// ErrInvalidCategory means the categoryId did not resolve; nothing was written.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidUser means the userId did not resolve; nothing was written.
	ErrInvalidUser = errors.New("invalid user")

	// ErrListingNotFound is the typed not-found outcome for get/update/delete.
	ErrListingNotFound = errors.New("listing not found")
)
