package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSlug   = errors.New("slug already exists")
	ErrMissingImage    = errors.New("product must have at least one image")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrUnknownFacet    = errors.New("unknown facet")
)
