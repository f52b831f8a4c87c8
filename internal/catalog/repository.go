package catalog

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

// Repository supplies the product dataset and persists admin edits to it.
type Repository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	Save(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
}

// SearchIndex answers free-text search with the IDs of matching products.
type SearchIndex interface {
	IndexProducts(ctx context.Context, products []model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	MatchIDs(ctx context.Context, query string) ([]string, error)
}
