package catalog

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UseCase interface {
	ListProducts(ctx context.Context, criteria *dto.ProductFilterCriteria, sort dto.SortKey) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListFeatured(ctx context.Context) ([]model.Product, error)
	ListBestsellers(ctx context.Context) ([]model.Product, error)
	RelatedProducts(ctx context.Context, id string, limit int) ([]model.Product, error)
	FacetValues(ctx context.Context, facet dto.Facet) ([]string, error)
	Facets(ctx context.Context) (*dto.FacetSet, error)

	// Admin ops
	AdminSearch(ctx context.Context, query string) ([]model.Product, error)
	UpsertProduct(ctx context.Context, input *dto.UpsertProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ImportProducts(ctx context.Context, inputs []dto.UpsertProductInput) (*dto.ImportResult, error)
	Reload(ctx context.Context) error
}
