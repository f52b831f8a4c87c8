package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultRelatedLimit = 3

type catalogUseCase struct {
	repo   catalog.Repository
	index  catalog.SearchIndex
	logger logger.ZapLogger
	now    func() time.Time

	// writeMu serializes admin writes across the slug check, the save and the snapshot swap.
	writeMu sync.Mutex

	mu       sync.RWMutex
	products []model.Product
}

// NewCatalogUseCase loads the dataset from repo. index may be nil, in which case search runs
// in memory only.
func NewCatalogUseCase(ctx context.Context, repo catalog.Repository, index catalog.SearchIndex, log logger.ZapLogger) (catalog.UseCase, error) {
	uc := &catalogUseCase{
		repo:   repo,
		index:  index,
		logger: log,
		now:    time.Now,
	}
	if err := uc.Reload(ctx); err != nil {
		return nil, err
	}
	return uc, nil
}

func (uc *catalogUseCase) Reload(ctx context.Context) error {
	products, err := uc.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	uc.mu.Lock()
	uc.products = products
	uc.mu.Unlock()

	uc.logger.Info("Catalog loaded", zap.Int("products", len(products)))
	uc.syncIndex(ctx, products)
	return nil
}

func (uc *catalogUseCase) snapshot() []model.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.products
}

func (uc *catalogUseCase) syncIndex(ctx context.Context, products []model.Product) {
	if uc.index == nil {
		return
	}
	if err := uc.index.IndexProducts(ctx, products); err != nil {
		uc.logger.Error("failed to index products", zap.Error(err))
	}
}

func (uc *catalogUseCase) ListProducts(ctx context.Context, criteria *dto.ProductFilterCriteria, sort dto.SortKey) ([]model.Product, error) {
	products := uc.snapshot()

	search := MatchesSearch
	if criteria != nil && criteria.Search != "" && uc.index != nil {
		ids, err := uc.index.MatchIDs(ctx, criteria.Search)
		if err == nil {
			hits := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				hits[id] = struct{}{}
			}
			search = func(p *model.Product, _ string) bool {
				_, ok := hits[p.ID]
				return ok
			}
		} else {
			uc.logger.Error("index search failed, falling back to in-memory search", zap.Error(err))
		}
	}

	return Sort(filter(products, criteria, search), sort), nil
}

func (uc *catalogUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.find(func(p *model.Product) bool { return p.ID == id })
}

func (uc *catalogUseCase) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return uc.find(func(p *model.Product) bool { return p.Slug == slug })
}

func (uc *catalogUseCase) find(pred func(p *model.Product) bool) (*model.Product, error) {
	products := uc.snapshot()
	for i := range products {
		if pred(&products[i]) {
			p := products[i]
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (uc *catalogUseCase) ListFeatured(ctx context.Context) ([]model.Product, error) {
	return uc.collect(func(p *model.Product) bool { return p.Featured }), nil
}

func (uc *catalogUseCase) ListBestsellers(ctx context.Context) ([]model.Product, error) {
	return uc.collect(func(p *model.Product) bool { return p.Bestseller }), nil
}

func (uc *catalogUseCase) AdminSearch(ctx context.Context, query string) ([]model.Product, error) {
	if query == "" {
		return slices.Clone(uc.snapshot()), nil
	}
	q := strings.ToLower(query)
	return uc.collect(func(p *model.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(p.ID, q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	}), nil
}

func (uc *catalogUseCase) collect(pred func(p *model.Product) bool) []model.Product {
	products := uc.snapshot()
	out := []model.Product{}
	for i := range products {
		if pred(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func (uc *catalogUseCase) RelatedProducts(ctx context.Context, id string, limit int) ([]model.Product, error) {
	current, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	return Related(uc.snapshot(), current, limit), nil
}

func (uc *catalogUseCase) FacetValues(ctx context.Context, facet dto.Facet) ([]string, error) {
	switch facet {
	case dto.FacetCategory, dto.FacetMaterial, dto.FacetStyle, dto.FacetColor:
	default:
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownFacet, facet)
	}
	return FacetValues(uc.snapshot(), facet), nil
}

func (uc *catalogUseCase) Facets(ctx context.Context) (*dto.FacetSet, error) {
	products := uc.snapshot()
	return &dto.FacetSet{
		Categories: FacetValues(products, dto.FacetCategory),
		Materials:  FacetValues(products, dto.FacetMaterial),
		Styles:     FacetValues(products, dto.FacetStyle),
		Colors:     FacetValues(products, dto.FacetColor),
	}, nil
}

func (uc *catalogUseCase) UpsertProduct(ctx context.Context, input *dto.UpsertProductInput) (*model.Product, error) {
	uc.writeMu.Lock()
	defer uc.writeMu.Unlock()

	p, _, err := uc.upsert(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := uc.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// upsert validates and saves one product without reloading the snapshot. The bool reports
// whether an existing product was replaced. Callers hold writeMu.
func (uc *catalogUseCase) upsert(ctx context.Context, input *dto.UpsertProductInput) (*model.Product, bool, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, false, fmt.Errorf("%w: name is required", catalog.ErrInvalidProduct)
	}
	if input.Price < 0 {
		return nil, false, fmt.Errorf("%w: price must not be negative", catalog.ErrInvalidProduct)
	}
	if len(input.Images) == 0 {
		return nil, false, catalog.ErrMissingImage
	}

	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Name)
	}

	products := uc.snapshot()
	var existing *model.Product
	for i := range products {
		p := &products[i]
		if input.ID != "" && p.ID == input.ID {
			existing = p
			continue
		}
		if p.Slug == slug {
			return nil, false, fmt.Errorf("%w: %s", catalog.ErrDuplicateSlug, slug)
		}
	}

	now := uc.now().UTC()
	base := model.BaseModel{ID: input.ID, CreatedAt: now, UpdatedAt: now}
	if existing != nil {
		base.CreatedAt = existing.CreatedAt
	}
	if base.ID == "" {
		base.ID = uuid.New().String()
	}

	p := &model.Product{
		BaseModel:        base,
		Slug:             slug,
		Name:             input.Name,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		CompareAtPrice:   input.CompareAtPrice,
		Category:         input.Category,
		Tags:             input.Tags,
		Colors:           input.Colors,
		Style:            input.Style,
		Material:         input.Material,
		Dimensions:       input.Dimensions,
		Coverage:         input.Coverage,
		Images:           ensureMainImage(input.Images),
		Variants:         input.Variants,
		Featured:         input.Featured,
		Bestseller:       input.Bestseller,
		Ratings:          input.Ratings,
	}
	if existing != nil {
		p.Reviews = existing.Reviews
	}

	if err := uc.repo.Save(ctx, p); err != nil {
		return nil, false, err
	}

	// Keep the snapshot current so later rows of an import see this slug.
	uc.mu.Lock()
	next := slices.Clone(uc.products)
	if idx := slices.IndexFunc(next, func(q model.Product) bool { return q.ID == p.ID }); idx >= 0 {
		next[idx] = *p
	} else {
		next = append(next, *p)
	}
	uc.products = next
	uc.mu.Unlock()

	return p, existing != nil, nil
}

func (uc *catalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	uc.writeMu.Lock()
	defer uc.writeMu.Unlock()

	if _, err := uc.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if uc.index != nil {
		if err := uc.index.DeleteProduct(ctx, id); err != nil {
			uc.logger.Error("failed to delete product from index", zap.String("product_id", id), zap.Error(err))
		}
	}
	return uc.Reload(ctx)
}

func (uc *catalogUseCase) ImportProducts(ctx context.Context, inputs []dto.UpsertProductInput) (*dto.ImportResult, error) {
	uc.writeMu.Lock()
	defer uc.writeMu.Unlock()

	result := &dto.ImportResult{}
	for i := range inputs {
		_, updated, err := uc.upsert(ctx, &inputs[i])
		switch {
		case err == nil && updated:
			result.Updated++
		case err == nil:
			result.Created++
		case errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, catalog.ErrMissingImage), errors.Is(err, catalog.ErrDuplicateSlug):
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", inputs[i].Name, err))
		default:
			return nil, err
		}
	}

	uc.logger.Info("Products imported",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	if err := uc.Reload(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its words with dashes.
func Slugify(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed-product"
	}
	return s
}

func ensureMainImage(images []model.ProductImage) []model.ProductImage {
	out := slices.Clone(images)
	if !slices.ContainsFunc(out, func(img model.ProductImage) bool { return img.Main }) && len(out) > 0 {
		out[0].Main = true
	}
	return out
}
