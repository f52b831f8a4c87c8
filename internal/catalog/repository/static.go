package repository

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed seed/products.yaml
var seedProducts []byte

// StaticRepository serves a dataset held in memory. Admin edits live until restart.
type StaticRepository struct {
	mu       sync.RWMutex
	products []model.Product
}

// NewStaticRepository loads the dataset from a YAML file, or the embedded seed when path is empty.
func NewStaticRepository(path string) (*StaticRepository, error) {
	data := seedProducts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read product dataset: %w", err)
		}
		data = b
	}

	products, err := ParseDataset(data)
	if err != nil {
		return nil, err
	}
	return &StaticRepository{products: products}, nil
}

// NewStaticRepositoryFrom wraps an already built dataset.
func NewStaticRepositoryFrom(products []model.Product) *StaticRepository {
	return &StaticRepository{products: slices.Clone(products)}
}

// ParseDataset decodes a YAML product list and checks the catalog invariants.
func ParseDataset(data []byte) ([]model.Product, error) {
	var products []model.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse product dataset: %w", err)
	}

	slugs := make(map[string]string, len(products))
	for _, p := range products {
		if len(p.Images) == 0 {
			return nil, fmt.Errorf("product %s has no images", p.ID)
		}
		if other, ok := slugs[p.Slug]; ok {
			return nil, fmt.Errorf("products %s and %s share slug %q", other, p.ID, p.Slug)
		}
		slugs[p.Slug] = p.ID
	}
	return products, nil
}

func (r *StaticRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.products), nil
}

func (r *StaticRepository) Save(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.products {
		if r.products[i].ID == p.ID {
			r.products[i] = *p
			return nil
		}
	}
	r.products = append(r.products, *p)
	return nil
}

func (r *StaticRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = slices.DeleteFunc(r.products, func(p model.Product) bool { return p.ID == id })
	return nil
}
