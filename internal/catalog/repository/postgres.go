package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id                TEXT PRIMARY KEY,
    slug              TEXT NOT NULL UNIQUE,
    name              TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    short_description TEXT NOT NULL DEFAULT '',
    price             DOUBLE PRECISION NOT NULL,
    compare_at_price  DOUBLE PRECISION,
    category          TEXT NOT NULL DEFAULT '',
    tags              JSONB NOT NULL DEFAULT '[]',
    colors            JSONB NOT NULL DEFAULT '[]',
    style             TEXT NOT NULL DEFAULT '',
    material          TEXT NOT NULL DEFAULT '',
    dimensions        TEXT NOT NULL DEFAULT '',
    coverage          TEXT NOT NULL DEFAULT '',
    images            JSONB NOT NULL DEFAULT '[]',
    variants          JSONB NOT NULL DEFAULT '[]',
    featured          BOOLEAN NOT NULL DEFAULT FALSE,
    bestseller        BOOLEAN NOT NULL DEFAULT FALSE,
    ratings           DOUBLE PRECISION NOT NULL DEFAULT 0,
    reviews           JSONB NOT NULL DEFAULT '[]',
    position          BIGSERIAL,
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL
)`

// productRow is the table shape; list columns are stored as JSONB.
type productRow struct {
	model.Product
	TagsJSON     types.JSONText `db:"tags"`
	ColorsJSON   types.JSONText `db:"colors"`
	ImagesJSON   types.JSONText `db:"images"`
	VariantsJSON types.JSONText `db:"variants"`
	ReviewsJSON  types.JSONText `db:"reviews"`
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var rows []productRow
	query := `
        SELECT id, slug, name, description, short_description, price, compare_at_price, category,
               tags, colors, style, material, dimensions, coverage, images, variants,
               featured, bestseller, ratings, reviews, created_at, updated_at
        FROM products
        ORDER BY position
    `
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("decode product %s: %w", row.ID, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *PGRepository) Save(ctx context.Context, p *model.Product) error {
	row, err := newProductRow(p)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO products (
            id, slug, name, description, short_description, price, compare_at_price, category,
            tags, colors, style, material, dimensions, coverage, images, variants,
            featured, bestseller, ratings, reviews, created_at, updated_at
        )
        VALUES (
            :id, :slug, :name, :description, :short_description, :price, :compare_at_price, :category,
            :tags, :colors, :style, :material, :dimensions, :coverage, :images, :variants,
            :featured, :bestseller, :ratings, :reviews, :created_at, :updated_at
        )
        ON CONFLICT (id) DO UPDATE SET
            slug = EXCLUDED.slug,
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            short_description = EXCLUDED.short_description,
            price = EXCLUDED.price,
            compare_at_price = EXCLUDED.compare_at_price,
            category = EXCLUDED.category,
            tags = EXCLUDED.tags,
            colors = EXCLUDED.colors,
            style = EXCLUDED.style,
            material = EXCLUDED.material,
            dimensions = EXCLUDED.dimensions,
            coverage = EXCLUDED.coverage,
            images = EXCLUDED.images,
            variants = EXCLUDED.variants,
            featured = EXCLUDED.featured,
            bestseller = EXCLUDED.bestseller,
            ratings = EXCLUDED.ratings,
            reviews = EXCLUDED.reviews,
            updated_at = EXCLUDED.updated_at
    `
	_, err = r.DB.NamedExecContext(ctx, query, row)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

func newProductRow(p *model.Product) (*productRow, error) {
	row := &productRow{Product: *p}
	fields := []struct {
		dst *types.JSONText
		src any
	}{
		{&row.TagsJSON, nonNil(p.Tags)},
		{&row.ColorsJSON, nonNil(p.Colors)},
		{&row.ImagesJSON, nonNil(p.Images)},
		{&row.VariantsJSON, nonNil(p.Variants)},
		{&row.ReviewsJSON, nonNil(p.Reviews)},
	}
	for _, f := range fields {
		b, err := json.Marshal(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = b
	}
	return row, nil
}

func (row *productRow) toModel() (model.Product, error) {
	p := row.Product
	fields := []struct {
		src types.JSONText
		dst any
	}{
		{row.TagsJSON, &p.Tags},
		{row.ColorsJSON, &p.Colors},
		{row.ImagesJSON, &p.Images},
		{row.VariantsJSON, &p.Variants},
		{row.ReviewsJSON, &p.Reviews},
	}
	for _, f := range fields {
		if len(f.src) == 0 {
			continue
		}
		if err := f.src.Unmarshal(f.dst); err != nil {
			return model.Product{}, err
		}
	}
	return p, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
