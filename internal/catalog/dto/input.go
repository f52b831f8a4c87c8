package dto

import "github.com/fekuna/omnipos-storefront-service/internal/model"

// UpsertProductInput replaces the product with ID, or creates one when ID is empty or unknown.
type UpsertProductInput struct {
	ID               string                 `json:"id,omitempty"`
	Slug             string                 `json:"slug,omitempty"`
	Name             string                 `json:"name,omitempty"`
	Description      string                 `json:"description,omitempty"`
	ShortDescription string                 `json:"shortDescription,omitempty"`
	Price            float64                `json:"price,omitempty"`
	CompareAtPrice   *float64               `json:"compareAtPrice,omitempty"`
	Category         string                 `json:"category,omitempty"`
	Tags             []string               `json:"tags,omitempty"`
	Colors           []string               `json:"colors,omitempty"`
	Style            string                 `json:"style,omitempty"`
	Material         string                 `json:"material,omitempty"`
	Dimensions       string                 `json:"dimensions,omitempty"`
	Coverage         string                 `json:"coverage,omitempty"`
	Images           []model.ProductImage   `json:"images,omitempty"`
	Variants         []model.ProductVariant `json:"variants,omitempty"`
	Featured         bool                   `json:"featured,omitempty"`
	Bestseller       bool                   `json:"bestseller,omitempty"`
	Ratings          float64                `json:"ratings,omitempty"`
}

type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
