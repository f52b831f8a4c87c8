package usecase

import (
	"slices"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type searchFunc func(p *model.Product, query string) bool

// Filter returns the products satisfying every constraint present in c, in input order.
func Filter(products []model.Product, c *dto.ProductFilterCriteria) []model.Product {
	return filter(products, c, MatchesSearch)
}

func filter(products []model.Product, c *dto.ProductFilterCriteria, search searchFunc) []model.Product {
	out := make([]model.Product, 0, len(products))
	for i := range products {
		if matches(&products[i], c, search) {
			out = append(out, products[i])
		}
	}
	return out
}

func matches(p *model.Product, c *dto.ProductFilterCriteria, search searchFunc) bool {
	if c == nil {
		return true
	}
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	if len(c.Colors) > 0 && !overlaps(p.Colors, c.Colors) {
		return false
	}
	if len(c.Styles) > 0 && !slices.Contains(c.Styles, p.Style) {
		return false
	}
	if len(c.Materials) > 0 && !slices.Contains(c.Materials, p.Material) {
		return false
	}
	if c.Search != "" && !search(p, c.Search) {
		return false
	}
	return true
}

// MatchesSearch reports whether query occurs, ignoring case, in the name, short description,
// description, category or any tag of p.
func MatchesSearch(p *model.Product, query string) bool {
	q := strings.ToLower(query)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	if contains(p.Name) || contains(p.ShortDescription) || contains(p.Description) || contains(p.Category) {
		return true
	}
	return slices.ContainsFunc(p.Tags, contains)
}

func overlaps(values, wanted []string) bool {
	for _, v := range values {
		if slices.Contains(wanted, v) {
			return true
		}
	}
	return false
}

// Sort returns a stably ordered copy of products. Ties keep their input order.
func Sort(products []model.Product, key dto.SortKey) []model.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []model.Product{}
	}

	var cmp func(a, b model.Product) int
	switch key {
	case dto.SortPriceAsc:
		cmp = func(a, b model.Product) int { return compareFloat(a.Price, b.Price) }
	case dto.SortPriceDesc:
		cmp = func(a, b model.Product) int { return compareFloat(b.Price, a.Price) }
	case dto.SortNewest:
		cmp = func(a, b model.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case dto.SortFeatured:
		cmp = func(a, b model.Product) int { return compareFlag(a.Featured, b.Featured) }
	case dto.SortBestseller:
		cmp = func(a, b model.Product) int { return compareFlag(a.Bestseller, b.Bestseller) }
	default:
		return out
	}

	slices.SortStableFunc(out, cmp)
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareFlag orders true before false.
func compareFlag(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	}
	return 1
}

// FacetValues lists the distinct values of one facet in order of first occurrence.
func FacetValues(products []model.Product, facet dto.Facet) []string {
	seen := make(map[string]struct{})
	values := []string{}
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	for i := range products {
		p := &products[i]
		switch facet {
		case dto.FacetCategory:
			add(p.Category)
		case dto.FacetMaterial:
			add(p.Material)
		case dto.FacetStyle:
			add(p.Style)
		case dto.FacetColor:
			for _, c := range p.Colors {
				add(c)
			}
		}
	}
	return values
}

// Related returns up to limit products other than current that share its category or a tag.
func Related(products []model.Product, current *model.Product, limit int) []model.Product {
	out := []model.Product{}
	if current == nil || limit <= 0 {
		return out
	}
	for i := range products {
		p := &products[i]
		if p.ID == current.ID {
			continue
		}
		if p.Category == current.Category || overlaps(p.Tags, current.Tags) {
			out = append(out, *p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
