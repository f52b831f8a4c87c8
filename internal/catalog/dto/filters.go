package dto

import (
	"fmt"
	"strings"
)

// ProductFilterCriteria narrows the catalog. Zero values mean "no constraint" on that dimension,
// except the price bounds which are nil when absent so that 0 stays a usable bound.
type ProductFilterCriteria struct {
	Category  string   `json:"category,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	Styles    []string `json:"styles,omitempty"`
	Materials []string `json:"materials,omitempty"`
	Search    string   `json:"search,omitempty"`
}

// IsEmpty reports whether no constraint is present.
func (c *ProductFilterCriteria) IsEmpty() bool {
	return c == nil || (c.Category == "" && c.MinPrice == nil && c.MaxPrice == nil &&
		len(c.Colors) == 0 && len(c.Styles) == 0 && len(c.Materials) == 0 && c.Search == "")
}

type SortKey string

const (
	SortNatural    SortKey = ""
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortNewest     SortKey = "newest"
	SortFeatured   SortKey = "featured"
	SortBestseller SortKey = "bestselling"
)

// ParseSortKey maps a request value to a SortKey. Unknown values keep the natural order.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceAsc, SortPriceDesc, SortNewest, SortFeatured, SortBestseller:
		return k
	default:
		return SortNatural
	}
}

type Facet string

const (
	FacetCategory Facet = "category"
	FacetMaterial Facet = "material"
	FacetStyle    Facet = "style"
	FacetColor    Facet = "color"
)

func ParseFacet(s string) (Facet, error) {
	switch f := Facet(strings.ToLower(strings.TrimSpace(s))); f {
	case FacetCategory, FacetMaterial, FacetStyle, FacetColor:
		return f, nil
	default:
		return "", fmt.Errorf("facet %q", s)
	}
}

type FacetSet struct {
	Categories []string `json:"categories"`
	Materials  []string `json:"materials"`
	Styles     []string `json:"styles"`
	Colors     []string `json:"colors"`
}
