package model

type Product struct {
	BaseModel        `yaml:",inline"`
	Slug             string           `db:"slug" json:"slug" yaml:"slug"`
	Name             string           `db:"name" json:"name" yaml:"name"`
	Description      string           `db:"description" json:"description" yaml:"description"`
	ShortDescription string           `db:"short_description" json:"shortDescription" yaml:"shortDescription"`
	Price            float64          `db:"price" json:"price" yaml:"price"`
	CompareAtPrice   *float64         `db:"compare_at_price" json:"compareAtPrice,omitempty" yaml:"compareAtPrice,omitempty"`
	Category         string           `db:"category" json:"category" yaml:"category"`
	Tags             []string         `db:"-" json:"tags" yaml:"tags"`
	Colors           []string         `db:"-" json:"colors" yaml:"colors"`
	Style            string           `db:"style" json:"style" yaml:"style"`
	Material         string           `db:"material" json:"material" yaml:"material"`
	Dimensions       string           `db:"dimensions" json:"dimensions" yaml:"dimensions"`
	Coverage         string           `db:"coverage" json:"coverage" yaml:"coverage"`
	Images           []ProductImage   `db:"-" json:"images" yaml:"images"`
	Variants         []ProductVariant `db:"-" json:"variants" yaml:"variants"`
	Featured         bool             `db:"featured" json:"featured" yaml:"featured"`
	Bestseller       bool             `db:"bestseller" json:"bestseller" yaml:"bestseller"`
	Ratings          float64          `db:"ratings" json:"ratings" yaml:"ratings"`
	Reviews          []Review         `db:"-" json:"reviews" yaml:"reviews"`
}

type ProductImage struct {
	ID   string `json:"id" yaml:"id"`
	URL  string `json:"url" yaml:"url"`
	Alt  string `json:"alt" yaml:"alt"`
	Main bool   `json:"main" yaml:"main"`
}

type ProductVariant struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Price   float64 `json:"price" yaml:"price"`
	Size    string  `json:"size" yaml:"size"`
	InStock bool    `json:"inStock" yaml:"inStock"`
	SKU     string  `json:"sku" yaml:"sku"`
}

type Review struct {
	ID       string `json:"id" yaml:"id"`
	UserName string `json:"userName" yaml:"userName"`
	Rating   int    `json:"rating" yaml:"rating"`
	Comment  string `json:"comment" yaml:"comment"`
	Date     string `json:"date" yaml:"date"`
}

// MainImage returns the image flagged main, or the first image.
func (p *Product) MainImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].Main {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}
