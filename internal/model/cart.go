package model

// CartLineItem is one row of a cart. The json tags are the persisted layout.
type CartLineItem struct {
	ProductID    string  `json:"id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ImageRef     string  `json:"image"`
	VariantLabel string  `json:"variant,omitempty"`
}

// SameLine reports whether two entries share the (product, variant) identity key.
func (i CartLineItem) SameLine(productID, variant string) bool {
	return i.ProductID == productID && i.VariantLabel == variant
}
