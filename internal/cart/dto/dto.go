package dto

import (
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

type Totals struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is a cart as shown on the cart page: line items, totals and the checkout summary.
type CartView struct {
	SessionID string               `json:"sessionId"`
	Items     []model.CartLineItem `json:"items"`
	Totals    Totals               `json:"totals"`
	Shipping  decimal.Decimal      `json:"shipping"`
	Total     decimal.Decimal      `json:"total"`
}
