package cart

import (
	"encoding/json"

	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

// StorageKey is the well-known key carts are persisted under.
const StorageKey = "cart"

// EventCartUpdated names the change signal.
const EventCartUpdated = "cartUpdated"

func EncodeItems(items []model.CartLineItem) ([]byte, error) {
	if items == nil {
		items = []model.CartLineItem{}
	}
	return json.Marshal(items)
}

// DecodeItems parses a persisted cart. Empty data is an empty cart.
func DecodeItems(data []byte) ([]model.CartLineItem, error) {
	if len(data) == 0 {
		return []model.CartLineItem{}, nil
	}
	var items []model.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return Normalize(items), nil
}

// Normalize drops entries with quantity below one and merges entries sharing a line key,
// keeping the first entry's display fields.
func Normalize(items []model.CartLineItem) []model.CartLineItem {
	out := make([]model.CartLineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		merged := false
		for i := range out {
			if out[i].SameLine(it.ProductID, it.VariantLabel) {
				out[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, it)
		}
	}
	return out
}

func ComputeTotals(items []model.CartLineItem) dto.Totals {
	totals := dto.Totals{Subtotal: decimal.Zero}
	for _, it := range items {
		totals.ItemCount += it.Quantity
		line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
		totals.Subtotal = totals.Subtotal.Add(line)
	}
	return totals
}
