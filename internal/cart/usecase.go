package cart

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

var ErrMissingSession = errors.New("missing cart session")

type UseCase interface {
	GetCart(ctx context.Context, sessionID string) (*dto.CartView, error)
	AddItem(ctx context.Context, sessionID string, item model.CartLineItem) (*dto.CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int, variant string) (*dto.CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID, variant string) (*dto.CartView, error)
	ClearCart(ctx context.Context, sessionID string) (*dto.CartView, error)
	Active(sessionID string) bool
}
