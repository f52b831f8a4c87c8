package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/grpcjson"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "omnipos.storefront.v1.CartService"

type AddItemRequest struct {
	Item model.CartLineItem `json:"item"`
}

type UpdateQuantityRequest struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
	Variant   string `json:"variant,omitempty"`
}

type RemoveItemRequest struct {
	ProductID string `json:"id"`
	Variant   string `json:"variant,omitempty"`
}

type BadgeResponse struct {
	ItemCount int `json:"itemCount"`
}

// BadgeSource reports cart counts maintained outside the request path.
type BadgeSource interface {
	Count(sessionID string) (int, bool)
}

type CartServiceServer interface {
	GetCart(context.Context, *emptypb.Empty) (*dto.CartView, error)
	AddItem(context.Context, *AddItemRequest) (*dto.CartView, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*dto.CartView, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*dto.CartView, error)
	ClearCart(context.Context, *emptypb.Empty) (*dto.CartView, error)
	GetCartBadge(context.Context, *emptypb.Empty) (*BadgeResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "GetCart", CartServiceServer.GetCart),
		grpcjson.Unary(ServiceName, "AddItem", CartServiceServer.AddItem),
		grpcjson.Unary(ServiceName, "UpdateQuantity", CartServiceServer.UpdateQuantity),
		grpcjson.Unary(ServiceName, "RemoveItem", CartServiceServer.RemoveItem),
		grpcjson.Unary(ServiceName, "ClearCart", CartServiceServer.ClearCart),
		grpcjson.Unary(ServiceName, "GetCartBadge", CartServiceServer.GetCartBadge),
	},
	Metadata: "omnipos/storefront/v1/cart.proto",
}

var _ CartServiceServer = (*CartHandler)(nil)

type CartHandler struct {
	uc     cart.UseCase
	badges BadgeSource
	logger logger.ZapLogger
}

// NewCartHandler serves carts keyed by the request's session. badges may be nil.
func NewCartHandler(uc cart.UseCase, badges BadgeSource, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		badges: badges,
		logger: log,
	}
}

func sessionFrom(ctx context.Context) (string, error) {
	sessionID := auth.GetSessionID(ctx)
	if sessionID == "" {
		return "", status.Error(codes.InvalidArgument, "missing or invalid x-session-id")
	}
	return sessionID, nil
}

func (h *CartHandler) GetCart(ctx context.Context, _ *emptypb.Empty) (*dto.CartView, error) {
	sessionID, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	view, err := h.uc.GetCart(ctx, sessionID)
	return view, h.toStatus(err)
}

func (h *CartHandler) AddItem(ctx context.Context, req *AddItemRequest) (*dto.CartView, error) {
	sessionID, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.Item.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "item id is required")
	}
	if req.Item.Quantity < 1 {
		return nil, status.Error(codes.InvalidArgument, "quantity must be at least 1")
	}
	if req.Item.UnitPrice < 0 {
		return nil, status.Error(codes.InvalidArgument, "price must not be negative")
	}

	view, err := h.uc.AddItem(ctx, sessionID, req.Item)
	return view, h.toStatus(err)
}

func (h *CartHandler) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*dto.CartView, error) {
	sessionID, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	view, err := h.uc.UpdateQuantity(ctx, sessionID, req.ProductID, req.Quantity, req.Variant)
	return view, h.toStatus(err)
}

func (h *CartHandler) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*dto.CartView, error) {
	sessionID, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	view, err := h.uc.RemoveItem(ctx, sessionID, req.ProductID, req.Variant)
	return view, h.toStatus(err)
}

func (h *CartHandler) ClearCart(ctx context.Context, _ *emptypb.Empty) (*dto.CartView, error) {
	sessionID, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	view, err := h.uc.ClearCart(ctx, sessionID)
	return view, h.toStatus(err)
}

// GetCartBadge answers from the cart when this process holds the session. Otherwise it uses the
// badge observer, whose count trails mutations by the broadcast delay, and finally the persisted
// cart.
func (h *CartHandler) GetCartBadge(ctx context.Context, _ *emptypb.Empty) (*BadgeResponse, error) {
	sessionID, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}
	if h.badges != nil && !h.uc.Active(sessionID) {
		if n, ok := h.badges.Count(sessionID); ok {
			return &BadgeResponse{ItemCount: n}, nil
		}
	}
	view, err := h.uc.GetCart(ctx, sessionID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &BadgeResponse{ItemCount: view.Totals.ItemCount}, nil
}

func (h *CartHandler) toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, cart.ErrMissingSession):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("cart request failed", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	}
}
