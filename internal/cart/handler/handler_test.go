package handler

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/repository"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/usecase"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/grpcjson"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type staticBadges map[string]int

func (b staticBadges) Count(sessionID string) (int, bool) {
	n, ok := b[sessionID]
	return n, ok
}

func startServer(t *testing.T, badges BadgeSource) *grpc.ClientConn {
	t.Helper()
	uc := usecase.NewCartUseCase(repository.NewMemoryRepository(), nil, decimal.RequireFromString("15"), 0, logger.NewNop())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&ServiceDesc, NewCartHandler(uc, badges, logger.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func call(ctx context.Context, conn *grpc.ClientConn, method string, req, resp any) error {
	return conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, grpcjson.CallOption())
}

func sessionCtx(id string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "x-session-id", id)
}

func TestCartHandler(t *testing.T) {
	conn := startServer(t, nil)
	ctx := sessionCtx("browser-1")

	item := model.CartLineItem{ProductID: "p1", Name: "Carrara Hexagon Mosaic", UnitPrice: 10, Quantity: 2, ImageRef: "a.jpg", VariantLabel: "red"}

	var view dto.CartView
	require.NoError(t, call(ctx, conn, "AddItem", &AddItemRequest{Item: item}, &view))
	item.Quantity = 3
	require.NoError(t, call(ctx, conn, "AddItem", &AddItemRequest{Item: item}, &view))

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 5, view.Totals.ItemCount)
	assert.Equal(t, "50", view.Totals.Subtotal.String())
	assert.Equal(t, "65", view.Total.String())

	require.NoError(t, call(ctx, conn, "UpdateQuantity", &UpdateQuantityRequest{ProductID: "p1", Quantity: 1, Variant: "red"}, &view))
	assert.Equal(t, 1, view.Totals.ItemCount)

	var badge BadgeResponse
	require.NoError(t, call(ctx, conn, "GetCartBadge", &emptypb.Empty{}, &badge))
	assert.Equal(t, 1, badge.ItemCount)

	require.NoError(t, call(ctx, conn, "UpdateQuantity", &UpdateQuantityRequest{ProductID: "p1", Quantity: -1, Variant: "red"}, &view))
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())

	require.NoError(t, call(ctx, conn, "AddItem", &AddItemRequest{Item: item}, &view))
	require.NoError(t, call(ctx, conn, "RemoveItem", &RemoveItemRequest{ProductID: "p1", Variant: "red"}, &view))
	assert.Empty(t, view.Items)

	require.NoError(t, call(ctx, conn, "AddItem", &AddItemRequest{Item: item}, &view))
	require.NoError(t, call(ctx, conn, "ClearCart", &emptypb.Empty{}, &view))
	assert.Empty(t, view.Items)

	var other dto.CartView
	require.NoError(t, call(sessionCtx("browser-2"), conn, "GetCart", &emptypb.Empty{}, &other))
	assert.Equal(t, "browser-2", other.SessionID)
	assert.Empty(t, other.Items)
}

func TestCartHandler_Validation(t *testing.T) {
	conn := startServer(t, nil)
	ctx := sessionCtx("browser-1")

	err := call(context.Background(), conn, "GetCart", &emptypb.Empty{}, &dto.CartView{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = call(ctx, conn, "AddItem", &AddItemRequest{Item: model.CartLineItem{ProductID: "p1", Quantity: 0}}, &dto.CartView{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = call(ctx, conn, "AddItem", &AddItemRequest{Item: model.CartLineItem{Quantity: 1}}, &dto.CartView{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = call(ctx, conn, "AddItem", &AddItemRequest{Item: model.CartLineItem{ProductID: "p1", Quantity: 1, UnitPrice: -1}}, &dto.CartView{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = call(ctx, conn, "RemoveItem", &RemoveItemRequest{}, &dto.CartView{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = call(sessionCtx("user:alice"), conn, "GetCart", &emptypb.Empty{}, &dto.CartView{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCartHandler_BadgeSource(t *testing.T) {
	conn := startServer(t, staticBadges{"browser-1": 7})

	var badge BadgeResponse
	require.NoError(t, call(sessionCtx("browser-1"), conn, "GetCartBadge", &emptypb.Empty{}, &badge))
	assert.Equal(t, 7, badge.ItemCount)

	require.NoError(t, call(sessionCtx("unseen"), conn, "GetCartBadge", &emptypb.Empty{}, &badge))
	assert.Equal(t, 0, badge.ItemCount)

	// Once the session is live here its own cart wins over a lagging observer count.
	var view dto.CartView
	item := model.CartLineItem{ProductID: "p1", Name: "Carrara Hexagon Mosaic", UnitPrice: 10, Quantity: 2}
	require.NoError(t, call(sessionCtx("browser-1"), conn, "AddItem", &AddItemRequest{Item: item}, &view))
	require.NoError(t, call(sessionCtx("browser-1"), conn, "GetCartBadge", &emptypb.Empty{}, &badge))
	assert.Equal(t, 2, badge.ItemCount)
}
