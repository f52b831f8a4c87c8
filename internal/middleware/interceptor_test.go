package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/omnipos.storefront.v1.CartService/GetCart"}

func identityHandler(ctx context.Context, req interface{}) (interface{}, error) {
	id, _ := auth.IdentityFrom(ctx)
	return id, nil
}

func TestContextInterceptor(t *testing.T) {
	verifier := auth.NewTokenVerifier("secret")
	intercept := ContextInterceptor(verifier)

	t.Run("anonymous", func(t *testing.T) {
		resp, err := intercept(context.Background(), nil, info, identityHandler)
		require.NoError(t, err)
		assert.Nil(t, resp)

		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-session-id", "s"))
		resp, err = intercept(ctx, nil, info, identityHandler)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := verifier.Issue(&auth.Identity{UserID: "u-1", Role: auth.RoleAdmin}, time.Hour)
		require.NoError(t, err)

		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
		resp, err := intercept(ctx, nil, info, identityHandler)
		require.NoError(t, err)
		id := resp.(*auth.Identity)
		assert.Equal(t, "u-1", id.UserID)
		assert.Equal(t, auth.RoleAdmin, id.Role)
	})

	t.Run("invalid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer forged"))
		_, err := intercept(ctx, nil, info, identityHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	intercept := LoggingInterceptor(logger.Wrap(zap.New(core)))

	_, err := intercept(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = intercept(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "product not found")
	})
	require.Error(t, err)

	_, err = intercept(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "NotFound", entries[1].ContextMap()["code"])
	assert.Equal(t, "Unknown", entries[2].ContextMap()["code"])
	assert.Equal(t, info.FullMethod, entries[0].ContextMap()["method"])
}
