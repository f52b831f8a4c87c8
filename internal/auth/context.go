package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"

	sessionHeader     = "x-session-id"
	forwardedFor      = "x-forwarded-for"
	userSessionPrefix = "user:"
)

// Identity is the caller as asserted by the external identity provider.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Provider is the narrow capability surface handlers depend on.
type Provider interface {
	IsAuthenticated(ctx context.Context) bool
	IsAdmin(ctx context.Context) bool
	CurrentUserID(ctx context.Context) string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// ContextProvider answers from the identity the interceptor stored in the context.
type ContextProvider struct{}

func (ContextProvider) IsAuthenticated(ctx context.Context) bool {
	_, ok := IdentityFrom(ctx)
	return ok
}

func (ContextProvider) IsAdmin(ctx context.Context) bool {
	id, ok := IdentityFrom(ctx)
	return ok && id.Role == RoleAdmin
}

func (ContextProvider) CurrentUserID(ctx context.Context) string {
	if id, ok := IdentityFrom(ctx); ok {
		return id.UserID
	}
	return ""
}

// GetSessionID returns the cart session the request belongs to. Signed-in callers always use
// their account session and the header is ignored. Anonymous callers use the x-session-id header,
// which may not claim the account namespace.
func GetSessionID(ctx context.Context) string {
	if id, ok := IdentityFrom(ctx); ok && id.UserID != "" {
		return userSessionPrefix + id.UserID
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	val := md.Get(sessionHeader)
	if len(val) == 0 {
		return ""
	}
	sessionID := strings.TrimSpace(val[0])
	if strings.HasPrefix(sessionID, userSessionPrefix) {
		return ""
	}
	return sessionID
}

// GetClientIP returns the first x-forwarded-for address, if any.
func GetClientIP(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(forwardedFor); len(val) > 0 {
		addr, _, _ := strings.Cut(val[0], ",")
		return strings.TrimSpace(addr)
	}
	return ""
}
