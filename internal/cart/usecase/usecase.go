package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultIdleTimeout bounds how long an untouched session keeps its Store in memory.
const DefaultIdleTimeout = 30 * time.Minute

type cartUseCase struct {
	repo        cart.Repository
	broadcaster cart.Broadcaster
	shipping    decimal.Decimal
	idle        time.Duration
	logger      logger.ZapLogger
	now         func() time.Time

	mu        sync.Mutex
	stores    map[string]*sessionEntry
	lastSweep time.Time
}

type sessionEntry struct {
	store       *Store
	unsubscribe func()
	lastUsed    time.Time
}

// NewCartUseCase keeps one Store per active session and drops stores idle for longer than idle
// (DefaultIdleTimeout when zero or less). broadcaster may be nil. shipping is the flat fee added to
// non-empty carts in the checkout summary.
func NewCartUseCase(repo cart.Repository, broadcaster cart.Broadcaster, shipping decimal.Decimal, idle time.Duration, log logger.ZapLogger) cart.UseCase {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &cartUseCase{
		repo:        repo,
		broadcaster: broadcaster,
		shipping:    shipping,
		idle:        idle,
		logger:      log,
		now:         time.Now,
		stores:      make(map[string]*sessionEntry),
	}
}

func (uc *cartUseCase) store(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, cart.ErrMissingSession
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now()
	uc.sweep(now)

	if sess, ok := uc.stores[sessionID]; ok {
		sess.lastUsed = now
		return sess.store, nil
	}

	s := NewStore(ctx, sessionID, uc.repo, uc.logger)
	sess := &sessionEntry{store: s, unsubscribe: func() {}, lastUsed: now}
	if uc.broadcaster != nil {
		sess.unsubscribe = s.Subscribe(func() {
			// The request context may already be done once the signal is delivered.
			if err := uc.broadcaster.Publish(context.Background(), sessionID); err != nil {
				uc.logger.Error("Failed to broadcast cart update", zap.String("session_id", sessionID), zap.Error(err))
			}
		})
	}
	uc.stores[sessionID] = sess
	return s, nil
}

// sweep evicts idle sessions at most once per idle period. Callers hold uc.mu.
func (uc *cartUseCase) sweep(now time.Time) {
	if now.Sub(uc.lastSweep) < uc.idle {
		return
	}
	uc.lastSweep = now

	for id, sess := range uc.stores {
		if now.Sub(sess.lastUsed) >= uc.idle {
			sess.unsubscribe()
			delete(uc.stores, id)
		}
	}
}

// Active reports whether this process holds a live store for the session.
func (uc *cartUseCase) Active(sessionID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.stores[sessionID]
	return ok
}

func (uc *cartUseCase) GetCart(ctx context.Context, sessionID string) (*dto.CartView, error) {
	s, err := uc.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.Refresh(ctx)
	return uc.view(s), nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, sessionID string, item model.CartLineItem) (*dto.CartView, error) {
	s, err := uc.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.AddItem(ctx, item)
	return uc.view(s), nil
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int, variant string) (*dto.CartView, error) {
	s, err := uc.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.UpdateQuantity(ctx, productID, quantity, variant)
	return uc.view(s), nil
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, sessionID, productID, variant string) (*dto.CartView, error) {
	s, err := uc.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.RemoveItem(ctx, productID, variant)
	return uc.view(s), nil
}

func (uc *cartUseCase) ClearCart(ctx context.Context, sessionID string) (*dto.CartView, error) {
	s, err := uc.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.Clear(ctx)
	return uc.view(s), nil
}

func (uc *cartUseCase) view(s *Store) *dto.CartView {
	items := s.Items()
	totals := cart.ComputeTotals(items)

	shipping := decimal.Zero
	if totals.ItemCount > 0 {
		shipping = uc.shipping
	}
	return &dto.CartView{
		SessionID: s.SessionID(),
		Items:     items,
		Totals:    totals,
		Shipping:  shipping,
		Total:     totals.Subtotal.Add(shipping),
	}
}
