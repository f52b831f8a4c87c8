package usecase

import (
	"context"
	"slices"
	"sync"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

// Store owns the line items of one session. Mutations are applied one at a time; each successful
// mutation is persisted and then announced to every subscriber.
type Store struct {
	sessionID string
	repo      cart.Repository
	logger    logger.ZapLogger

	mu    sync.Mutex
	items []model.CartLineItem

	subMu       sync.Mutex
	subscribers []subscriber
	nextSubID   int
}

type subscriber struct {
	id int
	fn func()
}

// NewStore rehydrates the session's cart from repo. A missing or unreadable cart starts empty.
func NewStore(ctx context.Context, sessionID string, repo cart.Repository, log logger.ZapLogger) *Store {
	s := &Store{
		sessionID: sessionID,
		repo:      repo,
		logger:    log.With(zap.String("session_id", sessionID)),
		items:     []model.CartLineItem{},
	}
	s.reload(ctx)
	return s
}

// Refresh replaces the in-memory items with the persisted cart, so an expired or externally
// rewritten cart is seen here. A failed load keeps the current items.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload(ctx)
}

// reload must be called with s.mu held (or before s is shared).
func (s *Store) reload(ctx context.Context) {
	data, err := s.repo.Load(ctx, s.sessionID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.Error(err))
		return
	}
	items, err := cart.DecodeItems(data)
	if err != nil {
		s.logger.Error("Failed to parse persisted cart, starting empty", zap.Error(err))
		s.items = []model.CartLineItem{}
		return
	}
	s.items = items
}

func (s *Store) SessionID() string { return s.sessionID }

// Items returns a copy of the line items in the order they were first added.
func (s *Store) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Totals is recomputed from the current items on every call.
func (s *Store) Totals() dto.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.ComputeTotals(s.items)
}

// AddItem merges item into an existing line with the same product and variant, or appends it.
// The first-seen name, price and image of a line are kept.
func (s *Store) AddItem(ctx context.Context, item model.CartLineItem) {
	if item.Quantity < 1 {
		s.logger.Warn("Ignoring cart item with non-positive quantity",
			zap.String("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity),
		)
		return
	}

	s.mutate(ctx, func(items []model.CartLineItem) ([]model.CartLineItem, bool) {
		if i := indexOf(items, item.ProductID, item.VariantLabel); i >= 0 {
			items[i].Quantity += item.Quantity
			return items, true
		}
		return append(items, item), true
	})
}

// UpdateQuantity sets the quantity of a line. Zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, variant string) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID, variant)
		return
	}

	s.mutate(ctx, func(items []model.CartLineItem) ([]model.CartLineItem, bool) {
		i := indexOf(items, productID, variant)
		if i < 0 {
			return items, false
		}
		items[i].Quantity = quantity
		return items, true
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID, variant string) {
	s.mutate(ctx, func(items []model.CartLineItem) ([]model.CartLineItem, bool) {
		i := indexOf(items, productID, variant)
		if i < 0 {
			return items, false
		}
		return slices.Delete(items, i, i+1), true
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func([]model.CartLineItem) ([]model.CartLineItem, bool) {
		return []model.CartLineItem{}, true
	})
}

// Subscribe registers fn to run after every successful mutation. The returned func removes it.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool { return sub.id == id })
	}
}

// mutate re-reads the persisted cart and applies change to a working copy. When change reports a
// modification the copy becomes the new state, is persisted, and subscribers are notified outside
// the lock.
func (s *Store) mutate(ctx context.Context, change func([]model.CartLineItem) ([]model.CartLineItem, bool)) {
	s.mu.Lock()
	s.reload(ctx)
	next, changed := change(slices.Clone(s.items))
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	s.persist(ctx, next)
	s.mu.Unlock()

	s.notify()
}

func (s *Store) persist(ctx context.Context, items []model.CartLineItem) {
	data, err := cart.EncodeItems(items)
	if err != nil {
		s.logger.Error("Failed to encode cart", zap.Error(err))
		return
	}
	if err := s.repo.Save(ctx, s.sessionID, data); err != nil {
		s.logger.Error("Failed to persist cart", zap.Error(err))
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := slices.Clone(s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func indexOf(items []model.CartLineItem, productID, variant string) int {
	return slices.IndexFunc(items, func(it model.CartLineItem) bool {
		return it.SameLine(productID, variant)
	})
}
