package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/cart/repository"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const session = "sess-1"

func line(id, variant string, qty int, price float64) model.CartLineItem {
	return model.CartLineItem{
		ProductID:    id,
		Name:         "Tile " + id,
		UnitPrice:    price,
		Quantity:     qty,
		ImageRef:     "https://cdn.example.com/" + id + ".jpg",
		VariantLabel: variant,
	}
}

func newTestStore(t *testing.T) (*Store, *repository.MemoryRepository, *int) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	s := NewStore(context.Background(), session, repo, logger.Wrap(zaptest.NewLogger(t)))
	notified := new(int)
	s.Subscribe(func() { *notified++ })
	return s, repo, notified
}

func persisted(t *testing.T, repo cart.Repository) []model.CartLineItem {
	t.Helper()
	data, err := repo.Load(context.Background(), session)
	require.NoError(t, err)
	items, err := cart.DecodeItems(data)
	require.NoError(t, err)
	return items
}

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("totals of a fresh cart", func(t *testing.T) {
		s, _, _ := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 2, 10))

		totals := s.Totals()
		assert.Equal(t, 2, totals.ItemCount)
		assert.True(t, decimal.NewFromInt(20).Equal(totals.Subtotal))
	})

	t.Run("same line merges and keeps first-seen fields", func(t *testing.T) {
		s, _, _ := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 2, 10))

		again := line("p1", "red", 3, 99)
		again.Name = "Renamed"
		s.AddItem(ctx, again)

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)
		assert.Equal(t, 10.0, items[0].UnitPrice)
		assert.Equal(t, "Tile p1", items[0].Name)
	})

	t.Run("variants are separate lines", func(t *testing.T) {
		s, _, _ := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 1, 10))
		s.AddItem(ctx, line("p1", "blue", 1, 10))
		s.AddItem(ctx, line("p1", "", 1, 10))

		assert.Len(t, s.Items(), 3)
	})

	t.Run("any sequence of adds for one key sums quantities", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 20; round++ {
			s, _, _ := newTestStore(t)
			want := 0
			for i := 0; i < 1+rng.Intn(10); i++ {
				q := 1 + rng.Intn(5)
				want += q
				s.AddItem(ctx, line("p9", "sheet", q, 4.25))
			}
			items := s.Items()
			require.Len(t, items, 1)
			assert.Equal(t, want, items[0].Quantity)
			assert.Equal(t, want, s.Totals().ItemCount)
		}
	})

	t.Run("non-positive quantity is ignored", func(t *testing.T) {
		s, repo, notified := newTestStore(t)
		s.AddItem(ctx, line("p1", "", 0, 10))
		s.AddItem(ctx, line("p1", "", -2, 10))

		assert.Empty(t, s.Items())
		assert.Equal(t, 0, *notified)
		data, err := repo.Load(ctx, session)
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}

func TestStore_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("sets absolute quantity", func(t *testing.T) {
		s, _, _ := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 2, 10))
		s.UpdateQuantity(ctx, "p1", 7, "red")

		assert.Equal(t, 7, s.Items()[0].Quantity)
	})

	t.Run("negative quantity removes the line", func(t *testing.T) {
		s, _, _ := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 2, 10))
		s.AddItem(ctx, line("p2", "", 1, 5))
		s.UpdateQuantity(ctx, "p1", -1, "red")

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "p2", items[0].ProductID)
	})

	t.Run("update to zero equals remove", func(t *testing.T) {
		a, repoA, _ := newTestStore(t)
		b, repoB, _ := newTestStore(t)
		for _, s := range []*Store{a, b} {
			s.AddItem(ctx, line("p1", "red", 2, 10))
			s.AddItem(ctx, line("p2", "", 3, 5))
		}

		a.UpdateQuantity(ctx, "p1", 0, "red")
		b.RemoveItem(ctx, "p1", "red")

		assert.Equal(t, a.Items(), b.Items())
		assert.Equal(t, persisted(t, repoA), persisted(t, repoB))
	})

	t.Run("missing line is a no-op", func(t *testing.T) {
		s, _, notified := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 2, 10))
		s.UpdateQuantity(ctx, "p1", 4, "blue")
		s.RemoveItem(ctx, "p3", "")

		assert.Equal(t, 2, s.Items()[0].Quantity)
		assert.Equal(t, 1, *notified)
	})

	t.Run("clear empties unconditionally", func(t *testing.T) {
		s, repo, notified := newTestStore(t)
		s.Clear(ctx)
		s.AddItem(ctx, line("p1", "", 1, 10))
		s.Clear(ctx)

		assert.Empty(t, s.Items())
		assert.Empty(t, persisted(t, repo))
		assert.Equal(t, 3, *notified)
	})
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("every mutation writes the full list", func(t *testing.T) {
		s, repo, notified := newTestStore(t)
		s.AddItem(ctx, line("p1", "red", 2, 10))
		s.AddItem(ctx, line("p2", "", 1, 5.5))

		data, err := repo.Load(ctx, session)
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"id":"p1","name":"Tile p1","price":10,"quantity":2,"image":"https://cdn.example.com/p1.jpg","variant":"red"},
			{"id":"p2","name":"Tile p2","price":5.5,"quantity":1,"image":"https://cdn.example.com/p2.jpg"}
		]`, string(data))
		assert.Equal(t, 2, *notified)
	})

	t.Run("a new store rehydrates the saved cart", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		first := NewStore(ctx, session, repo, logger.NewNop())
		first.AddItem(ctx, line("p1", "red", 2, 10))

		second := NewStore(ctx, session, repo, logger.NewNop())
		assert.Equal(t, first.Items(), second.Items())
	})

	t.Run("corrupt data starts empty and is logged", func(t *testing.T) {
		repo := repository.NewMemoryRepository()
		require.NoError(t, repo.Save(ctx, session, []byte(`{not json`)))

		core, logs := observer.New(zapcore.ErrorLevel)
		s := NewStore(ctx, session, repo, logger.Wrap(zap.New(core)))

		assert.Empty(t, s.Items())
		assert.Equal(t, 1, logs.FilterMessageSnippet("parse persisted cart").Len())
	})

	t.Run("load failure starts empty", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		s := NewStore(ctx, session, failingRepo{}, logger.Wrap(zap.New(core)))

		assert.Empty(t, s.Items())
		assert.Equal(t, 1, logs.FilterMessage("Failed to load cart").Len())

		// Save failures are logged but the mutation still applies.
		s.AddItem(ctx, line("p1", "", 1, 10))
		assert.Len(t, s.Items(), 1)
		assert.Equal(t, 1, logs.FilterMessage("Failed to persist cart").Len())
	})
}

func TestStore_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("picks up an externally rewritten cart", func(t *testing.T) {
		s, repo, notified := newTestStore(t)
		s.AddItem(ctx, line("p1", "", 1, 10))

		other := NewStore(ctx, session, repo, logger.NewNop())
		other.AddItem(ctx, line("p2", "", 4, 2))

		s.Refresh(ctx)
		assert.Len(t, s.Items(), 2)
		assert.Equal(t, 5, s.Totals().ItemCount)
		assert.Equal(t, 1, *notified)
	})

	t.Run("mutations start from the persisted cart", func(t *testing.T) {
		s, repo, _ := newTestStore(t)
		s.AddItem(ctx, line("p1", "", 3, 10))
		require.NoError(t, repo.Save(ctx, session, nil))

		s.AddItem(ctx, line("p2", "", 1, 10))
		assert.Equal(t, []string{"p2"}, productIDs(persisted(t, repo)))
	})
}

func productIDs(items []model.CartLineItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductID)
	}
	return out
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s, _, first := newTestStore(t)

	second := 0
	unsubscribe := s.Subscribe(func() { second++ })

	s.AddItem(ctx, line("p1", "", 1, 10))
	unsubscribe()
	s.AddItem(ctx, line("p1", "", 1, 10))

	assert.Equal(t, 2, *first)
	assert.Equal(t, 1, second)
}

type failingRepo struct{}

func (failingRepo) Load(ctx context.Context, sessionID string) ([]byte, error) {
	return nil, errors.New("storage unavailable")
}

func (failingRepo) Save(ctx context.Context, sessionID string, data []byte) error {
	return errors.New("storage unavailable")
}
