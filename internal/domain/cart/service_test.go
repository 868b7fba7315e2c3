package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/cart"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/ports/auth"
)

// mapBucket simula el carrito de sesión.
type mapBucket struct{ items map[string]int }

func (b *mapBucket) Load(context.Context) (map[string]int, error) {
	out := map[string]int{}
	for k, v := range b.items {
		out[k] = v
	}
	return out, nil
}

func (b *mapBucket) Save(_ context.Context, items map[string]int) error {
	b.items = items
	return nil
}

type fixture struct {
	svc     *cart.Service
	catalog *catalog.Service
	food    catalog.Product
	toy     catalog.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	admin := auth.Claims{UserID: "admin", Role: auth.RoleAdmin}

	cat := catalog.NewService(mem.NewCatalogRepo(), 5)
	food, err := cat.CreateProduct(ctx, admin, catalog.ProductInput{Name: "Kedi Maması", PriceKurus: 45000, Stock: 5})
	require.NoError(t, err)
	toy, err := cat.CreateProduct(ctx, admin, catalog.ProductInput{Name: "Oyuncak Fare", PriceKurus: 2550, Stock: 2})
	require.NoError(t, err)

	return fixture{svc: cart.NewService(mem.NewCartRepo(), cat), catalog: cat, food: food, toy: toy}
}

func TestAddSetRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := &mapBucket{}

	v, err := f.svc.Add(ctx, b, f.food.ID, 2)
	require.NoError(t, err)
	v, err = f.svc.Add(ctx, b, f.toy.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, v.ItemCount)
	assert.Equal(t, int64(2*45000+2550), v.SubtotalKurus)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "Kedi Maması", v.Lines[0].ProductName)

	_, err = f.svc.Add(ctx, b, f.toy.ID, 2)
	assert.ErrorIs(t, err, cart.ErrOutOfStock)

	_, err = f.svc.Add(ctx, b, "missing", 1)
	assert.ErrorIs(t, err, cart.ErrUnknownItem)

	_, err = f.svc.Add(ctx, b, f.food.ID, 0)
	assert.ErrorIs(t, err, cart.ErrInvalidInput)

	v, err = f.svc.SetQuantity(ctx, b, f.food.ID, 0)
	require.NoError(t, err)
	assert.Len(t, v.Lines, 1)

	v, err = f.svc.Remove(ctx, b, f.toy.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	assert.Empty(t, b.items)
}

func TestView_DropsInactiveProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	off := false
	_, err := f.catalog.UpdateProduct(ctx, f.toy.ID, auth.Claims{UserID: "admin", Role: auth.RoleAdmin}, catalog.ProductPatch{IsActive: &off})
	require.NoError(t, err)

	v, err := f.svc.View(ctx, map[string]int{f.food.ID: 1, f.toy.ID: 1, "gone": 3})
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, f.food.ID, v.Lines[0].ProductID)
	assert.True(t, v.Lines[0].Available)
}

func TestMergeGuest_CapsAtStockAndDropsUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Add(ctx, f.svc.ForUser("u1"), f.food.ID, 4)
	require.NoError(t, err)

	err = f.svc.MergeGuest(ctx, "u1", map[string]int{
		f.food.ID: 3, // 4+3 > 5
		f.toy.ID:  1,
		"ghost":   2,
	})
	require.NoError(t, err)

	v, err := f.svc.Get(ctx, f.svc.ForUser("u1"))
	require.NoError(t, err)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, 5, v.Lines[0].Quantity)
	assert.Equal(t, 1, v.Lines[1].Quantity)

	// otro usuario no se ve afectado
	other, err := f.svc.Get(ctx, f.svc.ForUser("u2"))
	require.NoError(t, err)
	assert.Empty(t, other.Lines)
}
