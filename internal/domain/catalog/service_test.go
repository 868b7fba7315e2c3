package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/ports/auth"
	"petkimlik/internal/ports/notify"
)

var (
	admin   = auth.Claims{UserID: "admin-1", Role: auth.RoleAdmin}
	petshop = auth.Claims{UserID: "shop-1", Role: auth.RolePetshop}
	owner   = auth.Claims{UserID: "owner-1", Role: auth.RoleOwner}
)

type recordingMailer struct {
	sent []notify.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func seed(t *testing.T) *catalog.Service {
	t.Helper()
	ctx := context.Background()
	svc := catalog.NewService(mem.NewCatalogRepo(), 5)

	_, err := svc.CreateCategory(ctx, admin, "kedi maması")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, admin, "Aksesuar")
	require.NoError(t, err)

	zero := 0
	for _, in := range []catalog.ProductInput{
		{Name: "Yetişkin Kedi Maması 2kg", PriceKurus: 45000, Stock: 20, CategorySlugs: []string{"kedi-mamasi"}},
		{Name: "Yavru Kedi Maması", PriceKurus: 32000, Stock: 3, CategorySlugs: []string{"kedi-mamasi"}},
		{Name: "Deri Tasma", PriceKurus: 15000, Stock: 0, LowStockThreshold: &zero, CategorySlugs: []string{"aksesuar"}},
	} {
		_, err := svc.CreateProduct(ctx, admin, in)
		require.NoError(t, err)
	}
	return svc
}

func TestCreateProduct_RulesAndSlugs(t *testing.T) {
	ctx := context.Background()
	svc := seed(t)

	_, err := svc.CreateProduct(ctx, owner, catalog.ProductInput{Name: "X", PriceKurus: 100})
	assert.ErrorIs(t, err, catalog.ErrForbidden)

	_, err = svc.CreateProduct(ctx, admin, catalog.ProductInput{Name: "X", PriceKurus: 0})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, admin, catalog.ProductInput{Name: "X", PriceKurus: 100, CategorySlugs: []string{"yok"}})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, admin, catalog.ProductInput{Name: "Deri Tasma", PriceKurus: 100})
	assert.ErrorIs(t, err, catalog.ErrSlugTaken)

	p, err := svc.CreateProduct(ctx, petshop, catalog.ProductInput{Name: "Çiğneme Kemiği", PriceKurus: 2500, Stock: 10})
	require.NoError(t, err)
	assert.Equal(t, "cigneme-kemigi", p.Slug)
	require.NotNil(t, p.VendorUserID)
	assert.Equal(t, "shop-1", *p.VendorUserID)
	assert.Equal(t, 5, p.LowStockThreshold)
}

func TestUpdateProduct_Ownership(t *testing.T) {
	ctx := context.Background()
	svc := seed(t)

	p, err := svc.CreateProduct(ctx, petshop, catalog.ProductInput{Name: "Top", PriceKurus: 1000, Stock: 1})
	require.NoError(t, err)

	price := int64(1200)
	other := auth.Claims{UserID: "shop-2", Role: auth.RolePetshop}
	_, err = svc.UpdateProduct(ctx, p.ID, other, catalog.ProductPatch{PriceKurus: &price})
	assert.ErrorIs(t, err, catalog.ErrForbidden)

	updated, err := svc.UpdateProduct(ctx, p.ID, petshop, catalog.ProductPatch{PriceKurus: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), updated.PriceKurus)

	neg := -1
	_, err = svc.UpdateProduct(ctx, p.ID, admin, catalog.ProductPatch{Stock: &neg})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestListProducts_FilterAndPaging(t *testing.T) {
	ctx := context.Background()
	svc := seed(t)

	page, err := svc.ListProducts(ctx, catalog.ListInput{CategorySlug: "kedi-mamasi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.ListProducts(ctx, catalog.ListInput{Query: "MAMASI"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.ListProducts(ctx, catalog.ListInput{PageSize: 1, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)

	page, err = svc.ListProducts(ctx, catalog.ListInput{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, catalog.MaxPageSize, page.PageSize)

	// inactivos no se listan ni se ven por slug
	p, err := svc.GetBySlug(ctx, "deri-tasma")
	require.NoError(t, err)
	off := false
	_, err = svc.UpdateProduct(ctx, p.ID, admin, catalog.ProductPatch{IsActive: &off})
	require.NoError(t, err)
	_, err = svc.GetBySlug(ctx, "deri-tasma")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	page, _ = svc.ListProducts(ctx, catalog.ListInput{})
	assert.Equal(t, int64(2), page.Total)
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	svc := seed(t)

	low, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	// Yavru (3 <= 5) y Tasma (0 <= 0)
	require.Len(t, low, 2)
	assert.Equal(t, "Deri Tasma", low[0].Name)

	low, err = svc.LowStock(ctx, 25)
	require.NoError(t, err)
	assert.Len(t, low, 3)
}

func TestStockWarning(t *testing.T) {
	ctx := context.Background()
	svc := seed(t)

	m := &recordingMailer{}
	res, err := svc.StockWarning(ctx, m, "admin@petkimlik.local", 0)
	require.NoError(t, err)
	assert.True(t, res.Sent)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Stok uyarısı: 2 ürün", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].Body, "Yavru Kedi Maması")

	_, err = svc.StockWarning(ctx, m, "", 0)
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)

	// nada bajo => no manda
	empty := catalog.NewService(mem.NewCatalogRepo(), 5)
	res, err = empty.StockWarning(ctx, m, "admin@petkimlik.local", 0)
	require.NoError(t, err)
	assert.False(t, res.Sent)
	assert.Len(t, m.sent, 1)

	failing := &recordingMailer{err: errors.New("smtp down")}
	_, err = svc.StockWarning(ctx, failing, "admin@petkimlik.local", 0)
	assert.Error(t, err)
}
