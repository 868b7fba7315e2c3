package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petkimlik/internal/adapters/storage/postgres"
	"petkimlik/internal/config"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/orders"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/ports/auth"
	"petkimlik/internal/router"
	"petkimlik/internal/seed"
)

// countingOrders cuenta cada llamada al repo de pedidos.
type countingOrders struct {
	orders.Repository
	calls atomic.Int64
}

func (c *countingOrders) Place(ctx context.Context, in orders.PlaceInput) error {
	c.calls.Add(1)
	return c.Repository.Place(ctx, in)
}

func (c *countingOrders) GetByID(ctx context.Context, id string) (orders.Order, error) {
	c.calls.Add(1)
	return c.Repository.GetByID(ctx, id)
}

func (c *countingOrders) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	c.calls.Add(1)
	return c.Repository.ListByUser(ctx, userID)
}

func (c *countingOrders) Cancel(ctx context.Context, o orders.Order) error {
	c.calls.Add(1)
	return c.Repository.Cancel(ctx, o)
}

func (c *countingOrders) UpdateStatus(ctx context.Context, id string, status orders.Status) error {
	c.calls.Add(1)
	return c.Repository.UpdateStatus(ctx, id, status)
}

func (c *countingOrders) AdminList(ctx context.Context, f orders.AdminFilter) ([]orders.AdminRow, int64, error) {
	c.calls.Add(1)
	return c.Repository.AdminList(ctx, f)
}

func (c *countingOrders) CountByStatus(ctx context.Context) (map[orders.Status]int64, error) {
	c.calls.Add(1)
	return c.Repository.CountByStatus(ctx)
}

type app struct {
	url      string
	svc      *router.Services
	admin    string
	owner    string
	province int64
	district int64
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "petkimlik", Environment: "test", BaseURL: "http://petkimlik.test", DevAuth: true},
		Session: config.SessionConfig{Name: "test_session", Secret: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour},
		Shop:    config.ShopConfig{StockWarningThreshold: 5},
	}
}

func newApp(t *testing.T, st router.Stores) app {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()

	svc := router.NewServices(cfg, st)
	_, err := seed.Run(ctx, svc.SeedServices(), logger.Nop())
	require.NoError(t, err)

	h, err := router.NewRouter(router.Options{Config: cfg, Log: logger.Nop(), Services: svc})
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	admin, err := svc.Accounts.Authenticate(ctx, seed.AdminEmail, seed.Password)
	require.NoError(t, err)
	owner, err := svc.Accounts.Authenticate(ctx, seed.OwnerEmail, seed.Password)
	require.NoError(t, err)

	provs, err := svc.Locations.ListProvinces(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, provs)
	dists, err := svc.Locations.ListDistricts(ctx, provs[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, dists)

	return app{url: ts.URL, svc: svc, admin: admin.ID, owner: owner.ID, province: provs[0].ID, district: dists[0].ID}
}

func doReq(t *testing.T, baseURL, method, path, userID string, role auth.Role, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
		if role != "" {
			req.Header.Set("X-Debug-Role", string(role))
		}
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out, _ := io.ReadAll(res.Body)
	return res.StatusCode, out
}

// placeOrders crea n pedidos pagados para userID con envío inline.
func (a app) placeOrders(t *testing.T, userID string, product catalog.Product, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		bucket := a.svc.Cart.ForUser(userID)
		_, err := a.svc.Cart.Add(ctx, bucket, product.ID, 1)
		require.NoError(t, err)
		_, err = a.svc.Orders.Checkout(ctx, bucket, orders.CheckoutInput{
			UserID: userID,
			Shipping: &orders.ShippingInput{
				FullName:   "Ayşe Yılmaz",
				Phone:      "0532 111 22 33",
				ProvinceID: a.province,
				DistrictID: a.district,
				Line:       "Moda Cad. No:1",
			},
		})
		require.NoError(t, err)
	}
}

func (a app) product(t *testing.T, stock int) catalog.Product {
	t.Helper()
	p, err := a.svc.Catalog.CreateProduct(context.Background(), auth.Claims{UserID: a.admin, Role: auth.RoleAdmin},
		catalog.ProductInput{Name: "Test Mama " + uuid.NewString()[:6], PriceKurus: 12990, Stock: stock})
	require.NoError(t, err)
	return p
}

type adminList struct {
	Orders []struct {
		Number         string `json:"number"`
		UserOrderCount int64  `json:"user_order_count"`
	} `json:"orders"`
	Total int64 `json:"total"`
}

func TestHTTP_StatusCodes(t *testing.T) {
	a := newApp(t, router.MemoryStores())

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		role   auth.Role
		body   any
		want   int
	}{
		{"health", "GET", "/health", "", "", nil, http.StatusOK},
		{"public products", "GET", "/api/products", "", "", nil, http.StatusOK},
		{"public listings", "GET", "/api/listings", "", "", nil, http.StatusOK},
		{"provinces", "GET", "/api/locations/provinces", "", "", nil, http.StatusOK},
		{"shop page", "GET", "/magaza", "", "", nil, http.StatusOK},
		{"my orders anonymous", "GET", "/api/orders", "", "", nil, http.StatusUnauthorized},
		{"admin orders as owner", "GET", "/api/admin/orders", a.owner, auth.RoleOwner, nil, http.StatusForbidden},
		{"admin orders as admin", "GET", "/api/admin/orders", a.admin, auth.RoleAdmin, nil, http.StatusOK},
		{"admin orders bad status", "GET", "/api/admin/orders?status=lost", a.admin, auth.RoleAdmin, nil, http.StatusBadRequest},
		{"dashboard", "GET", "/api/admin/dashboard", a.admin, auth.RoleAdmin, nil, http.StatusOK},
		{"unknown order", "GET", "/api/orders/" + uuid.NewString(), a.owner, auth.RoleOwner, nil, http.StatusNotFound},
		{"checkout empty cart", "POST", "/api/checkout", a.owner, auth.RoleOwner, map[string]any{
			"shipping": map[string]any{"full_name": "Ayşe", "phone": "05321112233", "province_id": a.province, "district_id": a.district, "line": "x"},
		}, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, a.url, tc.method, tc.path, tc.user, tc.role, tc.body)
			assert.Equal(t, tc.want, st, "body=%s", string(body))
		})
	}
}

func TestHTTP_VendorWithIncompleteProfileIsRedirected(t *testing.T) {
	a := newApp(t, router.MemoryStores())
	vet, err := a.svc.Accounts.Authenticate(context.Background(), seed.VetEmail, seed.Password)
	require.NoError(t, err)

	st, _ := doReq(t, a.url, "GET", "/api/pets", vet.ID, auth.RoleVet, nil)
	assert.Equal(t, http.StatusConflict, st)

	st, _ = doReq(t, a.url, "GET", "/api/vendor/profile", vet.ID, auth.RoleVet, nil)
	assert.Equal(t, http.StatusOK, st)
}

func TestHTTP_ListViewsRespondQuickly(t *testing.T) {
	a := newApp(t, router.MemoryStores())
	p := a.product(t, 500)
	a.placeOrders(t, a.owner, p, 60)

	const ceiling = 500 * time.Millisecond
	for _, path := range []string{"/api/products", "/api/listings", "/api/admin/orders", "/yonetim/siparisler"} {
		start := time.Now()
		st, body := doReq(t, a.url, "GET", path, a.admin, auth.RoleAdmin, nil)
		elapsed := time.Since(start)

		require.Equal(t, http.StatusOK, st, "%s body=%s", path, string(body))
		assert.Less(t, elapsed, ceiling, path)
	}
}

func TestHTTP_AdminOrders_CountsPerUser(t *testing.T) {
	a := newApp(t, router.MemoryStores())
	p := a.product(t, 100)
	other := uuid.NewString()

	a.placeOrders(t, a.owner, p, 3)
	a.placeOrders(t, other, p, 1)

	st, body := doReq(t, a.url, "GET", "/api/admin/orders", a.admin, auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, st, string(body))

	var out adminList
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Orders, 4)
	assert.EqualValues(t, 4, out.Total)

	counts := map[int64]int{}
	for _, o := range out.Orders {
		counts[o.UserOrderCount]++
	}
	assert.Equal(t, map[int64]int{3: 3, 1: 1}, counts)

	// El dueño sólo ve los suyos.
	st, body = doReq(t, a.url, "GET", "/api/orders", a.owner, auth.RoleOwner, nil)
	require.Equal(t, http.StatusOK, st)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(body, &mine))
	assert.Len(t, mine, 3)
}

func TestHTTP_AdminOrders_BoundedRepoCalls(t *testing.T) {
	st := router.MemoryStores()
	counted := &countingOrders{Repository: st.Orders}
	st.Orders = counted

	a := newApp(t, st)
	p := a.product(t, 200)
	for i := 0; i < 5; i++ {
		a.placeOrders(t, uuid.NewString(), p, 4)
	}

	counted.calls.Store(0)
	status, body := doReq(t, a.url, "GET", "/api/admin/orders?page_size=50", a.admin, auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.EqualValues(t, 1, counted.calls.Load())

	var out adminList
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Orders, 20)
	for _, o := range out.Orders {
		assert.EqualValues(t, 4, o.UserOrderCount, o.Number)
	}
}

func TestHTTP_AdminOrders_BoundedQueriesPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()

	db, counter, err := postgres.Open(config.DatabaseConfig{DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	schema := "r_" + uuid.NewString()[:8]
	require.NoError(t, db.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)).Error)
	require.NoError(t, db.Exec(fmt.Sprintf("SET search_path TO %s", schema)).Error)
	t.Cleanup(func() {
		_ = db.Exec(fmt.Sprintf("DROP SCHEMA %s CASCADE", schema)).Error
		_ = postgres.Close(db)
	})
	require.NoError(t, postgres.Migrate(ctx, db))

	a := newApp(t, router.PostgresStores(db))
	p := a.product(t, 200)
	for i := 0; i < 4; i++ {
		a.placeOrders(t, uuid.NewString(), p, 3)
	}

	before := counter.Total()
	status, body := doReq(t, a.url, "GET", "/api/admin/orders", a.admin, auth.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	// AuthContext con rol en el header no toca la base; sólo cuenta el listado.
	assert.LessOrEqual(t, counter.Total()-before, int64(3))

	var out adminList
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Orders, 12)
	for _, o := range out.Orders {
		assert.EqualValues(t, 3, o.UserOrderCount)
	}
}
