package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"petkimlik/internal/domain/cart"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/orders"
	"petkimlik/internal/domain/shopcards"
)

// ordersRepo comparte estado con los repos de catálogo, tarjetas y carrito
// para que Place sea todo o nada. Orden de locks: catálogo, tarjetas, carrito, pedidos.
type ordersRepo struct {
	mu       sync.RWMutex
	byID     map[string]orders.Order
	byNumber map[string]string

	catalog *catalogRepo
	cards   *shopCardsRepo
	carts   *cartRepo
}

// NewOrdersRepo requiere los repos en memoria de este paquete.
func NewOrdersRepo(cat catalog.Repository, cards shopcards.Repository, carts cart.Repository) orders.Repository {
	c, ok1 := cat.(*catalogRepo)
	s, ok2 := cards.(*shopCardsRepo)
	k, ok3 := carts.(*cartRepo)
	if !ok1 || !ok2 || !ok3 {
		panic("memory: NewOrdersRepo needs memory catalog, shop card and cart repos")
	}
	return &ordersRepo{
		byID:     map[string]orders.Order{},
		byNumber: map[string]string{},
		catalog:  c,
		cards:    s,
		carts:    k,
	}
}

func cloneOrder(o orders.Order) orders.Order {
	o.Items = append([]orders.OrderItem(nil), o.Items...)
	return o
}

func (r *ordersRepo) Place(ctx context.Context, in orders.PlaceInput) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	r.cards.mu.Lock()
	defer r.cards.mu.Unlock()
	r.carts.mu.Lock()
	defer r.carts.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byNumber[in.Order.Number]; taken {
		return orders.ErrNumberTaken
	}

	// Validar la tarjeta antes de tocar stock para no tener que deshacer.
	if in.CardDebit > 0 {
		c, ok := r.cards.byCode[in.Order.ShopCardCode]
		if !ok {
			return shopcards.ErrNotFound
		}
		if c.BalanceKurus < in.CardDebit {
			return shopcards.ErrInsufficient
		}
	}

	deltas := make(map[string]int, len(in.StockDeltas))
	for id, q := range in.StockDeltas {
		if q <= 0 {
			return fmt.Errorf("memory: invalid stock delta for %s", id)
		}
		deltas[id] = -q
	}
	if err := r.catalog.applyStockLocked(deltas); err != nil {
		return err
	}
	if in.CardDebit > 0 {
		if _, err := r.cards.adjustLocked(in.Order.ShopCardCode, -in.CardDebit, in.Order.CreatedAt); err != nil {
			return err
		}
	}
	if in.ClearCartUserID != "" {
		r.carts.clearLocked(in.ClearCartUserID)
	}

	r.byID[in.Order.ID] = cloneOrder(in.Order)
	r.byNumber[in.Order.Number] = in.Order.ID
	return nil
}

func (r *ordersRepo) GetByID(ctx context.Context, id string) (orders.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *ordersRepo) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]orders.Order, 0)
	for _, o := range r.byID {
		if o.OwnedBy(userID) {
			out = append(out, cloneOrder(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(list []orders.Order) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Number > list[j].Number
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func (r *ordersRepo) Cancel(ctx context.Context, o orders.Order) error {
	r.catalog.mu.Lock()
	defer r.catalog.mu.Unlock()
	r.cards.mu.Lock()
	defer r.cards.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[o.ID]
	if !ok {
		return orders.ErrNotFound
	}
	if !cur.Status.Cancellable() {
		return orders.ErrNotCancellable
	}

	// Productos borrados del catálogo no se reponen.
	deltas := map[string]int{}
	for _, it := range cur.Items {
		if _, exists := r.catalog.products[it.ProductID]; exists {
			deltas[it.ProductID] += it.Quantity
		}
	}
	if err := r.catalog.applyStockLocked(deltas); err != nil {
		return err
	}
	now := time.Now()
	if cur.DiscountKurus > 0 && cur.ShopCardCode != "" {
		if _, err := r.cards.adjustLocked(cur.ShopCardCode, cur.DiscountKurus, now); err != nil && !errors.Is(err, shopcards.ErrNotFound) {
			return err
		}
	}

	cur.Status = orders.StatusCancelled
	cur.UpdatedAt = now
	r.byID[cur.ID] = cur
	return nil
}

func (r *ordersRepo) UpdateStatus(ctx context.Context, id string, status orders.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.byID[id] = o
	return nil
}

func (r *ordersRepo) AdminList(ctx context.Context, f orders.AdminFilter) ([]orders.AdminRow, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Conteo por cliente (usuario o perfil de invitado) en una sola pasada.
	counts := map[string]int64{}
	matched := make([]orders.Order, 0)
	for _, o := range r.byID {
		counts[customerKey(o)]++
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		matched = append(matched, o)
	}
	sortNewestFirst(matched)

	total := int64(len(matched))
	start := f.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}

	rows := make([]orders.AdminRow, 0, end-start)
	for _, o := range matched[start:end] {
		rows = append(rows, orders.AdminRow{Order: cloneOrder(o), UserOrderCount: counts[customerKey(o)]})
	}
	return rows, total, nil
}

func customerKey(o orders.Order) string {
	switch {
	case o.UserID != nil:
		return "u:" + *o.UserID
	case o.GuestProfileID != nil:
		return "g:" + *o.GuestProfileID
	default:
		return "o:" + o.ID
	}
}

func (r *ordersRepo) CountByStatus(ctx context.Context) (map[orders.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[orders.Status]int64{}
	for _, o := range r.byID {
		out[o.Status]++
	}
	return out, nil
}
