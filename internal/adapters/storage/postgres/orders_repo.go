package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/orders"
	"petkimlik/internal/domain/shopcards"
)

type OrdersRepo struct {
	db *gorm.DB
}

func NewOrdersRepo(db *gorm.DB) *OrdersRepo {
	return &OrdersRepo{db: db}
}

// Place: stock, tarjeta, pedido y carrito en una transacción.
func (r *OrdersRepo) Place(ctx context.Context, in orders.PlaceInput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deltas := make(map[string]int, len(in.StockDeltas))
		for id, q := range in.StockDeltas {
			if q <= 0 {
				return fmt.Errorf("postgres: invalid stock delta for %s", id)
			}
			deltas[id] = -q
		}
		if err := applyStock(tx, deltas); err != nil {
			return err
		}

		if in.CardDebit > 0 {
			if _, err := adjustCard(tx, in.Order.ShopCardCode, -in.CardDebit); err != nil {
				return err
			}
		}

		o := in.Order
		if err := tx.Create(&o).Error; err != nil {
			return translate(err, nil, orders.ErrNumberTaken)
		}

		if in.ClearCartUserID != "" {
			if err := clearCart(tx, in.ClearCartUserID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OrdersRepo) GetByID(ctx context.Context, id string) (orders.Order, error) {
	var o orders.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).Take(&o).Error
	return o, translate(err, orders.ErrNotFound, nil)
}

func (r *OrdersRepo) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	var out []orders.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, number DESC").
		Find(&out).Error
	return out, err
}

func (r *OrdersRepo) Cancel(ctx context.Context, o orders.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur orders.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", o.ID).Take(&cur).Error
		if err != nil {
			return translate(err, orders.ErrNotFound, nil)
		}
		if !cur.Status.Cancellable() {
			return orders.ErrNotCancellable
		}

		var items []orders.OrderItem
		if err := tx.Where("order_id = ?", cur.ID).Find(&items).Error; err != nil {
			return err
		}
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		var existing []string
		if len(ids) > 0 {
			if err := tx.Model(&catalog.Product{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
				return err
			}
		}
		alive := make(map[string]bool, len(existing))
		for _, id := range existing {
			alive[id] = true
		}
		deltas := map[string]int{}
		for _, it := range items {
			if alive[it.ProductID] {
				deltas[it.ProductID] += it.Quantity
			}
		}
		if err := applyStock(tx, deltas); err != nil {
			return err
		}

		if cur.DiscountKurus > 0 && cur.ShopCardCode != "" {
			if _, err := adjustCard(tx, cur.ShopCardCode, cur.DiscountKurus); err != nil && !errors.Is(err, shopcards.ErrNotFound) {
				return err
			}
		}

		return tx.Model(&orders.Order{ID: cur.ID}).Update("status", orders.StatusCancelled).Error
	})
}

func (r *OrdersRepo) UpdateStatus(ctx context.Context, id string, status orders.Status) error {
	res := r.db.WithContext(ctx).Model(&orders.Order{ID: id}).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orders.ErrNotFound
	}
	return nil
}

type adminRowScan struct {
	orders.Order   `gorm:"embedded"`
	UserOrderCount int64
}

// AdminList usa tres consultas fijas: total, página con conteo por cliente
// (subconsulta agrupada) e ítems de la página.
func (r *OrdersRepo) AdminList(ctx context.Context, f orders.AdminFilter) ([]orders.AdminRow, int64, error) {
	db := r.db.WithContext(ctx)

	base := db.Model(&orders.Order{})
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	counts := db.Model(&orders.Order{}).
		Select("COALESCE(user_id, guest_profile_id) AS customer_id, COUNT(*) AS n").
		Group("COALESCE(user_id, guest_profile_id)")

	q := db.Table("orders AS o").
		Select("o.*, c.n AS user_order_count").
		Joins("JOIN (?) AS c ON c.customer_id = COALESCE(o.user_id, o.guest_profile_id)", counts)
	if f.Status != "" {
		q = q.Where("o.status = ?", f.Status)
	}
	q = q.Order("o.created_at DESC, o.number DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var scanned []adminRowScan
	if err := q.Scan(&scanned).Error; err != nil {
		return nil, 0, err
	}
	if len(scanned) == 0 {
		return []orders.AdminRow{}, total, nil
	}

	ids := make([]string, 0, len(scanned))
	for _, s := range scanned {
		ids = append(ids, s.ID)
	}
	var items []orders.OrderItem
	if err := db.Where("order_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	byOrder := map[string][]orders.OrderItem{}
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]orders.AdminRow, 0, len(scanned))
	for _, s := range scanned {
		o := s.Order
		o.Items = byOrder[o.ID]
		out = append(out, orders.AdminRow{Order: o, UserOrderCount: s.UserOrderCount})
	}
	return out, total, nil
}

func (r *OrdersRepo) CountByStatus(ctx context.Context) (map[orders.Status]int64, error) {
	var rows []struct {
		Status orders.Status
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&orders.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[orders.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
