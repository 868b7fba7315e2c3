package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petkimlik/internal/domain/cart"
)

type CartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) Load(ctx context.Context, userID string) (map[string]int, error) {
	var items []cart.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(items))
	for _, it := range items {
		out[it.ProductID] = it.Quantity
	}
	return out, nil
}

func (r *CartRepo) Save(ctx context.Context, userID string, items map[string]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveCart(tx, userID, items)
	})
}

// saveCart reemplaza el contenido del carrito dentro de tx.
func saveCart(tx *gorm.DB, userID string, items map[string]int) error {
	c := cart.Cart{ID: uuid.NewString(), UserID: userID}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Omit("Items").Create(&c).Error
	if err != nil {
		return err
	}
	// Con conflicto el id generado no es el real.
	if err := tx.Where("user_id = ?", userID).Take(&c).Error; err != nil {
		return err
	}

	if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
		return err
	}
	rows := make([]cart.CartItem, 0, len(items))
	for pid, q := range items {
		if q > 0 {
			rows = append(rows, cart.CartItem{CartID: c.ID, ProductID: pid, Quantity: q})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func clearCart(tx *gorm.DB, userID string) error {
	var c cart.Cart
	err := tx.Where("user_id = ?", userID).Take(&c).Error
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error
}
