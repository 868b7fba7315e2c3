package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petkimlik/internal/domain/shopcards"
)

type ShopCardsRepo struct {
	db *gorm.DB
}

func NewShopCardsRepo(db *gorm.DB) *ShopCardsRepo {
	return &ShopCardsRepo{db: db}
}

func (r *ShopCardsRepo) Create(ctx context.Context, c shopcards.ShopCard) error {
	return translate(r.db.WithContext(ctx).Select("*").Create(&c).Error, nil, shopcards.ErrCodeTaken)
}

func (r *ShopCardsRepo) GetByCode(ctx context.Context, code string) (shopcards.ShopCard, error) {
	var c shopcards.ShopCard
	err := r.db.WithContext(ctx).Where("code = ?", code).Take(&c).Error
	return c, translate(err, shopcards.ErrNotFound, nil)
}

func (r *ShopCardsRepo) List(ctx context.Context, limit int) ([]shopcards.ShopCard, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []shopcards.ShopCard
	err := q.Find(&out).Error
	return out, err
}

func (r *ShopCardsRepo) Adjust(ctx context.Context, code string, delta int64) (shopcards.ShopCard, error) {
	var c shopcards.ShopCard
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		c, err = adjustCard(tx, code, delta)
		return err
	})
	return c, err
}

// adjustCard bloquea la fila (FOR UPDATE) y aplica delta dentro de tx.
func adjustCard(tx *gorm.DB, code string, delta int64) (shopcards.ShopCard, error) {
	var c shopcards.ShopCard
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).Take(&c).Error
	if err != nil {
		return shopcards.ShopCard{}, translate(err, shopcards.ErrNotFound, nil)
	}
	if c.BalanceKurus+delta < 0 {
		return shopcards.ShopCard{}, shopcards.ErrInsufficient
	}
	c.BalanceKurus += delta
	if err := tx.Model(&c).Update("balance_kurus", c.BalanceKurus).Error; err != nil {
		return shopcards.ShopCard{}, err
	}
	return c, nil
}
