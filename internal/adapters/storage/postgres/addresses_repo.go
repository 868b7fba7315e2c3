package postgres

import (
	"context"

	"gorm.io/gorm"

	"petkimlik/internal/domain/addresses"
)

type AddressesRepo struct {
	db *gorm.DB
}

func NewAddressesRepo(db *gorm.DB) *AddressesRepo {
	return &AddressesRepo{db: db}
}

func (r *AddressesRepo) ListByUser(ctx context.Context, userID string) ([]addresses.Address, error) {
	var out []addresses.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *AddressesRepo) GetByID(ctx context.Context, id string) (addresses.Address, error) {
	var a addresses.Address
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error
	return a, translate(err, addresses.ErrNotFound, nil)
}

func (r *AddressesRepo) Create(ctx context.Context, a addresses.Address) error {
	return r.db.WithContext(ctx).Select("*").Create(&a).Error
}

func (r *AddressesRepo) Update(ctx context.Context, a addresses.Address) error {
	res := r.db.WithContext(ctx).Model(&addresses.Address{ID: a.ID}).Select("*").Omit("created_at").Updates(&a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return addresses.ErrNotFound
	}
	return nil
}

func (r *AddressesRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&addresses.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return addresses.ErrNotFound
	}
	return nil
}

func (r *AddressesRepo) SetDefault(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&addresses.Address{}).
			Where("user_id = ? AND id <> ?", userID, id).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&addresses.Address{}).
			Where("user_id = ? AND id = ?", userID, id).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return addresses.ErrNotFound
		}
		return nil
	})
}
