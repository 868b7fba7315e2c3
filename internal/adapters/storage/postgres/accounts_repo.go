package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petkimlik/internal/domain/accounts"
)

type AccountsRepo struct {
	db *gorm.DB
}

func NewAccountsRepo(db *gorm.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

// userConflict distingue email y teléfono por el nombre del índice.
func userConflict(err error) error {
	name, ok := uniqueConstraint(err)
	if !ok {
		return err
	}
	if strings.Contains(name, "phone") {
		return accounts.ErrPhoneTaken
	}
	return accounts.ErrEmailTaken
}

func (r *AccountsRepo) Create(ctx context.Context, u accounts.User) error {
	// Select("*") para que is_active=false no caiga en el default de la columna.
	return userConflict(r.db.WithContext(ctx).Select("*").Create(&u).Error)
}

func (r *AccountsRepo) Update(ctx context.Context, u accounts.User) error {
	res := r.db.WithContext(ctx).Model(&accounts.User{ID: u.ID}).Select("*").Omit("created_at").Updates(&u)
	if res.Error != nil {
		return userConflict(res.Error)
	}
	if res.RowsAffected == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	var u accounts.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	return u, translate(err, accounts.ErrNotFound, nil)
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (accounts.User, error) {
	var u accounts.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error
	return u, translate(err, accounts.ErrNotFound, nil)
}

func (r *AccountsRepo) GetByPhone(ctx context.Context, phone string) (accounts.User, error) {
	var u accounts.User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).Take(&u).Error
	return u, translate(err, accounts.ErrNotFound, nil)
}

func (r *AccountsRepo) ListAll(ctx context.Context) ([]accounts.User, error) {
	var out []accounts.User
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *AccountsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&accounts.User{}).Count(&n).Error
	return n, err
}

func (r *AccountsRepo) GetVendorProfile(ctx context.Context, userID string) (accounts.VendorProfile, error) {
	var p accounts.VendorProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error
	return p, translate(err, accounts.ErrNotFound, nil)
}

func (r *AccountsRepo) SaveVendorProfile(ctx context.Context, p accounts.VendorProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&p).Error
}

func (r *AccountsRepo) GetGuestByEmail(ctx context.Context, email string) (accounts.GuestProfile, error) {
	var g accounts.GuestProfile
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&g).Error
	return g, translate(err, accounts.ErrNotFound, nil)
}

func (r *AccountsRepo) SaveGuest(ctx context.Context, g accounts.GuestProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "phone", "updated_at"}),
	}).Create(&g).Error
}
