package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petkimlik/internal/domain/listings"
)

type ListingsRepo struct {
	db *gorm.DB
}

func NewListingsRepo(db *gorm.DB) *ListingsRepo {
	return &ListingsRepo{db: db}
}

func (r *ListingsRepo) Create(ctx context.Context, l listings.Listing) error {
	return r.db.WithContext(ctx).Create(&l).Error
}

func (r *ListingsRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	var l listings.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&l).Error
	return l, translate(err, listings.ErrNotFound, nil)
}

func (r *ListingsRepo) Update(ctx context.Context, l listings.Listing) error {
	res := r.db.WithContext(ctx).Model(&listings.Listing{ID: l.ID}).Select("*").Omit("created_at").Updates(&l)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return listings.ErrNotFound
	}
	return nil
}

func (r *ListingsRepo) active(ctx context.Context, f listings.ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&listings.Listing{}).Where("status = ?", listings.StatusActive)
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.ProvinceID != 0 {
		q = q.Where("province_id = ?", f.ProvinceID)
	}
	return q
}

func (r *ListingsRepo) ListActive(ctx context.Context, f listings.ListFilter) ([]listings.Listing, int64, error) {
	var total int64
	if err := r.active(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.active(ctx, f).
		// Un solo ORDER BY: gorm descarta la Expression si luego se agregan columnas.
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "(boosted_until IS NOT NULL AND boosted_until > ?) DESC, created_at DESC, id ASC",
			Vars:               []any{f.Now},
			WithoutParentheses: true,
		}})
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []listings.Listing
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ListingsRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.active(ctx, listings.ListFilter{}).Count(&n).Error
	return n, err
}

func (r *ListingsRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) ([]listings.Listing, error) {
	var out []listings.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND created_at < ?", listings.StatusActive, cutoff).
			Order("created_at ASC").
			Find(&out).Error; err != nil {
			return err
		}
		if dryRun || len(out) == 0 {
			return nil
		}
		ids := make([]string, 0, len(out))
		for _, l := range out {
			ids = append(ids, l.ID)
		}
		return tx.Model(&listings.Listing{}).Where("id IN ?", ids).Update("status", listings.StatusExpired).Error
	})
	return out, err
}

func (r *ListingsRepo) ListPackages(ctx context.Context, activeOnly bool) ([]listings.CreditPackage, error) {
	q := r.db.WithContext(ctx).Order("credits ASC, name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []listings.CreditPackage
	err := q.Find(&out).Error
	return out, err
}

func (r *ListingsRepo) GetPackage(ctx context.Context, id string) (listings.CreditPackage, error) {
	var p listings.CreditPackage
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	return p, translate(err, listings.ErrPackageNotFound, nil)
}

func (r *ListingsRepo) CreatePackage(ctx context.Context, p listings.CreditPackage) error {
	return translate(r.db.WithContext(ctx).Select("*").Create(&p).Error, nil, listings.ErrPackageExists)
}

func balance(tx *gorm.DB, userID string) (int, error) {
	var sum int
	err := tx.Model(&listings.CreditTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

func (r *ListingsRepo) Balance(ctx context.Context, userID string) (int, error) {
	return balance(r.db.WithContext(ctx), userID)
}

// lockUser serializa movimientos de crédito del mismo usuario.
func lockUser(tx *gorm.DB, userID string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "credits:"+userID).Error
}

func (r *ListingsRepo) AddCredits(ctx context.Context, t listings.CreditTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.Amount < 0 {
			if err := lockUser(tx, t.UserID); err != nil {
				return err
			}
			bal, err := balance(tx, t.UserID)
			if err != nil {
				return err
			}
			if bal+t.Amount < 0 {
				return listings.ErrInsufficientCredits
			}
		}
		return tx.Create(&t).Error
	})
}

func (r *ListingsRepo) ListTransactions(ctx context.Context, userID string, limit int) ([]listings.CreditTransaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []listings.CreditTransaction
	err := q.Find(&out).Error
	return out, err
}

func (r *ListingsRepo) SpendForBoost(ctx context.Context, t listings.CreditTransaction, listingID string, days int) (listings.Listing, error) {
	var l listings.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, t.UserID); err != nil {
			return err
		}
		// La fila queda bloqueada hasta el commit y el vencimiento se calcula sobre ella.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", listingID).Take(&l).Error
		if err != nil {
			return translate(err, listings.ErrNotFound, nil)
		}
		bal, err := balance(tx, t.UserID)
		if err != nil {
			return err
		}
		if bal+t.Amount < 0 {
			return listings.ErrInsufficientCredits
		}
		until := l.BoostEnd(t.CreatedAt, days)
		res := tx.Model(&listings.Listing{ID: listingID}).Updates(map[string]any{
			"boosted_until": until,
			"updated_at":    t.CreatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		l.BoostedUntil = &until
		l.UpdatedAt = t.CreatedAt
		return tx.Create(&t).Error
	})
	if err != nil {
		return listings.Listing{}, err
	}
	return l, nil
}
