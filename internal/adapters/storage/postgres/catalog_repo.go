package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"petkimlik/internal/domain/catalog"
)

type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) filtered(ctx context.Context, f catalog.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&catalog.Product{})
	if f.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategorySlug != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = products.id AND c.slug = ?)`, f.CategorySlug)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + escapeLike(s) + "%"
		q = q.Where("(products.name ILIKE ? OR products.description ILIKE ?)", like, like)
	}
	return q
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListProducts: un COUNT y un SELECT, más un preload de categorías.
func (r *CatalogRepo) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.filtered(ctx, f).Preload("Categories").Order("products.name ASC, products.id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []catalog.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CatalogRepo) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := r.db.WithContext(ctx).Preload("Categories").Where("id = ?", id).Take(&p).Error
	return p, translate(err, catalog.ErrNotFound, nil)
}

func (r *CatalogRepo) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	var p catalog.Product
	err := r.db.WithContext(ctx).Preload("Categories").Where("slug = ?", slug).Take(&p).Error
	return p, translate(err, catalog.ErrNotFound, nil)
}

func (r *CatalogRepo) GetProductsByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	out := make(map[string]catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats := p.Categories
		p.Categories = nil
		if err := tx.Select("*").Omit("Categories").Create(&p).Error; err != nil {
			return translate(err, nil, catalog.ErrSlugTaken)
		}
		if len(cats) == 0 {
			return nil
		}
		return tx.Model(&p).Association("Categories").Replace(cats)
	})
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats := p.Categories
		p.Categories = nil
		res := tx.Model(&catalog.Product{ID: p.ID}).Select("*").Omit("Categories", "created_at").Updates(&p)
		if res.Error != nil {
			return translate(res.Error, nil, catalog.ErrSlugTaken)
		}
		if res.RowsAffected == 0 {
			return catalog.ErrNotFound
		}
		return tx.Model(&catalog.Product{ID: p.ID}).Association("Categories").Replace(cats)
	})
}

func (r *CatalogRepo) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if threshold > 0 {
		q = q.Where("stock <= ?", threshold)
	} else {
		q = q.Where("stock <= low_stock_threshold")
	}
	var out []catalog.Product
	err := q.Order("stock ASC, name ASC").Find(&out).Error
	return out, err
}

func (r *CatalogRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&n).Error
	return n, err
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *CatalogRepo) GetCategoriesBySlugs(ctx context.Context, slugs []string) ([]catalog.Category, error) {
	var out []catalog.Category
	if len(slugs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&out).Error
	return out, err
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c catalog.Category) error {
	return translate(r.db.WithContext(ctx).Create(&c).Error, nil, catalog.ErrSlugTaken)
}

// applyStock descuenta (delta < 0) o repone stock dentro de tx. El UPDATE
// condicional evita vender más de lo que hay sin bloquear la tabla.
func applyStock(tx *gorm.DB, deltas map[string]int) error {
	for id, d := range deltas {
		res := tx.Model(&catalog.Product{}).
			Where("id = ? AND stock + ? >= 0", id, d).
			UpdateColumn("stock", gorm.Expr("stock + ?", d))
		if res.Error != nil {
			return fmt.Errorf("apply stock %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&catalog.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return catalog.ErrNotFound
			}
			return catalog.ErrOutOfStock
		}
	}
	return nil
}
