package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/platform/textnorm"
)

type catalogRepo struct {
	mu         sync.RWMutex
	products   map[string]catalog.Product
	categories map[string]catalog.Category // por id
}

func NewCatalogRepo() catalog.Repository {
	return &catalogRepo{
		products:   map[string]catalog.Product{},
		categories: map[string]catalog.Category{},
	}
}

func cloneProduct(p catalog.Product) catalog.Product {
	if p.Categories != nil {
		p.Categories = append([]catalog.Category(nil), p.Categories...)
	}
	return p
}

func (r *catalogRepo) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := textnorm.LowerTR(f.Query)
	matched := make([]catalog.Product, 0)
	for _, p := range r.products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.CategorySlug != "" && !p.HasCategory(f.CategorySlug) {
			continue
		}
		if q != "" && !strings.Contains(textnorm.LowerTR(p.Name+" "+p.Description), q) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name == matched[j].Name {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Name < matched[j].Name
	})

	total := int64(len(matched))
	start := f.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}

	out := make([]catalog.Product, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, cloneProduct(p))
	}
	return out, total, nil
}

func (r *catalogRepo) GetProductByID(ctx context.Context, id string) (catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *catalogRepo) GetProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (r *catalogRepo) GetProductsByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (r *catalogRepo) slugTakenLocked(slug, selfID string) bool {
	for id, p := range r.products {
		if id != selfID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *catalogRepo) CreateProduct(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTakenLocked(p.Slug, p.ID) {
		return catalog.ErrSlugTaken
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	if r.slugTakenLocked(p.Slug, p.ID) {
		return catalog.ErrSlugTaken
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *catalogRepo) LowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Product, 0)
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		limit := p.LowStockThreshold
		if threshold > 0 {
			limit = threshold
		}
		if p.Stock <= limit {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock == out[j].Stock {
			return out[i].Name < out[j].Name
		}
		return out[i].Stock < out[j].Stock
	})
	return out, nil
}

func (r *catalogRepo) CountProducts(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *catalogRepo) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *catalogRepo) GetCategoriesBySlugs(ctx context.Context, slugs []string) ([]catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := map[string]struct{}{}
	for _, s := range slugs {
		want[s] = struct{}{}
	}
	out := make([]catalog.Category, 0, len(slugs))
	for _, c := range r.categories {
		if _, ok := want[c.Slug]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *catalogRepo) CreateCategory(ctx context.Context, c catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.categories {
		if existing.Slug == c.Slug {
			return catalog.ErrSlugTaken
		}
	}
	r.categories[c.ID] = c
	return nil
}

// applyStockLocked aplica deltas (negativo = venta) todo o nada.
// El caller debe tener r.mu tomado en escritura.
func (r *catalogRepo) applyStockLocked(deltas map[string]int) error {
	for id, d := range deltas {
		p, ok := r.products[id]
		if !ok {
			return catalog.ErrNotFound
		}
		if p.Stock+d < 0 {
			return catalog.ErrOutOfStock
		}
	}
	for id, d := range deltas {
		p := r.products[id]
		p.Stock += d
		r.products[id] = p
	}
	return nil
}
