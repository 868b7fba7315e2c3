package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"petkimlik/internal/domain/shopcards"
)

type shopCardsRepo struct {
	mu     sync.RWMutex
	byCode map[string]shopcards.ShopCard
}

func NewShopCardsRepo() shopcards.Repository {
	return &shopCardsRepo{byCode: map[string]shopcards.ShopCard{}}
}

func (r *shopCardsRepo) Create(ctx context.Context, c shopcards.ShopCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[c.Code]; exists {
		return shopcards.ErrCodeTaken
	}
	r.byCode[c.Code] = c
	return nil
}

func (r *shopCardsRepo) GetByCode(ctx context.Context, code string) (shopcards.ShopCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byCode[code]
	if !ok {
		return shopcards.ShopCard{}, shopcards.ErrNotFound
	}
	return c, nil
}

func (r *shopCardsRepo) List(ctx context.Context, limit int) ([]shopcards.ShopCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shopcards.ShopCard, 0, len(r.byCode))
	for _, c := range r.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *shopCardsRepo) Adjust(ctx context.Context, code string, delta int64) (shopcards.ShopCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adjustLocked(code, delta, time.Now())
}

func (r *shopCardsRepo) adjustLocked(code string, delta int64, now time.Time) (shopcards.ShopCard, error) {
	c, ok := r.byCode[code]
	if !ok {
		return shopcards.ShopCard{}, shopcards.ErrNotFound
	}
	if c.BalanceKurus+delta < 0 {
		return shopcards.ShopCard{}, shopcards.ErrInsufficient
	}
	c.BalanceKurus += delta
	c.UpdatedAt = now
	r.byCode[code] = c
	return c, nil
}
