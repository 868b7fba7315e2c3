package memory

import (
	"context"
	"sync"

	"petkimlik/internal/domain/cart"
)

type cartRepo struct {
	mu     sync.RWMutex
	byUser map[string]map[string]int
}

func NewCartRepo() cart.Repository {
	return &cartRepo{byUser: map[string]map[string]int{}}
}

func copyItems(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func (r *cartRepo) Load(ctx context.Context, userID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyItems(r.byUser[userID]), nil
}

func (r *cartRepo) Save(ctx context.Context, userID string, items map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(items) == 0 {
		delete(r.byUser, userID)
		return nil
	}
	r.byUser[userID] = copyItems(items)
	return nil
}

func (r *cartRepo) clearLocked(userID string) {
	delete(r.byUser, userID)
}
