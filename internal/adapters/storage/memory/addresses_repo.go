package memory

import (
	"context"
	"sort"
	"sync"

	"petkimlik/internal/domain/addresses"
)

type addressesRepo struct {
	mu   sync.RWMutex
	byID map[string]addresses.Address
}

func NewAddressesRepo() addresses.Repository {
	return &addressesRepo{byID: map[string]addresses.Address{}}
}

func (r *addressesRepo) ListByUser(ctx context.Context, userID string) ([]addresses.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]addresses.Address, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	// default primero, después las más nuevas
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *addressesRepo) GetByID(ctx context.Context, id string) (addresses.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return addresses.Address{}, addresses.ErrNotFound
	}
	return a, nil
}

func (r *addressesRepo) Create(ctx context.Context, a addresses.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	return nil
}

func (r *addressesRepo) Update(ctx context.Context, a addresses.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return addresses.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *addressesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return addresses.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *addressesRepo) SetDefault(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.byID[id]
	if !ok || target.UserID != userID {
		return addresses.ErrNotFound
	}
	for k, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		a.IsDefault = k == id
		r.byID[k] = a
	}
	return nil
}
