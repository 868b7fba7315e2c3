package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petkimlik/internal/domain/accounts"
)

type accountsRepo struct {
	mu      sync.RWMutex
	byID    map[string]accounts.User
	vendors map[string]accounts.VendorProfile
	guests  map[string]accounts.GuestProfile // por email
}

func NewAccountsRepo() accounts.Repository {
	return &accountsRepo{
		byID:    map[string]accounts.User{},
		vendors: map[string]accounts.VendorProfile{},
		guests:  map[string]accounts.GuestProfile{},
	}
}

func (r *accountsRepo) Create(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	if err := r.checkUniqueLocked(u); err != nil {
		return err
	}
	r.byID[u.ID] = u
	return nil
}

func (r *accountsRepo) Update(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return accounts.ErrNotFound
	}
	if err := r.checkUniqueLocked(u); err != nil {
		return err
	}
	r.byID[u.ID] = u
	return nil
}

// checkUniqueLocked replica los índices únicos (email, phone) de la tabla users.
func (r *accountsRepo) checkUniqueLocked(u accounts.User) error {
	for id, other := range r.byID {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return accounts.ErrEmailTaken
		}
		if u.Phone != nil && other.Phone != nil && *other.Phone == *u.Phone {
			return accounts.ErrPhoneTaken
		}
	}
	return nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return accounts.User{}, accounts.ErrNotFound
	}
	return u, nil
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return accounts.User{}, accounts.ErrNotFound
}

func (r *accountsRepo) GetByPhone(ctx context.Context, phone string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Phone != nil && *u.Phone == phone {
			return u, nil
		}
	}
	return accounts.User{}, accounts.ErrNotFound
}

func (r *accountsRepo) ListAll(ctx context.Context) ([]accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accounts.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *accountsRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *accountsRepo) GetVendorProfile(ctx context.Context, userID string) (accounts.VendorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.vendors[userID]
	if !ok {
		return accounts.VendorProfile{}, accounts.ErrNotFound
	}
	return p, nil
}

func (r *accountsRepo) SaveVendorProfile(ctx context.Context, p accounts.VendorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vendors[p.UserID] = p
	return nil
}

func (r *accountsRepo) GetGuestByEmail(ctx context.Context, email string) (accounts.GuestProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.guests[email]
	if !ok {
		return accounts.GuestProfile{}, accounts.ErrNotFound
	}
	return g, nil
}

func (r *accountsRepo) SaveGuest(ctx context.Context, g accounts.GuestProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.guests[g.Email] = g
	return nil
}

// SeedUser inserta un usuario tal cual, sin validar unicidad. Solo para tests de
// los fixers de duplicados (datos legacy que la base real ya contiene).
func SeedUser(repo accounts.Repository, u accounts.User) {
	if r, ok := repo.(*accountsRepo); ok {
		r.mu.Lock()
		r.byID[u.ID] = u
		r.mu.Unlock()
	}
}
