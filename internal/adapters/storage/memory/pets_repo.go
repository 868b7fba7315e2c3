package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petkimlik/internal/domain/pets"
)

type petRepo struct {
	mu       sync.RWMutex
	byID     map[string]pets.Animal
	profiles map[string]pets.AnimalProfile
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID:     make(map[string]pets.Animal),
		profiles: make(map[string]pets.AnimalProfile),
	}
}

func (r *petRepo) Create(ctx context.Context, a pets.Animal, p pets.AnimalProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("pet already exists")
	}
	if r.chipTakenLocked(a) {
		return pets.ErrMicrochipTaken
	}
	r.byID[a.ID] = a
	p.AnimalID = a.ID
	r.profiles[a.ID] = p
	return nil
}

func (r *petRepo) Update(ctx context.Context, a pets.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return pets.ErrNotFound
	}
	if r.chipTakenLocked(a) {
		return pets.ErrMicrochipTaken
	}
	r.byID[a.ID] = a
	return nil
}

func (r *petRepo) chipTakenLocked(a pets.Animal) bool {
	if a.Microchip == nil {
		return false
	}
	for id, other := range r.byID {
		if id != a.ID && other.Microchip != nil && *other.Microchip == *a.Microchip {
			return true
		}
	}
	return false
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return pets.Animal{}, pets.ErrNotFound
	}
	return a, nil
}

func (r *petRepo) GetByMicrochip(ctx context.Context, chip string) (pets.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.Microchip != nil && *a.Microchip == chip {
			return a, nil
		}
	}
	return pets.Animal{}, pets.ErrNotFound
}

func (r *petRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Animal, 0)
	for _, a := range r.byID {
		if a.OwnerUserID == ownerUserID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *petRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *petRepo) GetProfile(ctx context.Context, animalID string) (pets.AnimalProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[animalID]
	if !ok {
		return pets.AnimalProfile{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) SaveProfile(ctx context.Context, p pets.AnimalProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.AnimalID]; !ok {
		return pets.ErrNotFound
	}
	r.profiles[p.AnimalID] = p
	return nil
}
