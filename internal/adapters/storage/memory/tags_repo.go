package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"petkimlik/internal/domain/tags"
)

type tagsRepo struct {
	mu     sync.RWMutex
	byCode map[string]tags.Tag
	scans  []tags.TagScan
}

func NewTagsRepo() tags.Repository {
	return &tagsRepo{byCode: map[string]tags.Tag{}}
}

func (r *tagsRepo) CreateBatch(ctx context.Context, items []tags.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range items {
		if _, exists := r.byCode[t.Code]; exists {
			return errors.New("tag code already exists")
		}
	}
	for _, t := range items {
		r.byCode[t.Code] = t
	}
	return nil
}

func (r *tagsRepo) GetByCode(ctx context.Context, code string) (tags.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byCode[code]
	if !ok {
		return tags.Tag{}, tags.ErrNotFound
	}
	return t, nil
}

func (r *tagsRepo) Update(ctx context.Context, t tags.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[t.Code]; !ok {
		return tags.ErrNotFound
	}
	r.byCode[t.Code] = t
	return nil
}

func (r *tagsRepo) Activate(ctx context.Context, t tags.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byCode[t.Code]
	if !ok {
		return tags.ErrNotFound
	}
	if cur.Assigned() {
		return tags.ErrAlreadyActive
	}
	r.byCode[t.Code] = t
	return nil
}

func (r *tagsRepo) ListByAnimal(ctx context.Context, animalID string) ([]tags.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tags.Tag, 0)
	for _, t := range r.byCode {
		if t.AnimalID != nil && *t.AnimalID == animalID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *tagsRepo) CountActive(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, t := range r.byCode {
		if t.Assigned() {
			n++
		}
	}
	return n, nil
}

func (r *tagsRepo) AddScan(ctx context.Context, s tags.TagScan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scans = append(r.scans, s)
	return nil
}

func (r *tagsRepo) ListScansByAnimal(ctx context.Context, animalID string, limit int) ([]tags.TagScan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tags.TagScan, 0)
	// append-only: recorrer al revés da más recientes primero
	for i := len(r.scans) - 1; i >= 0; i-- {
		s := r.scans[i]
		if s.AnimalID != nil && *s.AnimalID == animalID {
			out = append(out, s)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
