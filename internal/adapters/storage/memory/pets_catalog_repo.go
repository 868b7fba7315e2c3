package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"petkimlik/internal/domain/pets"
	"petkimlik/internal/platform/textnorm"
)

type petCatalogRepo struct {
	mu      sync.RWMutex
	seq     int64
	species map[int64]pets.Species
	breeds  map[int64]pets.Breed
}

func NewPetCatalogRepo() pets.CatalogRepository {
	return &petCatalogRepo{
		species: map[int64]pets.Species{},
		breeds:  map[int64]pets.Breed{},
	}
}

func (r *petCatalogRepo) ListSpecies(ctx context.Context) ([]pets.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Species, 0, len(r.species))
	for _, s := range r.species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *petCatalogRepo) GetSpecies(ctx context.Context, id int64) (pets.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.species[id]
	if !ok {
		return pets.Species{}, pets.ErrNotFound
	}
	return s, nil
}

func (r *petCatalogRepo) ListBreeds(ctx context.Context, speciesID int64) ([]pets.Breed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Breed, 0)
	for _, b := range r.breeds {
		if b.SpeciesID == speciesID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *petCatalogRepo) GetBreed(ctx context.Context, id int64) (pets.Breed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.breeds[id]
	if !ok {
		return pets.Breed{}, pets.ErrNotFound
	}
	return b, nil
}

// ImportBreeds sigue el mismo esquema que locationsRepo.Import.
func (r *petCatalogRepo) ImportBreeds(ctx context.Context, rows []pets.BreedRow, dryRun bool) (pets.BreedImportStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := pets.BreedImportStats{Rows: len(rows)}
	seq := r.seq

	spBySlug := map[string]pets.Species{}
	for _, s := range r.species {
		spBySlug[s.Slug] = s
	}
	brByKey := map[string]pets.Breed{}
	for _, b := range r.breeds {
		brByKey[fmt.Sprintf("%d|%s", b.SpeciesID, strings.ToLower(b.Name))] = b
	}

	var (
		newSp []pets.Species
		newBr []pets.Breed
	)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return pets.BreedImportStats{}, err
		}

		slug := textnorm.Slug(row.Species)
		sp, ok := spBySlug[slug]
		if !ok {
			seq++
			sp = pets.Species{ID: seq, Name: row.Species, Slug: slug}
			spBySlug[slug] = sp
			newSp = append(newSp, sp)
			stats.SpeciesCreated++
			stats.Lines = append(stats.Lines, "+ tür "+sp.Name)
		}

		key := fmt.Sprintf("%d|%s", sp.ID, strings.ToLower(row.Breed))
		if _, ok := brByKey[key]; ok {
			continue
		}
		seq++
		b := pets.Breed{ID: seq, SpeciesID: sp.ID, Name: row.Breed}
		brByKey[key] = b
		newBr = append(newBr, b)
		stats.BreedsCreated++
		stats.Lines = append(stats.Lines, "+ ırk "+sp.Name+"/"+b.Name)
	}

	if dryRun {
		return stats, nil
	}

	r.seq = seq
	for _, s := range newSp {
		r.species[s.ID] = s
	}
	for _, b := range newBr {
		r.breeds[b.ID] = b
	}
	return stats, nil
}
