package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"petkimlik/internal/domain/locations"
)

type locationsRepo struct {
	mu            sync.RWMutex
	seq           int64
	provinces     map[int64]locations.Province
	districts     map[int64]locations.District
	neighborhoods map[int64]locations.Neighborhood
}

func NewLocationsRepo() locations.Repository {
	return &locationsRepo{
		provinces:     map[int64]locations.Province{},
		districts:     map[int64]locations.District{},
		neighborhoods: map[int64]locations.Neighborhood{},
	}
}

func (r *locationsRepo) ListProvinces(ctx context.Context) ([]locations.Province, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]locations.Province, 0, len(r.provinces))
	for _, p := range r.provinces {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *locationsRepo) GetProvince(ctx context.Context, id int64) (locations.Province, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.provinces[id]
	if !ok {
		return locations.Province{}, locations.ErrNotFound
	}
	return p, nil
}

func (r *locationsRepo) ListDistricts(ctx context.Context, provinceID int64) ([]locations.District, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]locations.District, 0)
	for _, d := range r.districts {
		if d.ProvinceID == provinceID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *locationsRepo) GetDistrict(ctx context.Context, id int64) (locations.District, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.districts[id]
	if !ok {
		return locations.District{}, locations.ErrNotFound
	}
	return d, nil
}

func (r *locationsRepo) ListNeighborhoods(ctx context.Context, districtID int64) ([]locations.Neighborhood, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]locations.Neighborhood, 0)
	for _, n := range r.neighborhoods {
		if n.DistrictID == districtID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *locationsRepo) GetNeighborhood(ctx context.Context, id int64) (locations.Neighborhood, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.neighborhoods[id]
	if !ok {
		return locations.Neighborhood{}, locations.ErrNotFound
	}
	return n, nil
}

// Import trabaja sobre índices locales y solo publica al final: o entra todo o nada.
func (r *locationsRepo) Import(ctx context.Context, rows []locations.ImportRow, dryRun bool) (locations.ImportStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := locations.ImportStats{Rows: len(rows)}
	seq := r.seq

	provByName := map[string]locations.Province{}
	for _, p := range r.provinces {
		provByName[strings.ToLower(p.Name)] = p
	}
	distByKey := map[string]locations.District{}
	for _, d := range r.districts {
		distByKey[fmt.Sprintf("%d|%s", d.ProvinceID, strings.ToLower(d.Name))] = d
	}
	nbByKey := map[string]locations.Neighborhood{}
	for _, n := range r.neighborhoods {
		nbByKey[fmt.Sprintf("%d|%s", n.DistrictID, strings.ToLower(n.Name))] = n
	}

	var (
		newProv []locations.Province
		newDist []locations.District
		newNb   []locations.Neighborhood
	)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return locations.ImportStats{}, err
		}

		p, ok := provByName[strings.ToLower(row.Province)]
		if !ok {
			seq++
			p = locations.Province{ID: seq, Name: row.Province}
			provByName[strings.ToLower(row.Province)] = p
			newProv = append(newProv, p)
			stats.ProvincesCreated++
			stats.Lines = append(stats.Lines, "+ il "+p.Name)
		}

		dk := fmt.Sprintf("%d|%s", p.ID, strings.ToLower(row.District))
		d, ok := distByKey[dk]
		if !ok {
			seq++
			d = locations.District{ID: seq, ProvinceID: p.ID, Name: row.District}
			distByKey[dk] = d
			newDist = append(newDist, d)
			stats.DistrictsCreated++
			stats.Lines = append(stats.Lines, "+ ilçe "+p.Name+"/"+d.Name)
		}

		if row.Neighborhood == "" {
			continue
		}
		nk := fmt.Sprintf("%d|%s", d.ID, strings.ToLower(row.Neighborhood))
		if _, ok := nbByKey[nk]; !ok {
			seq++
			n := locations.Neighborhood{ID: seq, DistrictID: d.ID, Name: row.Neighborhood}
			nbByKey[nk] = n
			newNb = append(newNb, n)
			stats.NeighborhoodsCreated++
			stats.Lines = append(stats.Lines, "+ mahalle "+p.Name+"/"+d.Name+"/"+n.Name)
		}
	}

	if dryRun {
		return stats, nil
	}

	r.seq = seq
	for _, p := range newProv {
		r.provinces[p.ID] = p
	}
	for _, d := range newDist {
		r.districts[d.ID] = d
	}
	for _, n := range newNb {
		r.neighborhoods[n.ID] = n
	}
	return stats, nil
}
