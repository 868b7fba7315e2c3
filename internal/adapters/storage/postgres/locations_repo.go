package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"petkimlik/internal/domain/locations"
)

type LocationsRepo struct {
	db *gorm.DB
}

func NewLocationsRepo(db *gorm.DB) *LocationsRepo {
	return &LocationsRepo{db: db}
}

func (r *LocationsRepo) ListProvinces(ctx context.Context) ([]locations.Province, error) {
	var out []locations.Province
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *LocationsRepo) GetProvince(ctx context.Context, id int64) (locations.Province, error) {
	var p locations.Province
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	return p, translate(err, locations.ErrNotFound, nil)
}

func (r *LocationsRepo) ListDistricts(ctx context.Context, provinceID int64) ([]locations.District, error) {
	var out []locations.District
	err := r.db.WithContext(ctx).Where("province_id = ?", provinceID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *LocationsRepo) GetDistrict(ctx context.Context, id int64) (locations.District, error) {
	var d locations.District
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&d).Error
	return d, translate(err, locations.ErrNotFound, nil)
}

func (r *LocationsRepo) ListNeighborhoods(ctx context.Context, districtID int64) ([]locations.Neighborhood, error) {
	var out []locations.Neighborhood
	err := r.db.WithContext(ctx).Where("district_id = ?", districtID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *LocationsRepo) GetNeighborhood(ctx context.Context, id int64) (locations.Neighborhood, error) {
	var n locations.Neighborhood
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&n).Error
	return n, translate(err, locations.ErrNotFound, nil)
}

// errDryRun fuerza el rollback de la transacción en modo vista previa.
var errDryRun = errors.New("dry run")

// Import hace get-or-create fila por fila dentro de una transacción.
// En dry-run la misma transacción se revierte al final.
func (r *LocationsRepo) Import(ctx context.Context, rows []locations.ImportRow, dryRun bool) (locations.ImportStats, error) {
	stats := locations.ImportStats{Rows: len(rows)}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		provs := map[string]locations.Province{}
		dists := map[string]locations.District{}

		for _, row := range rows {
			pk := strings.ToLower(row.Province)
			p, ok := provs[pk]
			if !ok {
				var created bool
				var err error
				p, created, err = firstOrCreate(tx, locations.Province{Name: row.Province}, "name = ?", row.Province)
				if err != nil {
					return err
				}
				provs[pk] = p
				if created {
					stats.ProvincesCreated++
					stats.Lines = append(stats.Lines, "+ il "+p.Name)
				}
			}

			dk := pk + "|" + strings.ToLower(row.District)
			d, ok := dists[dk]
			if !ok {
				var created bool
				var err error
				d, created, err = firstOrCreate(tx, locations.District{ProvinceID: p.ID, Name: row.District},
					"province_id = ? AND name = ?", p.ID, row.District)
				if err != nil {
					return err
				}
				dists[dk] = d
				if created {
					stats.DistrictsCreated++
					stats.Lines = append(stats.Lines, "+ ilçe "+p.Name+"/"+d.Name)
				}
			}

			if row.Neighborhood == "" {
				continue
			}
			n, created, err := firstOrCreate(tx, locations.Neighborhood{DistrictID: d.ID, Name: row.Neighborhood},
				"district_id = ? AND name = ?", d.ID, row.Neighborhood)
			if err != nil {
				return err
			}
			if created {
				stats.NeighborhoodsCreated++
				stats.Lines = append(stats.Lines, "+ mahalle "+p.Name+"/"+d.Name+"/"+n.Name)
			}
		}

		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return locations.ImportStats{}, err
	}
	return stats, nil
}

// firstOrCreate busca por where y si no existe inserta v.
func firstOrCreate[T any](tx *gorm.DB, v T, where string, args ...any) (T, bool, error) {
	var found T
	err := tx.Where(where, args...).Take(&found).Error
	if err == nil {
		return found, false, nil
	}
	if !isNotFound(err) {
		return found, false, err
	}
	if err := tx.Create(&v).Error; err != nil {
		return v, false, err
	}
	return v, true, nil
}
