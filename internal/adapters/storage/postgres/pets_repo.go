package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petkimlik/internal/domain/pets"
	"petkimlik/internal/platform/textnorm"
)

type PetsRepo struct {
	db *gorm.DB
}

func NewPetsRepo(db *gorm.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

// Create inserta mascota y perfil juntos.
func (r *PetsRepo) Create(ctx context.Context, a pets.Animal, p pets.AnimalProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("*").Create(&a).Error; err != nil {
			return translate(err, nil, pets.ErrMicrochipTaken)
		}
		return tx.Select("*").Create(&p).Error
	})
}

func (r *PetsRepo) Update(ctx context.Context, a pets.Animal) error {
	res := r.db.WithContext(ctx).Model(&pets.Animal{ID: a.ID}).Select("*").Omit("created_at").Updates(&a)
	if res.Error != nil {
		return translate(res.Error, nil, pets.ErrMicrochipTaken)
	}
	if res.RowsAffected == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Animal, error) {
	var a pets.Animal
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error
	return a, translate(err, pets.ErrNotFound, nil)
}

func (r *PetsRepo) GetByMicrochip(ctx context.Context, chip string) (pets.Animal, error) {
	var a pets.Animal
	err := r.db.WithContext(ctx).Where("microchip = ?", chip).Take(&a).Error
	return a, translate(err, pets.ErrNotFound, nil)
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Animal, error) {
	var out []pets.Animal
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *PetsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&pets.Animal{}).Count(&n).Error
	return n, err
}

func (r *PetsRepo) GetProfile(ctx context.Context, animalID string) (pets.AnimalProfile, error) {
	var p pets.AnimalProfile
	err := r.db.WithContext(ctx).Where("animal_id = ?", animalID).Take(&p).Error
	return p, translate(err, pets.ErrNotFound, nil)
}

func (r *PetsRepo) SaveProfile(ctx context.Context, p pets.AnimalProfile) error {
	return r.db.WithContext(ctx).Select("*").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "animal_id"}},
		UpdateAll: true,
	}).Create(&p).Error
}

type PetCatalogRepo struct {
	db *gorm.DB
}

func NewPetCatalogRepo(db *gorm.DB) *PetCatalogRepo {
	return &PetCatalogRepo{db: db}
}

func (r *PetCatalogRepo) ListSpecies(ctx context.Context) ([]pets.Species, error) {
	var out []pets.Species
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *PetCatalogRepo) GetSpecies(ctx context.Context, id int64) (pets.Species, error) {
	var s pets.Species
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	return s, translate(err, pets.ErrNotFound, nil)
}

func (r *PetCatalogRepo) ListBreeds(ctx context.Context, speciesID int64) ([]pets.Breed, error) {
	var out []pets.Breed
	err := r.db.WithContext(ctx).Where("species_id = ?", speciesID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *PetCatalogRepo) GetBreed(ctx context.Context, id int64) (pets.Breed, error) {
	var b pets.Breed
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&b).Error
	return b, translate(err, pets.ErrNotFound, nil)
}

func (r *PetCatalogRepo) ImportBreeds(ctx context.Context, rows []pets.BreedRow, dryRun bool) (pets.BreedImportStats, error) {
	stats := pets.BreedImportStats{Rows: len(rows)}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		species := map[string]pets.Species{}
		for _, row := range rows {
			slug := textnorm.Slug(row.Species)
			sp, ok := species[slug]
			if !ok {
				var created bool
				var err error
				sp, created, err = firstOrCreate(tx, pets.Species{Name: row.Species, Slug: slug}, "slug = ?", slug)
				if err != nil {
					return err
				}
				species[slug] = sp
				if created {
					stats.SpeciesCreated++
					stats.Lines = append(stats.Lines, "+ tür "+sp.Name)
				}
			}

			b, created, err := firstOrCreate(tx, pets.Breed{SpeciesID: sp.ID, Name: row.Breed},
				"species_id = ? AND lower(name) = ?", sp.ID, strings.ToLower(row.Breed))
			if err != nil {
				return err
			}
			if created {
				stats.BreedsCreated++
				stats.Lines = append(stats.Lines, "+ ırk "+sp.Name+"/"+b.Name)
			}
		}
		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return pets.BreedImportStats{}, err
	}
	return stats, nil
}
