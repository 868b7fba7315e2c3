package pets

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal, p AnimalProfile) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	GetByMicrochip(ctx context.Context, chip string) (Animal, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error)
	Count(ctx context.Context) (int64, error)

	GetProfile(ctx context.Context, animalID string) (AnimalProfile, error)
	SaveProfile(ctx context.Context, p AnimalProfile) error
}

// CatalogRepository: especies y razas.
type CatalogRepository interface {
	ListSpecies(ctx context.Context) ([]Species, error)
	GetSpecies(ctx context.Context, id int64) (Species, error)
	ListBreeds(ctx context.Context, speciesID int64) ([]Breed, error)
	GetBreed(ctx context.Context, id int64) (Breed, error)

	// ImportBreeds hace get-or-create en una transacción; dryRun no persiste.
	ImportBreeds(ctx context.Context, rows []BreedRow, dryRun bool) (BreedImportStats, error)
}
