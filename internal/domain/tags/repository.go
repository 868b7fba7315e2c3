package tags

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, items []Tag) error
	GetByCode(ctx context.Context, code string) (Tag, error)
	Update(ctx context.Context, t Tag) error
	// Activate asigna la etiqueta solo si sigue libre; si no, ErrAlreadyActive.
	Activate(ctx context.Context, t Tag) error
	ListByAnimal(ctx context.Context, animalID string) ([]Tag, error)
	CountActive(ctx context.Context) (int64, error)

	AddScan(ctx context.Context, s TagScan) error
	// ListScansByAnimal devuelve las más recientes primero.
	ListScansByAnimal(ctx context.Context, animalID string, limit int) ([]TagScan, error)
}
