package locations

import "context"

type Repository interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	GetProvince(ctx context.Context, id int64) (Province, error)
	ListDistricts(ctx context.Context, provinceID int64) ([]District, error)
	GetDistrict(ctx context.Context, id int64) (District, error)
	ListNeighborhoods(ctx context.Context, districtID int64) ([]Neighborhood, error)
	GetNeighborhood(ctx context.Context, id int64) (Neighborhood, error)

	// Import hace get-or-create de todas las filas en una sola transacción.
	// Con dryRun calcula las mismas estadísticas y no persiste nada.
	Import(ctx context.Context, rows []ImportRow, dryRun bool) (ImportStats, error)
}
