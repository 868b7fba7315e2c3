package catalog

import "context"

type Repository interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	GetProductByID(ctx context.Context, id string) (Product, error)
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	// GetProductsByIDs trae todo en una sola consulta (carrito, checkout).
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	CreateProduct(ctx context.Context, p Product) error
	// UpdateProduct reemplaza también las categorías.
	UpdateProduct(ctx context.Context, p Product) error
	// LowStock: threshold > 0 pisa el umbral de cada producto.
	LowStock(ctx context.Context, threshold int) ([]Product, error)
	CountProducts(ctx context.Context) (int64, error)

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategoriesBySlugs(ctx context.Context, slugs []string) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) error
}
