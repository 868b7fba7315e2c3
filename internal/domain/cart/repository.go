package cart

import "context"

// Repository guarda el carrito de usuarios registrados como mapa productID -> qty.
type Repository interface {
	Load(ctx context.Context, userID string) (map[string]int, error)
	// Save reemplaza todo el contenido; un mapa vacío vacía el carrito.
	Save(ctx context.Context, userID string, items map[string]int) error
}
