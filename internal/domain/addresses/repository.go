package addresses

import "context"

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	GetByID(ctx context.Context, id string) (Address, error)
	Create(ctx context.Context, a Address) error
	Update(ctx context.Context, a Address) error
	Delete(ctx context.Context, id string) error
	// SetDefault marca id como default y desmarca el resto del usuario, atómico.
	SetDefault(ctx context.Context, userID, id string) error
}
