package shopcards

import "context"

type Repository interface {
	Create(ctx context.Context, c ShopCard) error
	GetByCode(ctx context.Context, code string) (ShopCard, error)
	List(ctx context.Context, limit int) ([]ShopCard, error)
	// Adjust suma delta al saldo (negativo = consumo). Nunca deja saldo < 0.
	Adjust(ctx context.Context, code string, delta int64) (ShopCard, error)
}
