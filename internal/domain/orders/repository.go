package orders

import "context"

// PlaceInput agrupa todo lo que el checkout escribe en una transacción.
type PlaceInput struct {
	Order Order
	// StockDeltas: productID -> cantidad a descontar (> 0).
	StockDeltas map[string]int
	// CardDebit > 0 descuenta del ShopCardCode del pedido.
	CardDebit int64
	// ClearCartUserID vacía el carrito persistente de ese usuario.
	ClearCartUserID string
}

type Repository interface {
	// Place es atómico: stock, tarjeta, pedido y carrito, o nada.
	// Devuelve catalog.ErrOutOfStock / shopcards.ErrInsufficient.
	Place(ctx context.Context, in PlaceInput) error
	GetByID(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)

	// Cancel pone status cancelled, repone stock y devuelve saldo a la tarjeta.
	Cancel(ctx context.Context, o Order) error
	UpdateStatus(ctx context.Context, id string, status Status) error

	// AdminList anota cada pedido con el total de pedidos del usuario en una consulta.
	AdminList(ctx context.Context, f AdminFilter) ([]AdminRow, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
