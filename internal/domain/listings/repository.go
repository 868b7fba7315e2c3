package listings

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l Listing) error
	GetByID(ctx context.Context, id string) (Listing, error)
	Update(ctx context.Context, l Listing) error

	// ListActive ordena destacadas primero y luego por fecha descendente.
	ListActive(ctx context.Context, f ListFilter) ([]Listing, int64, error)
	CountActive(ctx context.Context) (int64, error)

	// ExpireOlderThan marca como expired las activas creadas antes de cutoff.
	// Con dryRun solo devuelve las afectadas.
	ExpireOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) ([]Listing, error)

	ListPackages(ctx context.Context, activeOnly bool) ([]CreditPackage, error)
	GetPackage(ctx context.Context, id string) (CreditPackage, error)
	CreatePackage(ctx context.Context, p CreditPackage) error

	Balance(ctx context.Context, userID string) (int, error)
	AddCredits(ctx context.Context, tx CreditTransaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]CreditTransaction, error)

	// SpendForBoost descuenta créditos y extiende boosted_until en days días,
	// calculado sobre la fila leída bajo el mismo bloqueo. Usa tx.CreatedAt
	// como ahora. Devuelve ErrInsufficientCredits si el saldo no alcanza.
	SpendForBoost(ctx context.Context, tx CreditTransaction, listingID string, days int) (Listing, error)
}
