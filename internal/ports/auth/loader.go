package auth

import "context"

// ClaimsLoader resuelve los claims de un user id guardado en sesión.
type ClaimsLoader interface {
	LoadClaims(ctx context.Context, userID string) (Claims, error)
}
