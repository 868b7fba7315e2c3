package middleware

import (
	"context"
	"net/http"
	"strings"

	"petkimlik/internal/ports/auth"
	"petkimlik/internal/session"
)

type ctxKey string

const claimsKey ctxKey = "claims"

type AuthOptions struct {
	Sessions *session.Manager
	Loader   auth.ClaimsLoader

	// DevAuth: acepta X-Debug-User-ID (+ X-Debug-Role opcional) sin sesión.
	DevAuth bool
}

// AuthContext:
// - Con DevAuth y header X-Debug-User-ID => claims del header (rol del header o de la base).
// - Si no, user id de la sesión => Loader.LoadClaims().
// - Sin claims el request sigue igual; los handlers deciden si exigen auth.
func AuthContext(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.DevAuth {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					claims := devClaims(r, uid, opts.Loader)
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}
			}

			if opts.Sessions == nil || opts.Loader == nil {
				next.ServeHTTP(w, r)
				return
			}

			uid := opts.Sessions.UserID(r)
			if uid == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := opts.Loader.LoadClaims(r.Context(), uid)
			if err != nil {
				// Usuario borrado o desactivado: seguimos como anónimo.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func devClaims(r *http.Request, uid string, loader auth.ClaimsLoader) auth.Claims {
	if role := auth.Role(strings.TrimSpace(r.Header.Get("X-Debug-Role"))); role.Valid() {
		return auth.Claims{UserID: uid, Role: role}
	}
	if loader != nil {
		if c, err := loader.LoadClaims(r.Context(), uid); err == nil {
			return c
		}
	}
	return auth.Claims{UserID: uid, Role: auth.RoleOwner}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return auth.Claims{}, false
	}
	return c, true
}

// RequireRole: 401 sin claims, 403 si el rol no está en la lista.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := map[auth.Role]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
