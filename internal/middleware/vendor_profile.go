package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"petkimlik/internal/platform/logger"
)

const VendorProfilePath = "/satici/profil"

// VendorProfileChecker lo implementa accounts.Service.
type VendorProfileChecker interface {
	VendorProfileComplete(ctx context.Context, userID string) (bool, error)
}

var vendorExemptPrefixes = []string{
	VendorProfilePath,
	"/api/vendor/profile",
	"/api/auth/",
	"/api/locations/",
	"/static/",
	"/health",
	"/swagger/",
}

// VendorProfileRequired redirige a veterinario/petshop con perfil incompleto:
// - páginas GET => 302 a /satici/profil?next=<path>
// - /api/*      => 409 JSON
// - Si el checker falla no bloqueamos (log + sigue).
func VendorProfileRequired(checker VendorProfileChecker, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || !claims.Role.IsVendor() || isVendorExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			complete, err := checker.VendorProfileComplete(r.Context(), claims.UserID)
			if err != nil {
				log.Warn("vendor profile check failed", map[string]any{
					"user_id": claims.UserID,
					"err":     err,
				})
				next.ServeHTTP(w, r)
				return
			}
			if complete {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"vendor_profile_incomplete","redirect":"` + VendorProfilePath + `"}` + "\n"))
				return
			}

			target := VendorProfilePath
			if r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}

func isVendorExempt(path string) bool {
	for _, p := range vendorExemptPrefixes {
		if path == strings.TrimSuffix(p, "/") || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
