package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/api/admin/dashboard", statsHandler(svc, log))
}

// statsHandler
// @Summary  Admin dashboard counters
// @Tags     admin
// @Produce  json
// @Success  200 {object} Stats
// @Router   /api/admin/dashboard [get]
func statsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			log.Error("dashboard failed", map[string]any{"err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(st)
	}
}
