package locations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone el API JSON para los selects en cascada provincia -> distrito -> barrio.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/locations", func(lr chi.Router) {
		lr.Get("/provinces", listProvincesHandler(svc))
		lr.Get("/provinces/{provinceID}/districts", listDistrictsHandler(svc))
		lr.Get("/districts/{districtID}/neighborhoods", listNeighborhoodsHandler(svc))
	})
}

// listProvincesHandler
// @Summary  List provinces (il)
// @Tags     locations
// @Produce  json
// @Success  200 {array} Province
// @Router   /api/locations/provinces [get]
func listProvincesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListProvinces(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// listDistrictsHandler
// @Summary  List districts (ilçe) of a province
// @Tags     locations
// @Produce  json
// @Param    provinceID path int true "Province ID"
// @Success  200 {array} District
// @Failure  404 {string} string "province not found"
// @Router   /api/locations/provinces/{provinceID}/districts [get]
func listDistrictsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "provinceID"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid province id", http.StatusBadRequest)
			return
		}

		items, err := svc.ListDistricts(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "province not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func listNeighborhoodsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "districtID"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid district id", http.StatusBadRequest)
			return
		}

		items, err := svc.ListNeighborhoods(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "district not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
