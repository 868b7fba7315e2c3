package addresses

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/addresses", func(ar chi.Router) {
		ar.Get("/", listHandler(svc))
		ar.Post("/", createHandler(svc))
		ar.Put("/{addressID}", updateHandler(svc))
		ar.Delete("/{addressID}", deleteHandler(svc))
		ar.Post("/{addressID}/default", setDefaultHandler(svc))
	})
}

type addressRequest struct {
	Title          string `json:"title"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	ProvinceID     int64  `json:"province_id"`
	DistrictID     int64  `json:"district_id"`
	NeighborhoodID *int64 `json:"neighborhood_id"`
	Line           string `json:"line"`
	PostalCode     string `json:"postal_code"`
}

func (r addressRequest) input() Input {
	return Input{
		Title:          r.Title,
		FullName:       r.FullName,
		Phone:          r.Phone,
		ProvinceID:     r.ProvinceID,
		DistrictID:     r.DistrictID,
		NeighborhoodID: r.NeighborhoodID,
		Line:           r.Line,
		PostalCode:     r.PostalCode,
	}
}

type addressResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone"`
	ProvinceID     int64     `json:"province_id"`
	DistrictID     int64     `json:"district_id"`
	NeighborhoodID *int64    `json:"neighborhood_id,omitempty"`
	Line           string    `json:"line"`
	PostalCode     string    `json:"postal_code,omitempty"`
	IsDefault      bool      `json:"is_default"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			writeAddressError(w, err)
			return
		}
		out := make([]addressResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAddressResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createHandler
// @Summary  Add a shipping address (first one becomes default)
// @Tags     addresses
// @Accept   json
// @Produce  json
// @Success  201 {object} addressResponse
// @Failure  400 {string} string "invalid input or location"
// @Router   /api/addresses [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req addressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		a, err := svc.Create(r.Context(), claims.UserID, req.input())
		if err != nil {
			writeAddressError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAddressResponse(a))
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req addressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		a, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "addressID"), req.input())
		if err != nil {
			writeAddressError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAddressResponse(a))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "addressID")); err != nil {
			writeAddressError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setDefaultHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		a, err := svc.SetDefault(r.Context(), claims.UserID, chi.URLParam(r, "addressID"))
		if err != nil {
			writeAddressError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAddressResponse(a))
	}
}

func writeAddressError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidLocation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAddressResponse(a Address) addressResponse {
	return addressResponse{
		ID:             a.ID,
		Title:          a.Title,
		FullName:       a.FullName,
		Phone:          a.Phone,
		ProvinceID:     a.ProvinceID,
		DistrictID:     a.DistrictID,
		NeighborhoodID: a.NeighborhoodID,
		Line:           a.Line,
		PostalCode:     a.PostalCode,
		IsDefault:      a.IsDefault,
		UpdatedAt:      a.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
