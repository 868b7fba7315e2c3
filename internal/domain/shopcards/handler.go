package shopcards

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
	"petkimlik/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/api/shop-cards/{code}", lookupHandler(svc))

	r.Route("/api/admin/shop-cards", func(ar chi.Router) {
		ar.Use(middleware.RequireRole(auth.RoleAdmin))
		ar.Get("/", listHandler(svc))
		ar.Post("/", issueHandler(svc))
	})
}

type issueRequest struct {
	AmountKurus int64 `json:"amount_kurus"`
	Days        int   `json:"days"`
}

type cardResponse struct {
	Code         string     `json:"code"`
	InitialKurus int64      `json:"initial_kurus,omitempty"`
	BalanceKurus int64      `json:"balance_kurus"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Usable       bool       `json:"usable"`
}

// lookupHandler
// @Summary  Check a shop card balance
// @Tags     shop
// @Produce  json
// @Param    code path string true "Card code"
// @Success  200 {object} cardResponse
// @Failure  404 {string} string "shop card not found"
// @Router   /api/shop-cards/{code} [get]
func lookupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Lookup(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeCardError(w, err)
			return
		}
		// Público: sin monto inicial.
		writeJSON(w, http.StatusOK, cardResponse{
			Code:         c.Code,
			BalanceKurus: c.BalanceKurus,
			ExpiresAt:    c.ExpiresAt,
			Usable:       c.Usable(time.Now()),
		})
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.List(r.Context(), limit)
		if err != nil {
			writeCardError(w, err)
			return
		}
		now := time.Now()
		out := make([]cardResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCardResponse(c, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// issueHandler
// @Summary  Issue a shop card (admin)
// @Tags     admin
// @Accept   json
// @Produce  json
// @Success  201 {object} cardResponse
// @Router   /api/admin/shop-cards [post]
func issueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req issueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		c, err := svc.Issue(r.Context(), req.AmountKurus, req.Days)
		if err != nil {
			writeCardError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCardResponse(c, time.Now()))
	}
}

func writeCardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnusable), errors.Is(err, ErrInsufficient):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toCardResponse(c ShopCard, now time.Time) cardResponse {
	return cardResponse{
		Code:         c.Code,
		InitialKurus: c.InitialKurus,
		BalanceKurus: c.BalanceKurus,
		ExpiresAt:    c.ExpiresAt,
		Usable:       c.Usable(now),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
