package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/platform/render"
	"petkimlik/internal/session"
)

// guestBucket guarda el carrito en la cookie de sesión.
type guestBucket struct {
	sessions *session.Manager
	w        http.ResponseWriter
	r        *http.Request
}

func (b guestBucket) Load(context.Context) (map[string]int, error) {
	return b.sessions.GuestCart(b.r), nil
}

func (b guestBucket) Save(_ context.Context, items map[string]int) error {
	return b.sessions.SaveGuestCart(b.w, b.r, items)
}

// BucketFor elige bucket según haya usuario en el contexto.
func BucketFor(svc *Service, sessions *session.Manager, w http.ResponseWriter, r *http.Request) Bucket {
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		return svc.ForUser(claims.UserID)
	}
	return guestBucket{sessions: sessions, w: w, r: r}
}

func RegisterRoutes(r chi.Router, svc *Service, sessions *session.Manager, view *render.Renderer, log logger.Logger) {
	r.Route("/api/cart", func(cr chi.Router) {
		cr.Get("/", getCartHandler(svc, sessions))
		cr.Delete("/", clearCartHandler(svc, sessions))
		cr.Post("/items", addItemHandler(svc, sessions))
		cr.Put("/items/{productID}", setItemHandler(svc, sessions))
		cr.Delete("/items/{productID}", removeItemHandler(svc, sessions))
	})

	r.Get("/sepet", cartPageHandler(svc, sessions, view, log))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type setItemRequest struct {
	Quantity int `json:"quantity"`
}

// getCartHandler
// @Summary  Current cart (session cart for guests)
// @Tags     cart
// @Produce  json
// @Success  200 {object} View
// @Router   /api/cart [get]
func getCartHandler(svc *Service, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(r.Context(), BucketFor(svc, sessions, w, r))
		if err != nil {
			writeCartError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// addItemHandler
// @Summary  Add a product to the cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Success  200 {object} View
// @Failure  409 {string} string "not enough stock"
// @Router   /api/cart/items [post]
func addItemHandler(svc *Service, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		v, err := svc.Add(r.Context(), BucketFor(svc, sessions, w, r), req.ProductID, req.Quantity)
		if err != nil {
			writeCartError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func setItemHandler(svc *Service, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.SetQuantity(r.Context(), BucketFor(svc, sessions, w, r), chi.URLParam(r, "productID"), req.Quantity)
		if err != nil {
			writeCartError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func removeItemHandler(svc *Service, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Remove(r.Context(), BucketFor(svc, sessions, w, r), chi.URLParam(r, "productID"))
		if err != nil {
			writeCartError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func clearCartHandler(svc *Service, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), BucketFor(svc, sessions, w, r)); err != nil {
			writeCartError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func cartPageHandler(svc *Service, sessions *session.Manager, view *render.Renderer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(r.Context(), BucketFor(svc, sessions, w, r))
		if err != nil {
			log.Error("cart page failed", map[string]any{"err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		view.HTML(w, http.StatusOK, "cart", v)
	}
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnknownItem):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrOutOfStock):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
