package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/domain/cart"
	"petkimlik/internal/middleware"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/platform/render"
	"petkimlik/internal/ports/auth"
	"petkimlik/internal/session"
)

func RegisterRoutes(r chi.Router, svc *Service, carts *cart.Service, sessions *session.Manager, view *render.Renderer, log logger.Logger) {
	r.Post("/api/checkout", checkoutHandler(svc, carts, sessions, log))

	r.Route("/api/orders", func(or chi.Router) {
		or.Use(middleware.RequireRole(auth.RoleOwner, auth.RoleVet, auth.RolePetshop, auth.RoleAdmin))
		or.Get("/", listMineHandler(svc))
		or.Get("/{orderID}", getOrderHandler(svc))
		or.Post("/{orderID}/cancel", cancelOrderHandler(svc, log))
	})

	r.Route("/api/admin/orders", func(ar chi.Router) {
		ar.Use(middleware.RequireRole(auth.RoleAdmin))
		ar.Get("/", adminListHandler(svc))
		ar.Patch("/{orderID}", updateStatusHandler(svc, log))
	})

	r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/yonetim/siparisler", adminPageHandler(svc, view, log))
}

type shippingRequest struct {
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	ProvinceID     int64  `json:"province_id"`
	DistrictID     int64  `json:"district_id"`
	NeighborhoodID *int64 `json:"neighborhood_id"`
	Line           string `json:"line"`
	PostalCode     string `json:"postal_code"`
}

type checkoutRequest struct {
	AddressID    string           `json:"address_id"`
	Shipping     *shippingRequest `json:"shipping"`
	ShopCardCode string           `json:"shop_card_code"`

	// Solo invitado.
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type orderItemResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	UnitPriceKurus int64  `json:"unit_price_kurus"`
	Quantity       int    `json:"quantity"`
	LineTotalKurus int64  `json:"line_total_kurus"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	Status        Status              `json:"status"`
	Guest         bool                `json:"guest"`
	SubtotalKurus int64               `json:"subtotal_kurus"`
	DiscountKurus int64               `json:"discount_kurus"`
	TotalKurus    int64               `json:"total_kurus"`
	ShopCardCode  string              `json:"shop_card_code,omitempty"`
	ShipFullName  string              `json:"ship_full_name"`
	ShipPhone     string              `json:"ship_phone"`
	ShipAddress   string              `json:"ship_address"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

type adminRowResponse struct {
	orderResponse
	UserOrderCount int64 `json:"user_order_count"`
}

type adminListResponse struct {
	Orders   []adminRowResponse `json:"orders"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

func toResponse(o Order) orderResponse {
	addr := o.ShipLine
	if o.ShipNeighborhood != "" {
		addr += ", " + o.ShipNeighborhood
	}
	addr += ", " + o.ShipDistrict + "/" + o.ShipProvince

	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			UnitPriceKurus: it.UnitPriceKurus,
			Quantity:       it.Quantity,
			LineTotalKurus: it.LineTotal(),
		})
	}
	return orderResponse{
		ID:            o.ID,
		Number:        o.Number,
		Status:        o.Status,
		Guest:         o.UserID == nil,
		SubtotalKurus: o.SubtotalKurus,
		DiscountKurus: o.DiscountKurus,
		TotalKurus:    o.TotalKurus,
		ShopCardCode:  o.ShopCardCode,
		ShipFullName:  o.ShipFullName,
		ShipPhone:     o.ShipPhone,
		ShipAddress:   addr,
		Items:         items,
		CreatedAt:     o.CreatedAt,
	}
}

// checkoutHandler
// @Summary  Place an order from the current cart
// @Tags     orders
// @Accept   json
// @Produce  json
// @Success  201 {object} orderResponse
// @Failure  400 {string} string "invalid input"
// @Failure  409 {string} string "out of stock"
// @Router   /api/checkout [post]
func checkoutHandler(svc *Service, carts *cart.Service, sessions *session.Manager, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := CheckoutInput{AddressID: req.AddressID, ShopCardCode: req.ShopCardCode}
		if req.Shipping != nil {
			in.Shipping = &ShippingInput{
				FullName:       req.Shipping.FullName,
				Phone:          req.Shipping.Phone,
				ProvinceID:     req.Shipping.ProvinceID,
				DistrictID:     req.Shipping.DistrictID,
				NeighborhoodID: req.Shipping.NeighborhoodID,
				Line:           req.Shipping.Line,
				PostalCode:     req.Shipping.PostalCode,
			}
		}
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			in.UserID = claims.UserID
			if req.Email == "" {
				req.Email = claims.Email
			}
			in.Guest = &GuestContact{Email: req.Email}
		} else {
			in.Guest = &GuestContact{FullName: req.FullName, Email: req.Email, Phone: req.Phone}
		}

		o, err := svc.Checkout(r.Context(), cart.BucketFor(carts, sessions, w, r), in)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		log.Info("order placed", map[string]any{"order_number": o.Number, "total_kurus": o.TotalKurus, "guest": in.UserID == ""})
		writeJSON(w, http.StatusCreated, toResponse(o))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		list, err := svc.ListMine(r.Context(), claims.UserID)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		out := make([]orderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, toResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		o, err := svc.Get(r.Context(), chi.URLParam(r, "orderID"), claims)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(o))
	}
}

func cancelOrderHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		o, err := svc.Cancel(r.Context(), chi.URLParam(r, "orderID"), claims)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		log.Info("order cancelled", map[string]any{"order_number": o.Number, "by": claims.UserID})
		writeJSON(w, http.StatusOK, toResponse(o))
	}
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

func updateStatusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		claims, _ := middleware.GetClaims(r.Context())
		o, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), claims, req.Status)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		log.Info("order status changed", map[string]any{"order_number": o.Number, "status": string(o.Status)})
		writeJSON(w, http.StatusOK, toResponse(o))
	}
}

func adminInput(r *http.Request) AdminListInput {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return AdminListInput{Status: Status(q.Get("status")), Page: page, PageSize: size}
}

// adminListHandler
// @Summary  List orders with the customer's total order count
// @Tags     admin
// @Produce  json
// @Param    status    query string false "pending|paid|shipped|delivered|cancelled"
// @Param    page      query int    false "page (1-based)"
// @Success  200 {object} adminListResponse
// @Router   /api/admin/orders [get]
func adminListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		p, err := svc.AdminList(r.Context(), claims, adminInput(r))
		if err != nil {
			writeOrderError(w, err)
			return
		}
		out := adminListResponse{Orders: make([]adminRowResponse, 0, len(p.Rows)), Total: p.Total, Page: p.Page, PageSize: p.PageSize}
		for _, row := range p.Rows {
			out.Orders = append(out.Orders, adminRowResponse{orderResponse: toResponse(row.Order), UserOrderCount: row.UserOrderCount})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminPageHandler(svc *Service, view *render.Renderer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		p, err := svc.AdminList(r.Context(), claims, adminInput(r))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error("admin orders page failed", map[string]any{"err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		view.HTML(w, http.StatusOK, "admin_orders", map[string]any{
			"Orders": p.Rows,
			"Total":  p.Total,
			"Page":   p.Page,
		})
	}
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidShipping), errors.Is(err, ErrShopCard):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrOutOfStock), errors.Is(err, ErrNotCancellable), errors.Is(err, ErrBadTransition):
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
