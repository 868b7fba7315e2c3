package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/domain/locations"
	"petkimlik/internal/middleware"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/platform/render"
	"petkimlik/internal/ports/auth"
	"petkimlik/internal/session"
)

// GuestCartMerger lo implementa cart.Service (evita importar cart).
type GuestCartMerger interface {
	MergeGuest(ctx context.Context, userID string, items map[string]int) error
}

type ProvinceLister interface {
	ListProvinces(ctx context.Context) ([]locations.Province, error)
}

type HandlerDeps struct {
	Sessions  *session.Manager
	Carts     GuestCartMerger
	Provinces ProvinceLister
	Render    *render.Renderer
	Log       logger.Logger
}

func RegisterRoutes(r chi.Router, svc *Service, deps HandlerDeps) {
	r.Route("/api/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc, deps))
		ar.Post("/login", loginHandler(svc, deps))
		ar.Post("/logout", logoutHandler(deps))
	})

	r.Get("/api/me", meHandler(svc))

	r.Route("/api/vendor/profile", func(vr chi.Router) {
		vr.Get("/", getVendorProfileHandler(svc))
		vr.Put("/", updateVendorProfileHandler(svc))
		// El form HTML de /satici/profil hace POST.
		vr.Post("/", updateVendorProfileHandler(svc))
	})

	r.Get(middleware.VendorProfilePath, vendorProfilePageHandler(svc, deps))
}

type registerRequest struct {
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Password string    `json:"password"`
	FullName string    `json:"full_name"`
	Role     auth.Role `json:"role"`
}

type loginRequest struct {
	Identifier string `json:"identifier"` // email o teléfono
	Password   string `json:"password"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	FullName    string     `json:"full_name"`
	Role        auth.Role  `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type vendorProfileRequest struct {
	BusinessName string `json:"business_name"`
	TaxNumber    string `json:"tax_number"`
	Phone        string `json:"phone"`
	ProvinceID   int64  `json:"province_id"`
	DistrictID   int64  `json:"district_id"`
	AddressLine  string `json:"address_line"`
}

type vendorProfileResponse struct {
	BusinessName string    `json:"business_name"`
	TaxNumber    string    `json:"tax_number"`
	Phone        string    `json:"phone"`
	ProvinceID   int64     `json:"province_id"`
	DistrictID   int64     `json:"district_id"`
	AddressLine  string    `json:"address_line"`
	Complete     bool      `json:"complete"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// registerHandler
// @Summary  Register a new account (owner, vet or petshop)
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  201 {object} userResponse
// @Failure  400 {string} string "invalid input"
// @Failure  409 {string} string "email or phone already registered"
// @Router   /api/auth/register [post]
func registerHandler(svc *Service, deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
			FullName: req.FullName,
			Role:     req.Role,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrPhoneTaken):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrWeakPassword):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if err := startSession(w, r, u, deps); err != nil {
			deps.Log.Error("session save failed", map[string]any{"user_id": u.ID, "err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// loginHandler
// @Summary  Log in with email or phone; merges the guest cart
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200 {object} userResponse
// @Failure  401 {string} string "invalid credentials"
// @Router   /api/auth/login [post]
func loginHandler(svc *Service, deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Identifier, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidCredentials):
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
			case errors.Is(err, ErrInactive):
				http.Error(w, "account inactive", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if err := startSession(w, r, u, deps); err != nil {
			deps.Log.Error("session save failed", map[string]any{"user_id": u.ID, "err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// startSession guarda el user id y fusiona el carrito de invitado.
// Si el merge falla, el carrito de invitado se conserva en la sesión.
func startSession(w http.ResponseWriter, r *http.Request, u User, deps HandlerDeps) error {
	if deps.Sessions == nil {
		return nil
	}

	guest := deps.Sessions.GuestCart(r)
	if len(guest) > 0 && deps.Carts != nil {
		if err := deps.Carts.MergeGuest(r.Context(), u.ID, guest); err != nil {
			deps.Log.Warn("guest cart merge failed", map[string]any{"user_id": u.ID, "err": err})
			return deps.Sessions.SetUserID(w, r, u.ID)
		}
		deps.Log.Info("guest cart merged", map[string]any{"user_id": u.ID, "lines": len(guest)})
	}

	return deps.Sessions.Login(w, r, u.ID)
}

func logoutHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Sessions != nil {
			if err := deps.Sessions.Logout(w, r); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			// Dev-auth: claims sin fila en la base.
			writeJSON(w, http.StatusOK, userResponse{ID: claims.UserID, Email: claims.Email, Role: claims.Role})
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func getVendorProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetVendorProfile(r.Context(), claims.UserID)
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVendorProfileResponse(p))
	}
}

func updateVendorProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		isForm := strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

		var req vendorProfileRequest
		if isForm {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			req = vendorProfileRequest{
				BusinessName: r.PostForm.Get("business_name"),
				TaxNumber:    r.PostForm.Get("tax_number"),
				Phone:        r.PostForm.Get("phone"),
				ProvinceID:   parseID(r.PostForm.Get("province_id")),
				DistrictID:   parseID(r.PostForm.Get("district_id")),
				AddressLine:  r.PostForm.Get("address_line"),
			}
		} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateVendorProfile(r.Context(), claims.UserID, VendorProfileInput{
			BusinessName: req.BusinessName,
			TaxNumber:    req.TaxNumber,
			Phone:        req.Phone,
			ProvinceID:   req.ProvinceID,
			DistrictID:   req.DistrictID,
			AddressLine:  req.AddressLine,
		})
		if err != nil {
			writeAccountError(w, err)
			return
		}

		if isForm {
			next := safeNext(r.URL.Query().Get("next"))
			if !p.Complete() {
				next = middleware.VendorProfilePath
			}
			http.Redirect(w, r, next, http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, toVendorProfileResponse(p))
	}
}

type vendorProfilePage struct {
	Profile   VendorProfile
	Complete  bool
	Provinces []locations.Province
	Next      string
}

func vendorProfilePageHandler(svc *Service, deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		p, err := svc.GetVendorProfile(r.Context(), claims.UserID)
		if err != nil {
			writeAccountError(w, err)
			return
		}

		var provinces []locations.Province
		if deps.Provinces != nil {
			provinces, _ = deps.Provinces.ListProvinces(r.Context())
		}

		deps.Render.HTML(w, http.StatusOK, "vendor_profile", vendorProfilePage{
			Profile:   p,
			Complete:  p.Complete(),
			Provinces: provinces,
			Next:      safeNext(r.URL.Query().Get("next")),
		})
	}
}

// safeNext solo acepta paths locales (evita open redirect).
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}

func parseID(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidLocation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toUserResponse(u User) userResponse {
	out := userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Phone != nil {
		out.Phone = *u.Phone
	}
	return out
}

func toVendorProfileResponse(p VendorProfile) vendorProfileResponse {
	return vendorProfileResponse{
		BusinessName: p.BusinessName,
		TaxNumber:    p.TaxNumber,
		Phone:        p.Phone,
		ProvinceID:   p.ProvinceID,
		DistrictID:   p.DistrictID,
		AddressLine:  p.AddressLine,
		Complete:     p.Complete(),
		UpdatedAt:    p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
