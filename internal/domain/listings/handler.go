package listings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
	"petkimlik/internal/ports/auth"
)

var signedIn = []auth.Role{auth.RoleOwner, auth.RoleVet, auth.RolePetshop, auth.RoleAdmin}

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/listings", func(lr chi.Router) {
		lr.Get("/", listActiveHandler(svc))
		lr.Get("/{listingID}", getListingHandler(svc))

		lr.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireRole(signedIn...))
			pr.Post("/", createListingHandler(svc))
			pr.Patch("/{listingID}", updateListingHandler(svc))
			pr.Post("/{listingID}/close", closeListingHandler(svc))
			pr.Post("/{listingID}/boost", boostListingHandler(svc))
		})
	})

	r.Get("/api/credits/packages", listPackagesHandler(svc))
	r.Route("/api/credits", func(cr chi.Router) {
		cr.Use(middleware.RequireRole(signedIn...))
		cr.Get("/", balanceHandler(svc))
		cr.Post("/purchase", purchaseHandler(svc))
	})
}

type createListingRequest struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProvinceID  int64  `json:"province_id"`
	DistrictID  int64  `json:"district_id"`
	AnimalID    string `json:"animal_id"`
}

type updateListingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ProvinceID  *int64  `json:"province_id"`
	DistrictID  *int64  `json:"district_id"`
}

type boostRequest struct {
	Days int `json:"days"`
}

type purchaseRequest struct {
	PackageID string `json:"package_id"`
}

type listingPage struct {
	Listings []Listing `json:"listings"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

type balanceResponse struct {
	Balance      int                 `json:"balance"`
	Transactions []CreditTransaction `json:"transactions"`
}

// listActiveHandler
// @Summary  Active listings (boosted first, then newest)
// @Tags     listings
// @Produce  json
// @Param    kind      query string false "adoption|lost|found|mating"
// @Param    il        query int    false "province id"
// @Param    page      query int    false "page (1-based)"
// @Success  200 {object} listingPage
// @Router   /api/listings [get]
func listActiveHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		province, _ := strconv.ParseInt(q.Get("il"), 10, 64)
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("page_size"))

		p, err := svc.ListActive(r.Context(), ListInput{Kind: Kind(q.Get("kind")), ProvinceID: province, Page: page, PageSize: size})
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listingPage{Listings: p.Listings, Total: p.Total, Page: p.Page, PageSize: p.PageSize})
	}
}

func getListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		l, err := svc.Get(r.Context(), chi.URLParam(r, "listingID"), claims)
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func createListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		claims, _ := middleware.GetClaims(r.Context())
		l, err := svc.Create(r.Context(), claims, Input{
			Kind:        req.Kind,
			Title:       req.Title,
			Description: req.Description,
			ProvinceID:  req.ProvinceID,
			DistrictID:  req.DistrictID,
			AnimalID:    req.AnimalID,
		})
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func updateListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		claims, _ := middleware.GetClaims(r.Context())
		l, err := svc.Update(r.Context(), chi.URLParam(r, "listingID"), claims, Patch(req))
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func closeListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		l, err := svc.Close(r.Context(), chi.URLParam(r, "listingID"), claims)
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// boostListingHandler
// @Summary  Boost a listing (1 credit per day)
// @Tags     listings
// @Accept   json
// @Produce  json
// @Success  200 {object} Listing
// @Failure  402 {string} string "insufficient credits"
// @Router   /api/listings/{listingID}/boost [post]
func boostListingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req boostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		claims, _ := middleware.GetClaims(r.Context())
		l, err := svc.Boost(r.Context(), chi.URLParam(r, "listingID"), claims, req.Days)
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func listPackagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPackages(r.Context())
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func balanceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		bal, err := svc.Balance(r.Context(), claims.UserID)
		if err != nil {
			writeListingError(w, err)
			return
		}
		txs, err := svc.Transactions(r.Context(), claims.UserID, 0)
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, balanceResponse{Balance: bal, Transactions: txs})
	}
}

func purchaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		claims, _ := middleware.GetClaims(r.Context())
		tx, err := svc.Purchase(r.Context(), claims, req.PackageID)
		if err != nil {
			writeListingError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func writeListingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidLocation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPackageNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotActive), errors.Is(err, ErrPackageExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInsufficientCredits):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
