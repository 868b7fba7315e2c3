package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/platform/render"
	"petkimlik/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, view *render.Renderer, log logger.Logger) {
	r.Get("/api/products", listProductsHandler(svc))
	r.Get("/api/products/{slug}", getProductHandler(svc))
	r.Get("/api/categories", listCategoriesHandler(svc))

	r.Route("/api/shop/products", func(sr chi.Router) {
		sr.Use(middleware.RequireRole(auth.RoleAdmin, auth.RolePetshop))
		sr.Post("/", createProductHandler(svc))
		sr.Patch("/{productID}", updateProductHandler(svc))
	})

	r.Route("/api/admin/catalog", func(ar chi.Router) {
		ar.Use(middleware.RequireRole(auth.RoleAdmin))
		ar.Post("/categories", createCategoryHandler(svc))
		ar.Get("/low-stock", lowStockHandler(svc))
	})

	r.Get("/magaza", shopListPageHandler(svc, view, log))
	r.Get("/magaza/{slug}", productPageHandler(svc, view, log))
}

type productRequest struct {
	Name              string   `json:"name"`
	Slug              string   `json:"slug"`
	Description       string   `json:"description"`
	PriceKurus        int64    `json:"price_kurus"`
	Stock             int      `json:"stock"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	Categories        []string `json:"categories"`
}

type productPatchRequest struct {
	Name              *string   `json:"name"`
	Description       *string   `json:"description"`
	PriceKurus        *int64    `json:"price_kurus"`
	Stock             *int      `json:"stock"`
	LowStockThreshold *int      `json:"low_stock_threshold"`
	IsActive          *bool     `json:"is_active"`
	Categories        *[]string `json:"categories"`
}

type productResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       string     `json:"description"`
	PriceKurus        int64      `json:"price_kurus"`
	Stock             int        `json:"stock"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	IsActive          bool       `json:"is_active"`
	VendorUserID      *string    `json:"vendor_user_id,omitempty"`
	Categories        []Category `json:"categories"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type productPageResponse struct {
	Items    []productResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

func listInputFrom(r *http.Request) ListInput {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return ListInput{
		CategorySlug: q.Get("kategori"),
		Query:        q.Get("q"),
		Page:         page,
		PageSize:     size,
	}
}

// listProductsHandler
// @Summary  List active products
// @Tags     shop
// @Produce  json
// @Param    q         query string false "Search text"
// @Param    kategori  query string false "Category slug"
// @Param    page      query int    false "Page (1-based)"
// @Param    page_size query int    false "Page size (max 100)"
// @Success  200 {object} productPageResponse
// @Router   /api/products [get]
func listProductsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.ListProducts(r.Context(), listInputFrom(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := productPageResponse{Items: make([]productResponse, 0, len(page.Items)), Total: page.Total, Page: page.Page, PageSize: page.PageSize}
		for _, p := range page.Items {
			out.Items = append(out.Items, toProductResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	}
}

func listCategoriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListCategories(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// createProductHandler
// @Summary  Create a product (admin or petshop)
// @Tags     shop
// @Accept   json
// @Produce  json
// @Success  201 {object} productResponse
// @Failure  409 {string} string "slug already in use"
// @Router   /api/shop/products [post]
func createProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.CreateProduct(r.Context(), claims, ProductInput{
			Name:              req.Name,
			Slug:              req.Slug,
			Description:       req.Description,
			PriceKurus:        req.PriceKurus,
			Stock:             req.Stock,
			LowStockThreshold: req.LowStockThreshold,
			CategorySlugs:     req.Categories,
		})
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toProductResponse(p))
	}
}

func updateProductHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req productPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), claims, ProductPatch{
			Name:              req.Name,
			Description:       req.Description,
			PriceKurus:        req.PriceKurus,
			Stock:             req.Stock,
			LowStockThreshold: req.LowStockThreshold,
			IsActive:          req.IsActive,
			CategorySlugs:     req.Categories,
		})
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponse(p))
	}
}

func createCategoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.CreateCategory(r.Context(), claims, req.Name)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

// lowStockHandler
// @Summary  Products at or below their low-stock threshold (admin)
// @Tags     admin
// @Produce  json
// @Param    threshold query int false "Override every product's threshold"
// @Success  200 {array} productResponse
// @Router   /api/admin/catalog/low-stock [get]
func lowStockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold := 0
		if v := r.URL.Query().Get("threshold"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "threshold must be a non-negative integer", http.StatusBadRequest)
				return
			}
			threshold = n
		}

		items, err := svc.LowStock(r.Context(), threshold)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		out := make([]productResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toProductResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func shopListPageHandler(svc *Service, view *render.Renderer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := listInputFrom(r)
		page, err := svc.ListProducts(r.Context(), in)
		if err != nil {
			log.Error("shop list failed", map[string]any{"err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		cats, err := svc.ListCategories(r.Context())
		if err != nil {
			log.Error("shop categories failed", map[string]any{"err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		view.HTML(w, http.StatusOK, "shop_list", map[string]any{
			"Query":      in.Query,
			"Category":   in.CategorySlug,
			"Categories": cats,
			"Products":   page.Items,
			"Total":      page.Total,
			"Page":       page.Page,
		})
	}
}

func productPageHandler(svc *Service, view *render.Renderer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error("product page failed", map[string]any{"err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		view.HTML(w, http.StatusOK, "product_detail", map[string]any{"Product": p})
	}
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrSlugTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toProductResponse(p Product) productResponse {
	cats := p.Categories
	if cats == nil {
		cats = []Category{}
	}
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		Slug:              p.Slug,
		Description:       p.Description,
		PriceKurus:        p.PriceKurus,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		IsActive:          p.IsActive,
		VendorUserID:      p.VendorUserID,
		Categories:        cats,
		UpdatedAt:         p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
