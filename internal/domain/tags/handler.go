package tags

import (
	"encoding/json"
	"errors"
	"net"
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
	r.Route("/api/tags", func(tr chi.Router) {
		tr.Get("/by-pet/{petID}", listAnimalTagsHandler(svc))
		tr.Get("/by-pet/{petID}/scans", listScansHandler(svc))

		tr.Get("/{code}", scanJSONHandler(svc))
		tr.Get("/{code}/qr.png", qrHandler(svc))
		tr.Post("/{code}/activate", activateHandler(svc))
		tr.Post("/{code}/deactivate", deactivateHandler(svc))
	})

	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/api/admin/tags", generateHandler(svc))

	r.Get("/etiket/{code}", scanPageHandler(svc, view, log))
}

type activateRequest struct {
	AnimalID string `json:"animal_id"`
}

type generateRequest struct {
	Count int `json:"count"`
}

type tagResponse struct {
	Code        string     `json:"code"`
	AnimalID    *string    `json:"animal_id,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	URL         string     `json:"url"`
	CreatedAt   time.Time  `json:"created_at"`
}

type scanResponse struct {
	ScannedAt time.Time `json:"scanned_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

// scanJSONHandler
// @Summary  Public profile behind a tag (records a scan)
// @Tags     tags
// @Produce  json
// @Param    code path string true "Tag code (PK-XXXXXX)"
// @Success  200 {object} PublicProfile
// @Failure  404 {string} string "tag not found or not assigned"
// @Router   /api/tags/{code} [get]
func scanJSONHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Scan(r.Context(), chi.URLParam(r, "code"), scanMeta(r))
		if err != nil {
			writeTagError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// scanPageHandler renderiza /etiket/{code}. Etiquetas libres o perfiles privados
// muestran la página genérica con 200 para no revelar si hay mascota detrás.
func scanPageHandler(svc *Service, view *render.Renderer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := NormalizeCode(chi.URLParam(r, "code"))
		p, err := svc.Scan(r.Context(), code, scanMeta(r))
		switch {
		case err == nil:
			view.HTML(w, http.StatusOK, "tag_profile", p)
		case errors.Is(err, ErrNotActivated), errors.Is(err, ErrProfileHidden):
			view.HTML(w, http.StatusOK, "tag_unassigned", map[string]any{"Code": code})
		case errors.Is(err, ErrNotFound):
			http.NotFound(w, r)
		default:
			log.Error("tag scan failed", map[string]any{"code": code, "err": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// qrHandler
// @Summary  QR code PNG for a tag
// @Tags     tags
// @Produce  png
// @Param    code path string true "Tag code"
// @Param    size query int false "Size in pixels (default 256, max 1024)"
// @Success  200 {file} binary
// @Router   /api/tags/{code}/qr.png [get]
func qrHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		png, err := svc.QRCode(r.Context(), chi.URLParam(r, "code"), size)
		if err != nil {
			writeTagError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

// activateHandler
// @Summary  Bind an unassigned tag to one of my pets
// @Tags     tags
// @Accept   json
// @Produce  json
// @Param    code path string true "Tag code"
// @Success  200 {object} tagResponse
// @Failure  409 {string} string "tag already assigned"
// @Router   /api/tags/{code}/activate [post]
func activateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req activateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.Activate(r.Context(), chi.URLParam(r, "code"), claims, req.AnimalID)
		if err != nil {
			writeTagError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTagResponse(svc, t))
	}
}

func deactivateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		t, err := svc.Deactivate(r.Context(), chi.URLParam(r, "code"), claims)
		if err != nil {
			writeTagError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTagResponse(svc, t))
	}
}

func listAnimalTagsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByAnimal(r.Context(), chi.URLParam(r, "petID"), claims)
		if err != nil {
			writeTagError(w, err)
			return
		}
		out := make([]tagResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTagResponse(svc, t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listScansHandler
// @Summary  Recent scans of a pet's tags
// @Tags     tags
// @Produce  json
// @Param    petID path string true "Pet ID"
// @Param    limit query int false "Max items (default 50)"
// @Success  200 {array} scanResponse
// @Router   /api/tags/by-pet/{petID}/scans [get]
func listScansHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.ListScans(r.Context(), chi.URLParam(r, "petID"), claims, limit)
		if err != nil {
			writeTagError(w, err)
			return
		}
		out := make([]scanResponse, 0, len(items))
		for _, s := range items {
			out = append(out, scanResponse{
				ScannedAt: s.ScannedAt,
				IPAddress: s.IPAddress,
				UserAgent: s.UserAgent,
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// generateHandler
// @Summary  Generate a batch of unassigned tags (admin)
// @Tags     admin
// @Accept   json
// @Produce  json
// @Success  201 {array} tagResponse
// @Router   /api/admin/tags [post]
func generateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		items, err := svc.GenerateBatch(r.Context(), req.Count)
		if err != nil {
			writeTagError(w, err)
			return
		}
		out := make([]tagResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTagResponse(svc, t))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func scanMeta(r *http.Request) ScanMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	m := ScanMeta{IPAddress: ip, UserAgent: r.UserAgent()}

	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat == nil && errLng == nil && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 {
		m.Latitude, m.Longitude = &lat, &lng
	}
	return m
}

func writeTagError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotActivated), errors.Is(err, ErrProfileHidden):
		http.Error(w, "tag not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrAlreadyActive):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toTagResponse(svc *Service, t Tag) tagResponse {
	return tagResponse{
		Code:        t.Code,
		AnimalID:    t.AnimalID,
		ActivatedAt: t.ActivatedAt,
		URL:         svc.PublicURL(t.Code),
		CreatedAt:   t.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
