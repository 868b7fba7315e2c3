package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petkimlik/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Post("/{petID}/lost", setLostHandler(svc, true))
		pr.Post("/{petID}/found", setLostHandler(svc, false))

		pr.Get("/{petID}/profile", getProfileHandler(svc))
		pr.Put("/{petID}/profile", updateProfileHandler(svc))
	})

	// Catálogo público.
	r.Get("/api/species", listSpeciesHandler(svc))
	r.Get("/api/species/{speciesID}/breeds", listBreedsHandler(svc))
}

type createPetRequest struct {
	Name      string `json:"name"`
	SpeciesID int64  `json:"species_id"`
	BreedID   *int64 `json:"breed_id"`
	Sex       string `json:"sex"`
	Color     string `json:"color"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
	Microchip string `json:"microchip"`
	Notes     string `json:"notes"`
}

type petResponse struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"owner_user_id"`
	Name        string     `json:"name"`
	SpeciesID   int64      `json:"species_id"`
	BreedID     *int64     `json:"breed_id,omitempty"`
	Sex         Sex        `json:"sex"`
	Color       string     `json:"color"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Microchip   *string    `json:"microchip,omitempty"`
	Notes       string     `json:"notes"`
	IsLost      bool       `json:"is_lost"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string `json:"name"`
	SpeciesID *int64  `json:"species_id"`
	Sex       *string `json:"sex"`
	Color     *string `json:"color"`
	Microchip *string `json:"microchip"`
	Notes     *string `json:"notes"`
}

type profileRequest struct {
	IsPublic       *bool   `json:"is_public"`
	ShowOwnerPhone *bool   `json:"show_owner_phone"`
	ContactNote    *string `json:"contact_note"`
	RewardNote     *string `json:"reward_note"`
}

type profileResponse struct {
	AnimalID       string    `json:"animal_id"`
	IsPublic       bool      `json:"is_public"`
	ShowOwnerPhone bool      `json:"show_owner_phone"`
	ContactNote    string    `json:"contact_note"`
	RewardNote     string    `json:"reward_note"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// createPetHandler
// @Summary  Register a pet for the current user
// @Tags     pets
// @Accept   json
// @Produce  json
// @Success  201 {object} petResponse
// @Failure  400 {string} string "invalid input"
// @Failure  409 {string} string "microchip already registered"
// @Router   /api/pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := parseDate(req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:      req.Name,
			SpeciesID: req.SpeciesID,
			BreedID:   req.BreedID,
			Sex:       req.Sex,
			Color:     req.Color,
			BirthDate: bd,
			Microchip: req.Microchip,
			Notes:     req.Notes,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(a))
	}
}

// listPetsHandler
// @Summary  List the current user's pets
// @Tags     pets
// @Produce  json
// @Success  200 {array} petResponse
// @Router   /api/pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toPetResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetForUser(r.Context(), chi.URLParam(r, "petID"), claims)
		if err != nil {
			writePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(a))
	}
}

// updatePetHandler
// @Summary  Partially update a pet (birth_date:null and breed_id:null clear the field)
// @Tags     pets
// @Accept   json
// @Produce  json
// @Param    petID path string true "Pet ID"
// @Success  200 {object} petResponse
// @Router   /api/pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Decodificamos a map primero para detectar presencia de campos con null.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updatePetRequest
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:      req.Name,
			SpeciesID: req.SpeciesID,
			Sex:       req.Sex,
			Color:     req.Color,
			Microchip: req.Microchip,
			Notes:     req.Notes,
		}

		if v, exists := raw["birth_date"]; exists {
			in.BirthDate.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd, err := parseDate(s)
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				in.BirthDate.Value = bd
			}
		}

		if v, exists := raw["breed_id"]; exists {
			if string(v) == "null" {
				in.ClearBreed = true
			} else {
				var id int64
				if err := json.Unmarshal(v, &id); err != nil {
					http.Error(w, "breed_id must be a number or null", http.StatusBadRequest)
					return
				}
				in.BreedID = &id
			}
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), claims, in)
		if err != nil {
			writePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

// setLostHandler
// @Summary  Mark a pet as lost or found
// @Tags     pets
// @Produce  json
// @Param    petID path string true "Pet ID"
// @Success  200 {object} petResponse
// @Router   /api/pets/{petID}/lost [post]
// @Router   /api/pets/{petID}/found [post]
func setLostHandler(svc *Service, lost bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.SetLost(r.Context(), chi.URLParam(r, "petID"), claims, lost)
		if err != nil {
			writePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(a))
	}
}

func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := svc.GetForUser(r.Context(), petID, claims); err != nil {
			writePetError(w, err)
			return
		}
		p, err := svc.GetProfile(r.Context(), petID)
		if err != nil {
			writePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// updateProfileHandler
// @Summary  Update what tag scanners can see for a pet
// @Tags     pets
// @Accept   json
// @Produce  json
// @Param    petID path string true "Pet ID"
// @Success  200 {object} profileResponse
// @Router   /api/pets/{petID}/profile [put]
func updateProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.UpdateProfile(r.Context(), chi.URLParam(r, "petID"), claims, ProfileInput{
			IsPublic:       req.IsPublic,
			ShowOwnerPhone: req.ShowOwnerPhone,
			ContactNote:    req.ContactNote,
			RewardNote:     req.RewardNote,
		})
		if err != nil {
			writePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

// listSpeciesHandler
// @Summary  List species (tür)
// @Tags     catalog
// @Produce  json
// @Success  200 {array} Species
// @Router   /api/species [get]
func listSpeciesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListSpecies(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// listBreedsHandler
// @Summary  List breeds (ırk) of a species
// @Tags     catalog
// @Produce  json
// @Param    speciesID path int true "Species ID"
// @Success  200 {array} Breed
// @Failure  404 {string} string "species not found"
// @Router   /api/species/{speciesID}/breeds [get]
func listBreedsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "speciesID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid species id", http.StatusBadRequest)
			return
		}

		items, err := svc.ListBreeds(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "species not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writePetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrMicrochipTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPetResponse(a Animal) petResponse {
	return petResponse{
		ID:          a.ID,
		OwnerUserID: a.OwnerUserID,
		Name:        a.Name,
		SpeciesID:   a.SpeciesID,
		BreedID:     a.BreedID,
		Sex:         a.Sex,
		Color:       a.Color,
		BirthDate:   a.BirthDate,
		Microchip:   a.Microchip,
		Notes:       a.Notes,
		IsLost:      a.IsLost,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toProfileResponse(p AnimalProfile) profileResponse {
	return profileResponse{
		AnimalID:       p.AnimalID,
		IsPublic:       p.IsPublic,
		ShowOwnerPhone: p.ShowOwnerPhone,
		ContactNote:    p.ContactNote,
		RewardNote:     p.RewardNote,
		UpdatedAt:      p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
