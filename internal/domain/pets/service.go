package pets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"petkimlik/internal/platform/textnorm"
	"petkimlik/internal/ports/auth"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrMicrochipTaken = errors.New("microchip already registered")
	ErrBadHeader      = errors.New("csv header must contain tur and irk columns")
)

type Service struct {
	repo    Repository
	catalog CatalogRepository
	now     func() time.Time
}

func NewService(repo Repository, catalog CatalogRepository) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		now:     time.Now,
	}
}

type CreateInput struct {
	Name      string
	SpeciesID int64
	BreedID   *int64
	Sex       string
	Color     string
	BirthDate *time.Time
	Microchip string
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Animal{}, ErrInvalidInput
	}
	if err := s.validateSpeciesBreed(ctx, in.SpeciesID, in.BreedID); err != nil {
		return Animal{}, err
	}

	sex := Sex(strings.TrimSpace(in.Sex))
	if sex == "" {
		sex = SexUnknown
	}
	if !sex.Valid() {
		return Animal{}, ErrInvalidInput
	}

	chip, err := s.normalizeMicrochip(ctx, "", in.Microchip)
	if err != nil {
		return Animal{}, err
	}

	if in.BirthDate != nil && in.BirthDate.After(s.now()) {
		return Animal{}, ErrInvalidInput
	}

	now := s.now()
	a := Animal{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		SpeciesID:   in.SpeciesID,
		BreedID:     in.BreedID,
		Sex:         sex,
		Color:       strings.TrimSpace(in.Color),
		BirthDate:   in.BirthDate,
		Microchip:   chip,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a, DefaultProfile(a.ID, now)); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetForUser devuelve la mascota si el actor es su dueño o admin.
func (s *Service) GetForUser(ctx context.Context, id string, actor auth.Claims) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, ErrNotFound
	}
	if !CanManage(a, actor) {
		return Animal{}, ErrForbidden
	}
	return a, nil
}

// CanManage: dueño o admin.
func CanManage(a Animal, actor auth.Claims) bool {
	return actor.UserID != "" && (a.OwnerUserID == actor.UserID || actor.IsAdmin())
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// PatchDate distingue "no enviado" de "enviado null" (limpiar).
type PatchDate struct {
	Present bool
	Value   *time.Time
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name       *string
	SpeciesID  *int64
	BreedID    *int64
	ClearBreed bool
	Sex        *string
	Color      *string
	BirthDate  PatchDate
	Microchip  *string
	Notes      *string
}

func (s *Service) Update(ctx context.Context, id string, actor auth.Claims, in UpdateInput) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, ErrNotFound
	}
	if !CanManage(a, actor) {
		return Animal{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, ErrInvalidInput
		}
		a.Name = name
	}
	if in.SpeciesID != nil {
		a.SpeciesID = *in.SpeciesID
		// Cambiar especie invalida la raza salvo que venga una nueva.
		if in.BreedID == nil {
			a.BreedID = nil
		}
	}
	if in.ClearBreed {
		a.BreedID = nil
	} else if in.BreedID != nil {
		b := *in.BreedID
		a.BreedID = &b
	}
	if err := s.validateSpeciesBreed(ctx, a.SpeciesID, a.BreedID); err != nil {
		return Animal{}, err
	}

	if in.Sex != nil {
		sex := Sex(strings.TrimSpace(*in.Sex))
		if !sex.Valid() {
			return Animal{}, ErrInvalidInput
		}
		a.Sex = sex
	}
	if in.Color != nil {
		a.Color = strings.TrimSpace(*in.Color)
	}
	if in.BirthDate.Present {
		if in.BirthDate.Value != nil && in.BirthDate.Value.After(s.now()) {
			return Animal{}, ErrInvalidInput
		}
		a.BirthDate = in.BirthDate.Value
	}
	if in.Microchip != nil {
		chip, err := s.normalizeMicrochip(ctx, a.ID, *in.Microchip)
		if err != nil {
			return Animal{}, err
		}
		a.Microchip = chip
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// SetLost marca/desmarca como perdida. El perfil público lo muestra de inmediato.
func (s *Service) SetLost(ctx context.Context, id string, actor auth.Claims, lost bool) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, ErrNotFound
	}
	if !CanManage(a, actor) {
		return Animal{}, ErrForbidden
	}
	if a.IsLost == lost {
		return a, nil
	}
	a.IsLost = lost
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetProfile(ctx context.Context, animalID string) (AnimalProfile, error) {
	p, err := s.repo.GetProfile(ctx, animalID)
	if errors.Is(err, ErrNotFound) {
		if _, aerr := s.GetByID(ctx, animalID); aerr != nil {
			return AnimalProfile{}, ErrNotFound
		}
		return DefaultProfile(animalID, s.now()), nil
	}
	return p, err
}

type ProfileInput struct {
	IsPublic       *bool
	ShowOwnerPhone *bool
	ContactNote    *string
	RewardNote     *string
}

func (s *Service) UpdateProfile(ctx context.Context, animalID string, actor auth.Claims, in ProfileInput) (AnimalProfile, error) {
	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return AnimalProfile{}, ErrNotFound
	}
	if !CanManage(a, actor) {
		return AnimalProfile{}, ErrForbidden
	}

	p, err := s.GetProfile(ctx, animalID)
	if err != nil {
		return AnimalProfile{}, err
	}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
	if in.ShowOwnerPhone != nil {
		p.ShowOwnerPhone = *in.ShowOwnerPhone
	}
	if in.ContactNote != nil {
		p.ContactNote = strings.TrimSpace(*in.ContactNote)
	}
	if in.RewardNote != nil {
		p.RewardNote = strings.TrimSpace(*in.RewardNote)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return AnimalProfile{}, err
	}
	return p, nil
}

func (s *Service) ListSpecies(ctx context.Context) ([]Species, error) {
	return s.catalog.ListSpecies(ctx)
}

func (s *Service) GetSpecies(ctx context.Context, id int64) (Species, error) {
	return s.catalog.GetSpecies(ctx, id)
}

func (s *Service) GetBreed(ctx context.Context, id int64) (Breed, error) {
	return s.catalog.GetBreed(ctx, id)
}

func (s *Service) ListBreeds(ctx context.Context, speciesID int64) ([]Breed, error) {
	if _, err := s.catalog.GetSpecies(ctx, speciesID); err != nil {
		return nil, ErrNotFound
	}
	return s.catalog.ListBreeds(ctx, speciesID)
}

// ImportBreedsCSV carga un CSV con cabecera `tur,irk`.
func (s *Service) ImportBreedsCSV(ctx context.Context, r io.Reader, dryRun bool) (BreedImportStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return BreedImportStats{}, ErrBadHeader
		}
		return BreedImportStats{}, fmt.Errorf("read csv header: %w", err)
	}

	turIdx, irkIdx := -1, -1
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch strings.NewReplacer("ü", "u", "ı", "i").Replace(h) {
		case "tur":
			turIdx = i
		case "irk":
			irkIdx = i
		}
	}
	if turIdx < 0 || irkIdx < 0 {
		return BreedImportStats{}, ErrBadHeader
	}

	var (
		rows    []BreedRow
		skipped []string
		line    = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return BreedImportStats{}, fmt.Errorf("read csv line %d: %w", line, err)
		}
		row := BreedRow{Species: textnorm.TitleTR(at(rec, turIdx)), Breed: textnorm.TitleTR(at(rec, irkIdx))}
		if row.Species == "" && row.Breed == "" {
			continue
		}
		if row.Species == "" || row.Breed == "" {
			skipped = append(skipped, fmt.Sprintf("line %d: skipped (tur/irk empty)", line))
			continue
		}
		rows = append(rows, row)
	}

	stats, err := s.catalog.ImportBreeds(ctx, rows, dryRun)
	if err != nil {
		return BreedImportStats{}, err
	}
	stats.Skipped += len(skipped)
	stats.Lines = append(skipped, stats.Lines...)
	return stats, nil
}

func (s *Service) validateSpeciesBreed(ctx context.Context, speciesID int64, breedID *int64) error {
	if speciesID <= 0 {
		return ErrInvalidInput
	}
	if _, err := s.catalog.GetSpecies(ctx, speciesID); err != nil {
		return ErrInvalidInput
	}
	if breedID == nil {
		return nil
	}
	b, err := s.catalog.GetBreed(ctx, *breedID)
	if err != nil || b.SpeciesID != speciesID {
		return ErrInvalidInput
	}
	return nil
}

// normalizeMicrochip: vacío => nil; si no, 15 dígitos y único.
func (s *Service) normalizeMicrochip(ctx context.Context, selfID, raw string) (*string, error) {
	chip := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if chip == "" {
		return nil, nil
	}
	if len(chip) != 15 {
		return nil, ErrInvalidInput
	}
	for _, r := range chip {
		if r < '0' || r > '9' {
			return nil, ErrInvalidInput
		}
	}
	if other, err := s.repo.GetByMicrochip(ctx, chip); err == nil && other.ID != selfID {
		return nil, ErrMicrochipTaken
	}
	return &chip, nil
}

func at(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
