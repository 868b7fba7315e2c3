package addresses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"petkimlik/internal/domain/accounts"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("address not found")
	ErrInvalidLocation = errors.New("district does not belong to province")
)

const MaxPerUser = 20

type LocationValidator interface {
	ValidatePair(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) error
}

type Service struct {
	repo      Repository
	locations LocationValidator
	now       func() time.Time
}

func NewService(repo Repository, locations LocationValidator) *Service {
	return &Service{repo: repo, locations: locations, now: time.Now}
}

type Input struct {
	Title          string
	FullName       string
	Phone          string
	ProvinceID     int64
	DistrictID     int64
	NeighborhoodID *int64
	Line           string
	PostalCode     string
}

func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get devuelve ErrNotFound también si la dirección es de otro usuario.
func (s *Service) Get(ctx context.Context, userID, id string) (Address, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Address{}, ErrNotFound
	}
	if a.UserID != userID {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Address, error) {
	if strings.TrimSpace(userID) == "" {
		return Address{}, ErrInvalidInput
	}
	a, err := s.build(ctx, in)
	if err != nil {
		return Address{}, err
	}

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	if len(existing) >= MaxPerUser {
		return Address{}, ErrInvalidInput
	}

	now := s.now()
	a.ID = uuid.NewString()
	a.UserID = userID
	a.IsDefault = len(existing) == 0
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.repo.Create(ctx, a); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Address, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return Address{}, err
	}
	a, err := s.build(ctx, in)
	if err != nil {
		return Address{}, err
	}

	a.ID = current.ID
	a.UserID = current.UserID
	a.IsDefault = current.IsDefault
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Delete borra; si era la default, la más reciente que queda pasa a default.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}
	if !a.IsDefault {
		return nil
	}

	rest, err := s.repo.ListByUser(ctx, userID)
	if err != nil || len(rest) == 0 {
		return err
	}
	newest := rest[0]
	for _, r := range rest[1:] {
		if r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	return s.repo.SetDefault(ctx, userID, newest.ID)
}

func (s *Service) SetDefault(ctx context.Context, userID, id string) (Address, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return Address{}, err
	}
	if err := s.repo.SetDefault(ctx, userID, a.ID); err != nil {
		return Address{}, err
	}
	a.IsDefault = true
	return a, nil
}

func (s *Service) build(ctx context.Context, in Input) (Address, error) {
	a := Address{
		Title:          strings.TrimSpace(in.Title),
		FullName:       strings.TrimSpace(in.FullName),
		ProvinceID:     in.ProvinceID,
		DistrictID:     in.DistrictID,
		NeighborhoodID: in.NeighborhoodID,
		Line:           strings.TrimSpace(in.Line),
		PostalCode:     strings.TrimSpace(in.PostalCode),
	}
	if a.Title == "" {
		a.Title = "Adres"
	}
	if a.FullName == "" || a.Line == "" {
		return Address{}, ErrInvalidInput
	}
	if a.PostalCode != "" && !isPostalCode(a.PostalCode) {
		return Address{}, ErrInvalidInput
	}

	phone, ok := accounts.NormalizePhone(in.Phone)
	if !ok {
		return Address{}, ErrInvalidInput
	}
	a.Phone = phone

	if err := s.locations.ValidatePair(ctx, a.ProvinceID, a.DistrictID, a.NeighborhoodID); err != nil {
		return Address{}, ErrInvalidLocation
	}
	return a, nil
}

// Código postal: 5 dígitos.
func isPostalCode(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
