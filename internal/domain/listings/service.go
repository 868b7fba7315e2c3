package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"petkimlik/internal/domain/pets"
	"petkimlik/internal/ports/auth"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("listing not found")
	ErrForbidden           = errors.New("forbidden")
	ErrNotActive           = errors.New("listing is not active")
	ErrPackageNotFound     = errors.New("credit package not found")
	ErrPackageExists       = errors.New("credit package already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidLocation     = errors.New("invalid location")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxBoostDays    = 30
)

type AnimalReader interface {
	GetByID(ctx context.Context, id string) (pets.Animal, error)
}

type LocationValidator interface {
	ValidatePair(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) error
}

type Service struct {
	repo      Repository
	animals   AnimalReader
	locations LocationValidator
	now       func() time.Time
}

func NewService(repo Repository, animals AnimalReader, locations LocationValidator) *Service {
	return &Service{repo: repo, animals: animals, locations: locations, now: time.Now}
}

type Input struct {
	Kind        Kind
	Title       string
	Description string
	ProvinceID  int64
	DistrictID  int64
	AnimalID    string
}

func (s *Service) Create(ctx context.Context, actor auth.Claims, in Input) (Listing, error) {
	if actor.UserID == "" || !in.Kind.Valid() {
		return Listing{}, ErrInvalidInput
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || len([]rune(title)) > 150 {
		return Listing{}, ErrInvalidInput
	}
	if err := s.locations.ValidatePair(ctx, in.ProvinceID, in.DistrictID, nil); err != nil {
		return Listing{}, ErrInvalidLocation
	}

	now := s.now()
	l := Listing{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		Kind:        in.Kind,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		ProvinceID:  in.ProvinceID,
		DistrictID:  in.DistrictID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if id := strings.TrimSpace(in.AnimalID); id != "" {
		a, err := s.animals.GetByID(ctx, id)
		if err != nil {
			return Listing{}, ErrInvalidInput
		}
		if a.OwnerUserID != actor.UserID {
			return Listing{}, ErrForbidden
		}
		l.AnimalID = &id
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

// Get: activas para cualquiera; cerradas o expiradas solo para dueño o admin.
func (s *Service) Get(ctx context.Context, id string, actor auth.Claims) (Listing, error) {
	l, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Listing{}, ErrNotFound
	}
	if l.Status != StatusActive && !canManage(l, actor) {
		return Listing{}, ErrNotFound
	}
	return l, nil
}

func canManage(l Listing, actor auth.Claims) bool {
	return actor.IsAdmin() || (actor.UserID != "" && l.UserID == actor.UserID)
}

type Patch struct {
	Title       *string
	Description *string
	ProvinceID  *int64
	DistrictID  *int64
}

func (s *Service) Update(ctx context.Context, id string, actor auth.Claims, in Patch) (Listing, error) {
	l, err := s.manageable(ctx, id, actor)
	if err != nil {
		return Listing{}, err
	}
	if l.Status != StatusActive {
		return Listing{}, ErrNotActive
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" || len([]rune(t)) > 150 {
			return Listing{}, ErrInvalidInput
		}
		l.Title = t
	}
	if in.Description != nil {
		l.Description = strings.TrimSpace(*in.Description)
	}
	if in.ProvinceID != nil || in.DistrictID != nil {
		p, d := l.ProvinceID, l.DistrictID
		if in.ProvinceID != nil {
			p = *in.ProvinceID
		}
		if in.DistrictID != nil {
			d = *in.DistrictID
		}
		if err := s.locations.ValidatePair(ctx, p, d, nil); err != nil {
			return Listing{}, ErrInvalidLocation
		}
		l.ProvinceID, l.DistrictID = p, d
	}

	l.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

func (s *Service) Close(ctx context.Context, id string, actor auth.Claims) (Listing, error) {
	l, err := s.manageable(ctx, id, actor)
	if err != nil {
		return Listing{}, err
	}
	if l.Status != StatusActive {
		return Listing{}, ErrNotActive
	}
	l.Status = StatusClosed
	l.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

func (s *Service) manageable(ctx context.Context, id string, actor auth.Claims) (Listing, error) {
	l, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Listing{}, ErrNotFound
	}
	if !canManage(l, actor) {
		return Listing{}, ErrForbidden
	}
	return l, nil
}

type ListInput struct {
	Kind       Kind
	ProvinceID int64
	Page       int
	PageSize   int
}

type Page struct {
	Listings []Listing
	Total    int64
	Page     int
	PageSize int
}

func (s *Service) ListActive(ctx context.Context, in ListInput) (Page, error) {
	if in.Kind != "" && !in.Kind.Valid() {
		return Page{}, ErrInvalidInput
	}
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	list, total, err := s.repo.ListActive(ctx, ListFilter{
		Kind:       in.Kind,
		ProvinceID: in.ProvinceID,
		Now:        s.now(),
		Offset:     (page - 1) * size,
		Limit:      size,
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Listings: list, Total: total, Page: page, PageSize: size}, nil
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}

// ExpireOlderThan vence las activas con más de days días.
func (s *Service) ExpireOlderThan(ctx context.Context, days int, dryRun bool) ([]Listing, error) {
	if days < 1 {
		return nil, ErrInvalidInput
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.repo.ExpireOlderThan(ctx, cutoff, dryRun)
}

func (s *Service) ListPackages(ctx context.Context) ([]CreditPackage, error) {
	return s.repo.ListPackages(ctx, true)
}

func (s *Service) CreatePackage(ctx context.Context, name string, credits int, priceKurus int64) (CreditPackage, error) {
	name = strings.TrimSpace(name)
	if name == "" || credits <= 0 || priceKurus <= 0 {
		return CreditPackage{}, ErrInvalidInput
	}
	p := CreditPackage{ID: uuid.NewString(), Name: name, Credits: credits, PriceKurus: priceKurus, IsActive: true}
	if err := s.repo.CreatePackage(ctx, p); err != nil {
		return CreditPackage{}, err
	}
	return p, nil
}

// Purchase acredita el paquete. El cobro se registra como pagado.
func (s *Service) Purchase(ctx context.Context, actor auth.Claims, packageID string) (CreditTransaction, error) {
	if actor.UserID == "" {
		return CreditTransaction{}, ErrForbidden
	}
	p, err := s.repo.GetPackage(ctx, strings.TrimSpace(packageID))
	if err != nil || !p.IsActive {
		return CreditTransaction{}, ErrPackageNotFound
	}

	pid := p.ID
	tx := CreditTransaction{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Amount:    p.Credits,
		Reason:    ReasonPurchase,
		PackageID: &pid,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddCredits(ctx, tx); err != nil {
		return CreditTransaction{}, err
	}
	return tx, nil
}

// Grant acredita créditos sin paquete (admin / fixtures).
func (s *Service) Grant(ctx context.Context, userID string, credits int) (CreditTransaction, error) {
	if strings.TrimSpace(userID) == "" || credits <= 0 {
		return CreditTransaction{}, ErrInvalidInput
	}
	tx := CreditTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    credits,
		Reason:    ReasonGrant,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddCredits(ctx, tx); err != nil {
		return CreditTransaction{}, err
	}
	return tx, nil
}

func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]CreditTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTransactions(ctx, userID, limit)
}

// Boost cuesta un crédito por día y extiende boosted_until desde el
// vencimiento actual si sigue vigente.
func (s *Service) Boost(ctx context.Context, id string, actor auth.Claims, days int) (Listing, error) {
	if days < 1 || days > MaxBoostDays {
		return Listing{}, ErrInvalidInput
	}
	l, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Listing{}, ErrNotFound
	}
	if l.UserID != actor.UserID {
		return Listing{}, ErrForbidden
	}
	if l.Status != StatusActive {
		return Listing{}, ErrNotActive
	}

	now := s.now()
	lid := l.ID
	tx := CreditTransaction{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Amount:    -days,
		Reason:    ReasonBoost,
		ListingID: &lid,
		CreatedAt: now,
	}
	return s.repo.SpendForBoost(ctx, tx, l.ID, days)
}
