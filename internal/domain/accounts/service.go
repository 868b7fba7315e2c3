package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"petkimlik/internal/ports/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account inactive")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidLocation    = errors.New("invalid location")
)

const minPasswordLen = 8

// LocationValidator evita importar locations directamente.
type LocationValidator interface {
	ValidatePair(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) error
}

type Service struct {
	repo      Repository
	locations LocationValidator
	now       func() time.Time
	cost      int

	// dummyHash se compara cuando el usuario no existe para no filtrar por tiempo.
	dummyHash []byte
}

func NewService(repo Repository, locations LocationValidator) *Service {
	s := &Service{
		repo:      repo,
		locations: locations,
		now:       time.Now,
		cost:      bcrypt.DefaultCost,
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("petkimlik-dummy-password"), s.cost)
	return s
}

type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	FullName string
	Role     auth.Role
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email, ok := NormalizeEmail(in.Email)
	if !ok {
		return User{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return User{}, ErrWeakPassword
	}

	role := in.Role
	if role == "" {
		role = auth.RoleOwner
	}
	// admin no se auto-registra; se crea desde manage.
	if !role.Valid() || role == auth.RoleAdmin {
		return User{}, ErrInvalidInput
	}

	var phone *string
	if strings.TrimSpace(in.Phone) != "" {
		p, ok := NormalizePhone(in.Phone)
		if !ok {
			return User{}, ErrInvalidInput
		}
		phone = &p
	}

	return s.create(ctx, email, phone, in.Password, name, role)
}

// CreateAdmin lo usa el CLI de manage (seed-fixtures).
func (s *Service) CreateAdmin(ctx context.Context, email, password, fullName string) (User, error) {
	e, ok := NormalizeEmail(email)
	if !ok || strings.TrimSpace(fullName) == "" {
		return User{}, ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return User{}, ErrWeakPassword
	}
	return s.create(ctx, e, nil, password, strings.TrimSpace(fullName), auth.RoleAdmin)
}

func (s *Service) create(ctx context.Context, email string, phone *string, password, name string, role auth.Role) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}
	if phone != nil {
		if _, err := s.repo.GetByPhone(ctx, *phone); err == nil {
			return User{}, ErrPhoneTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	if role.IsVendor() {
		// Perfil vacío: el middleware lo redirige a completarlo.
		if err := s.repo.SaveVendorProfile(ctx, VendorProfile{UserID: u.ID, UpdatedAt: now}); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

// Authenticate acepta email o teléfono como identificador.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	var (
		u   User
		err error
	)
	if strings.Contains(identifier, "@") {
		email, ok := NormalizeEmail(identifier)
		if !ok {
			return User{}, ErrInvalidCredentials
		}
		u, err = s.repo.GetByEmail(ctx, email)
	} else {
		phone, ok := NormalizePhone(identifier)
		if !ok {
			return User{}, ErrInvalidCredentials
		}
		u, err = s.repo.GetByPhone(ctx, phone)
	}
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return User{}, ErrInactive
	}

	now := s.now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// LoadClaims implementa auth.ClaimsLoader.
func (s *Service) LoadClaims(ctx context.Context, userID string) (auth.Claims, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return auth.Claims{}, err
	}
	if !u.IsActive {
		return auth.Claims{}, ErrInactive
	}
	return auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// OwnerPhone devuelve el teléfono E.164 del usuario o "" si no tiene.
func (s *Service) OwnerPhone(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Phone == nil {
		return "", nil
	}
	return *u.Phone, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetVendorProfile(ctx context.Context, userID string) (VendorProfile, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return VendorProfile{}, err
	}
	if !u.Role.IsVendor() {
		return VendorProfile{}, ErrForbidden
	}
	p, err := s.repo.GetVendorProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return VendorProfile{UserID: userID}, nil
	}
	return p, err
}

type VendorProfileInput struct {
	BusinessName string
	TaxNumber    string
	Phone        string
	ProvinceID   int64
	DistrictID   int64
	AddressLine  string
}

func (s *Service) UpdateVendorProfile(ctx context.Context, userID string, in VendorProfileInput) (VendorProfile, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return VendorProfile{}, err
	}
	if !u.Role.IsVendor() {
		return VendorProfile{}, ErrForbidden
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		p, ok := NormalizePhone(phone)
		if !ok {
			return VendorProfile{}, ErrInvalidInput
		}
		phone = p
	}

	if in.ProvinceID != 0 || in.DistrictID != 0 {
		if s.locations == nil || s.locations.ValidatePair(ctx, in.ProvinceID, in.DistrictID, nil) != nil {
			return VendorProfile{}, ErrInvalidLocation
		}
	}

	tax := strings.TrimSpace(in.TaxNumber)
	if tax != "" && !isDigits(tax) {
		return VendorProfile{}, ErrInvalidInput
	}

	p := VendorProfile{
		UserID:       userID,
		BusinessName: strings.TrimSpace(in.BusinessName),
		TaxNumber:    tax,
		Phone:        phone,
		ProvinceID:   in.ProvinceID,
		DistrictID:   in.DistrictID,
		AddressLine:  strings.TrimSpace(in.AddressLine),
		UpdatedAt:    s.now(),
	}
	if err := s.repo.SaveVendorProfile(ctx, p); err != nil {
		return VendorProfile{}, err
	}
	return p, nil
}

// VendorProfileComplete lo consulta el middleware de perfil incompleto.
// Usuarios no-vendor siempre cuentan como completos.
func (s *Service) VendorProfileComplete(ctx context.Context, userID string) (bool, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !u.Role.IsVendor() {
		return true, nil
	}
	p, err := s.repo.GetVendorProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Complete(), nil
}

// FindOrCreateGuest reutiliza el perfil de invitado por email sin tocarlo; los datos
// nuevos de contacto quedan en el snapshot de envío del pedido.
func (s *Service) FindOrCreateGuest(ctx context.Context, fullName, email, phone string) (GuestProfile, error) {
	e, ok := NormalizeEmail(email)
	name := strings.TrimSpace(fullName)
	if !ok || name == "" {
		return GuestProfile{}, ErrInvalidInput
	}
	if p, ok := NormalizePhone(phone); ok {
		phone = p
	} else {
		phone = strings.TrimSpace(phone)
	}

	now := s.now()
	g, err := s.repo.GetGuestByEmail(ctx, e)
	switch {
	case err == nil:
		return g, nil
	case errors.Is(err, ErrNotFound):
		g = GuestProfile{
			ID:        uuid.NewString(),
			FullName:  name,
			Email:     e,
			Phone:     phone,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return GuestProfile{}, err
	}

	if err := s.repo.SaveGuest(ctx, g); err != nil {
		return GuestProfile{}, err
	}
	return g, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
