package tags

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"petkimlik/internal/domain/pets"
	"petkimlik/internal/ports/auth"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("tag not found")
	ErrForbidden      = errors.New("forbidden")
	ErrAlreadyActive  = errors.New("tag already assigned")
	ErrNotActivated   = errors.New("tag not assigned")
	ErrProfileHidden  = errors.New("profile is not public")
	ErrCodeCollisions = errors.New("could not generate unique tag codes")
)

const (
	CodePrefix = "PK-"
	codeLength = 6
	// Sin 0/O, 1/I/L ni U: se leen mal impresos en etiquetas chicas.
	codeAlphabet = "23456789ABCDEFGHJKMNPQRSTVWXYZ"

	MaxBatch         = 1000
	defaultScanLimit = 50
	DefaultQRSize    = 256
)

// AnimalReader es lo que tags necesita de pets.
type AnimalReader interface {
	GetByID(ctx context.Context, id string) (pets.Animal, error)
	GetProfile(ctx context.Context, animalID string) (pets.AnimalProfile, error)
	GetSpecies(ctx context.Context, id int64) (pets.Species, error)
	GetBreed(ctx context.Context, id int64) (pets.Breed, error)
}

// OwnerDirectory resuelve el teléfono del dueño (accounts.Service).
type OwnerDirectory interface {
	OwnerPhone(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo    Repository
	animals AnimalReader
	owners  OwnerDirectory
	baseURL string
	now     func() time.Time
	newCode func() (string, error)
}

func NewService(repo Repository, animals AnimalReader, owners OwnerDirectory, baseURL string) *Service {
	return &Service{
		repo:    repo,
		animals: animals,
		owners:  owners,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		newCode: randomCode,
	}
}

// NormalizeCode acepta "pk-abc234", " PK-ABC234 " o "ABC234".
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !strings.HasPrefix(code, CodePrefix) {
		code = CodePrefix + code
	}
	return code
}

func validCode(code string) bool {
	if !strings.HasPrefix(code, CodePrefix) {
		return false
	}
	body := strings.TrimPrefix(code, CodePrefix)
	if len(body) != codeLength {
		return false
	}
	for _, r := range body {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.WriteString(CodePrefix)
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// GenerateBatch crea n etiquetas sin asignar con códigos únicos.
func (s *Service) GenerateBatch(ctx context.Context, n int) ([]Tag, error) {
	if n <= 0 || n > MaxBatch {
		return nil, ErrInvalidInput
	}

	now := s.now()
	seen := make(map[string]struct{}, n)
	out := make([]Tag, 0, n)

	for len(out) < n {
		var code string
		for attempt := 0; ; attempt++ {
			if attempt >= 10 {
				return nil, ErrCodeCollisions
			}
			c, err := s.newCode()
			if err != nil {
				return nil, fmt.Errorf("generate tag code: %w", err)
			}
			if _, dup := seen[c]; dup {
				continue
			}
			if _, err := s.repo.GetByCode(ctx, c); err == nil {
				continue
			} else if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			code = c
			break
		}
		seen[code] = struct{}{}
		out = append(out, Tag{ID: uuid.NewString(), Code: code, CreatedAt: now})
	}

	if err := s.repo.CreateBatch(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, code string) (Tag, error) {
	code = NormalizeCode(code)
	if !validCode(code) {
		return Tag{}, ErrNotFound
	}
	return s.repo.GetByCode(ctx, code)
}

// Activate vincula una etiqueta libre a una mascota del actor.
func (s *Service) Activate(ctx context.Context, code string, actor auth.Claims, animalID string) (Tag, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return Tag{}, err
	}
	if t.Assigned() {
		return Tag{}, ErrAlreadyActive
	}

	a, err := s.animals.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		return Tag{}, ErrInvalidInput
	}
	if a.OwnerUserID != actor.UserID {
		return Tag{}, ErrForbidden
	}

	now := s.now()
	id := a.ID
	t.AnimalID = &id
	t.ActivatedAt = &now
	if err := s.repo.Activate(ctx, t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Deactivate libera la etiqueta (dueño de la mascota o admin). Los scans quedan.
func (s *Service) Deactivate(ctx context.Context, code string, actor auth.Claims) (Tag, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return Tag{}, err
	}
	if !t.Assigned() {
		return Tag{}, ErrNotActivated
	}

	a, err := s.animals.GetByID(ctx, *t.AnimalID)
	if err == nil && !pets.CanManage(a, actor) {
		return Tag{}, ErrForbidden
	}
	if err != nil && !actor.IsAdmin() {
		return Tag{}, ErrForbidden
	}

	t.AnimalID = nil
	t.ActivatedAt = nil
	if err := s.repo.Update(ctx, t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string, actor auth.Claims) ([]Tag, error) {
	if err := s.authorizeAnimal(ctx, animalID, actor); err != nil {
		return nil, err
	}
	return s.repo.ListByAnimal(ctx, animalID)
}

// Scan registra la lectura y arma el perfil público.
// Devuelve ErrNotActivated / ErrProfileHidden cuando no hay nada que mostrar;
// el scan se registra igual si la etiqueta existe.
func (s *Service) Scan(ctx context.Context, code string, meta ScanMeta) (PublicProfile, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return PublicProfile{}, err
	}

	scan := TagScan{
		ID:        uuid.NewString(),
		TagID:     t.ID,
		AnimalID:  t.AnimalID,
		ScannedAt: s.now(),
		IPAddress: truncate(meta.IPAddress, 45),
		UserAgent: truncate(meta.UserAgent, 300),
		Latitude:  meta.Latitude,
		Longitude: meta.Longitude,
	}
	if err := s.repo.AddScan(ctx, scan); err != nil {
		return PublicProfile{}, err
	}

	if !t.Assigned() {
		return PublicProfile{Code: t.Code}, ErrNotActivated
	}
	return s.publicProfile(ctx, t)
}

func (s *Service) publicProfile(ctx context.Context, t Tag) (PublicProfile, error) {
	a, err := s.animals.GetByID(ctx, *t.AnimalID)
	if err != nil {
		return PublicProfile{Code: t.Code}, ErrNotActivated
	}
	p, err := s.animals.GetProfile(ctx, a.ID)
	if err != nil {
		return PublicProfile{}, err
	}
	// Una mascota perdida se muestra aunque el perfil sea privado.
	if !p.IsPublic && !a.IsLost {
		return PublicProfile{Code: t.Code}, ErrProfileHidden
	}

	out := PublicProfile{
		Code:        t.Code,
		AnimalName:  a.Name,
		Color:       a.Color,
		IsLost:      a.IsLost,
		ContactNote: p.ContactNote,
		RewardNote:  p.RewardNote,
	}
	if sp, err := s.animals.GetSpecies(ctx, a.SpeciesID); err == nil {
		out.SpeciesName = sp.Name
	}
	if a.BreedID != nil {
		if b, err := s.animals.GetBreed(ctx, *a.BreedID); err == nil {
			out.BreedName = b.Name
		}
	}
	if p.ShowOwnerPhone && s.owners != nil {
		if phone, err := s.owners.OwnerPhone(ctx, a.OwnerUserID); err == nil {
			out.OwnerPhone = phone
		}
	}
	return out, nil
}

func (s *Service) ListScans(ctx context.Context, animalID string, actor auth.Claims, limit int) ([]TagScan, error) {
	if err := s.authorizeAnimal(ctx, animalID, actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultScanLimit
	}
	return s.repo.ListScansByAnimal(ctx, animalID, limit)
}

func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountActive(ctx)
}

// PublicURL es lo que se codifica en el QR.
func (s *Service) PublicURL(code string) string {
	return s.baseURL + "/etiket/" + NormalizeCode(code)
}

// QRCode genera el PNG del QR para una etiqueta existente.
func (s *Service) QRCode(ctx context.Context, code string, size int) ([]byte, error) {
	t, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > 1024 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(s.PublicURL(t.Code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (s *Service) authorizeAnimal(ctx context.Context, animalID string, actor auth.Claims) error {
	a, err := s.animals.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		return ErrNotFound
	}
	if !pets.CanManage(a, actor) {
		return ErrForbidden
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
