package shopcards

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("shop card not found")
	ErrUnusable     = errors.New("shop card expired, inactive or empty")
	ErrInsufficient = errors.New("shop card balance insufficient")
	ErrCodeTaken    = errors.New("shop card code already exists")
)

const (
	codePrefix   = "HK-"
	codeAlphabet = "23456789ABCDEFGHJKMNPQRSTVWXYZ"
	// MaxIssueKurus: 50.000 ₺
	MaxIssueKurus = 5_000_000
)

type Service struct {
	repo    Repository
	now     func() time.Time
	newCode func() (string, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, newCode: randomCode}
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.WriteString(codePrefix)
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Issue crea una tarjeta nueva; days <= 0 = sin vencimiento.
func (s *Service) Issue(ctx context.Context, amountKurus int64, days int) (ShopCard, error) {
	if amountKurus <= 0 || amountKurus > MaxIssueKurus {
		return ShopCard{}, ErrInvalidInput
	}

	now := s.now()
	c := ShopCard{
		ID:           uuid.NewString(),
		InitialKurus: amountKurus,
		BalanceKurus: amountKurus,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if days > 0 {
		exp := now.AddDate(0, 0, days)
		c.ExpiresAt = &exp
	}

	for attempt := 0; attempt < 5; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return ShopCard{}, fmt.Errorf("generate shop card code: %w", err)
		}
		c.Code = code
		err = s.repo.Create(ctx, c)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		if err != nil {
			return ShopCard{}, err
		}
		return c, nil
	}
	return ShopCard{}, ErrCodeTaken
}

func (s *Service) Lookup(ctx context.Context, code string) (ShopCard, error) {
	code = NormalizeCode(code)
	if code == "" {
		return ShopCard{}, ErrNotFound
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, limit int) ([]ShopCard, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, limit)
}

// Quote calcula cuánto cubre la tarjeta de un total, sin tocar el saldo.
func (s *Service) Quote(ctx context.Context, code string, totalKurus int64) (ShopCard, int64, error) {
	c, err := s.Lookup(ctx, code)
	if err != nil {
		return ShopCard{}, 0, err
	}
	if !c.Usable(s.now()) {
		return ShopCard{}, 0, ErrUnusable
	}
	discount := totalKurus
	if c.BalanceKurus < discount {
		discount = c.BalanceKurus
	}
	return c, discount, nil
}

// Redeem descuenta amount del saldo (fuera de un checkout).
func (s *Service) Redeem(ctx context.Context, code string, amountKurus int64) (ShopCard, error) {
	if amountKurus <= 0 {
		return ShopCard{}, ErrInvalidInput
	}
	c, err := s.Lookup(ctx, code)
	if err != nil {
		return ShopCard{}, err
	}
	if !c.Usable(s.now()) {
		return ShopCard{}, ErrUnusable
	}
	return s.repo.Adjust(ctx, c.Code, -amountKurus)
}

// Refund devuelve saldo (cancelación de pedido).
func (s *Service) Refund(ctx context.Context, code string, amountKurus int64) (ShopCard, error) {
	if amountKurus <= 0 {
		return ShopCard{}, ErrInvalidInput
	}
	return s.repo.Adjust(ctx, NormalizeCode(code), amountKurus)
}
