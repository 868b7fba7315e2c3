package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"petkimlik/internal/platform/textnorm"
	"petkimlik/internal/ports/auth"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrOutOfStock   = errors.New("out of stock")
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

type Service struct {
	repo             Repository
	defaultThreshold int
	now              func() time.Time
}

func NewService(repo Repository, defaultThreshold int) *Service {
	if defaultThreshold < 0 {
		defaultThreshold = 0
	}
	return &Service{
		repo:             repo,
		defaultThreshold: defaultThreshold,
		now:              time.Now,
	}
}

type ListInput struct {
	CategorySlug string
	Query        string
	Page         int
	PageSize     int
}

// ListProducts lista productos activos paginados; Page empieza en 1.
func (s *Service) ListProducts(ctx context.Context, in ListInput) (ProductPage, error) {
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

	items, total, err := s.repo.ListProducts(ctx, ProductFilter{
		CategorySlug: strings.TrimSpace(in.CategorySlug),
		Query:        strings.TrimSpace(in.Query),
		ActiveOnly:   true,
		Offset:       (page - 1) * size,
		Limit:        size,
	})
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// GetBySlug solo devuelve productos activos (vista pública).
func (s *Service) GetBySlug(ctx context.Context, slug string) (Product, error) {
	p, err := s.repo.GetProductBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]Product, error) {
	if len(ids) == 0 {
		return map[string]Product{}, nil
	}
	return s.repo.GetProductsByIDs(ctx, ids)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.CountProducts(ctx)
}

type ProductInput struct {
	Name              string
	Slug              string // opcional: se deriva del nombre
	Description       string
	PriceKurus        int64
	Stock             int
	LowStockThreshold *int
	CategorySlugs     []string
}

func canCreate(actor auth.Claims) bool {
	return actor.IsAdmin() || actor.Role == auth.RolePetshop
}

func canEdit(p Product, actor auth.Claims) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == auth.RolePetshop && p.VendorUserID != nil && *p.VendorUserID == actor.UserID
}

func (s *Service) CreateProduct(ctx context.Context, actor auth.Claims, in ProductInput) (Product, error) {
	if !canCreate(actor) {
		return Product{}, ErrForbidden
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || in.PriceKurus <= 0 || in.Stock < 0 {
		return Product{}, ErrInvalidInput
	}
	slug := textnorm.Slug(in.Slug)
	if slug == "" {
		slug = textnorm.Slug(name)
	}
	if slug == "" {
		return Product{}, ErrInvalidInput
	}

	cats, err := s.resolveCategories(ctx, in.CategorySlugs)
	if err != nil {
		return Product{}, err
	}

	threshold := s.defaultThreshold
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return Product{}, ErrInvalidInput
		}
		threshold = *in.LowStockThreshold
	}

	now := s.now()
	p := Product{
		ID:                uuid.NewString(),
		Name:              name,
		Slug:              slug,
		Description:       strings.TrimSpace(in.Description),
		PriceKurus:        in.PriceKurus,
		Stock:             in.Stock,
		LowStockThreshold: threshold,
		IsActive:          true,
		Categories:        cats,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if actor.Role == auth.RolePetshop {
		vendor := actor.UserID
		p.VendorUserID = &vendor
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ProductPatch: nil = no tocar.
type ProductPatch struct {
	Name              *string
	Description       *string
	PriceKurus        *int64
	Stock             *int
	LowStockThreshold *int
	IsActive          *bool
	CategorySlugs     *[]string
}

func (s *Service) UpdateProduct(ctx context.Context, id string, actor auth.Claims, in ProductPatch) (Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !canEdit(p, actor) {
		return Product{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Product{}, ErrInvalidInput
		}
		// El slug no cambia: las URLs de /magaza quedan estables.
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceKurus != nil {
		if *in.PriceKurus <= 0 {
			return Product{}, ErrInvalidInput
		}
		p.PriceKurus = *in.PriceKurus
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return Product{}, ErrInvalidInput
		}
		p.Stock = *in.Stock
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return Product{}, ErrInvalidInput
		}
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.CategorySlugs != nil {
		cats, err := s.resolveCategories(ctx, *in.CategorySlugs)
		if err != nil {
			return Product{}, err
		}
		p.Categories = cats
	}

	p.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) resolveCategories(ctx context.Context, slugs []string) ([]Category, error) {
	clean := make([]string, 0, len(slugs))
	seen := map[string]struct{}{}
	for _, sl := range slugs {
		sl = textnorm.Slug(sl)
		if sl == "" {
			continue
		}
		if _, dup := seen[sl]; dup {
			continue
		}
		seen[sl] = struct{}{}
		clean = append(clean, sl)
	}
	if len(clean) == 0 {
		return nil, nil
	}

	cats, err := s.repo.GetCategoriesBySlugs(ctx, clean)
	if err != nil {
		return nil, err
	}
	if len(cats) != len(clean) {
		return nil, ErrInvalidInput
	}
	return cats, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, actor auth.Claims, name string) (Category, error) {
	if !actor.IsAdmin() {
		return Category{}, ErrForbidden
	}
	name = textnorm.TitleTR(name)
	slug := textnorm.Slug(name)
	if slug == "" {
		return Category{}, ErrInvalidInput
	}

	c := Category{ID: uuid.NewString(), Name: name, Slug: slug}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

// LowStock: override > 0 reemplaza el umbral propio de cada producto.
func (s *Service) LowStock(ctx context.Context, override int) ([]Product, error) {
	if override < 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.LowStock(ctx, override)
}
