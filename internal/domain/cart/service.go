package cart

import (
	"context"
	"errors"
	"sort"
	"strings"

	"petkimlik/internal/domain/catalog"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownItem  = errors.New("product not available")
	ErrOutOfStock   = errors.New("not enough stock")
)

const MaxQuantity = 99

// Bucket abstrae dónde vive el carrito: repo (usuario) o sesión (invitado).
type Bucket interface {
	Load(ctx context.Context) (map[string]int, error)
	Save(ctx context.Context, items map[string]int) error
}

type ProductSource interface {
	GetMany(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

type Service struct {
	repo     Repository
	products ProductSource
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

type userBucket struct {
	repo   Repository
	userID string
}

func (b userBucket) Load(ctx context.Context) (map[string]int, error) {
	return b.repo.Load(ctx, b.userID)
}

func (b userBucket) Save(ctx context.Context, items map[string]int) error {
	return b.repo.Save(ctx, b.userID, items)
}

// ForUser devuelve el bucket persistente del usuario.
func (s *Service) ForUser(userID string) Bucket {
	return userBucket{repo: s.repo, userID: userID}
}

func (s *Service) Get(ctx context.Context, b Bucket) (View, error) {
	items, err := b.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return s.View(ctx, items)
}

// View resuelve el mapa contra el catálogo en una sola consulta.
// Productos borrados o inactivos no aparecen.
func (s *Service) View(ctx context.Context, items map[string]int) (View, error) {
	v := View{Lines: []Line{}}
	if len(items) == 0 {
		return v, nil
	}

	products, err := s.products.GetMany(ctx, keys(items))
	if err != nil {
		return View{}, err
	}

	for _, id := range keys(items) {
		p, ok := products[id]
		if !ok || !p.IsActive {
			continue
		}
		qty := items[id]
		line := Line{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductSlug:    p.Slug,
			Quantity:       qty,
			UnitPriceKurus: p.PriceKurus,
			LineTotalKurus: p.PriceKurus * int64(qty),
			Available:      p.Stock >= qty,
		}
		v.Lines = append(v.Lines, line)
		v.ItemCount += qty
		v.SubtotalKurus += line.LineTotalKurus
	}

	sort.Slice(v.Lines, func(i, j int) bool { return v.Lines[i].ProductName < v.Lines[j].ProductName })
	return v, nil
}

// Add suma qty al renglón; el total no puede pasar el stock.
func (s *Service) Add(ctx context.Context, b Bucket, productID string, qty int) (View, error) {
	if qty <= 0 {
		return View{}, ErrInvalidInput
	}
	items, err := b.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return s.set(ctx, b, items, productID, items[strings.TrimSpace(productID)]+qty)
}

// SetQuantity fija la cantidad; 0 elimina el renglón.
func (s *Service) SetQuantity(ctx context.Context, b Bucket, productID string, qty int) (View, error) {
	if qty < 0 {
		return View{}, ErrInvalidInput
	}
	items, err := b.Load(ctx)
	if err != nil {
		return View{}, err
	}
	return s.set(ctx, b, items, productID, qty)
}

func (s *Service) Remove(ctx context.Context, b Bucket, productID string) (View, error) {
	return s.SetQuantity(ctx, b, productID, 0)
}

func (s *Service) Clear(ctx context.Context, b Bucket) error {
	return b.Save(ctx, map[string]int{})
}

func (s *Service) set(ctx context.Context, b Bucket, items map[string]int, productID string, qty int) (View, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return View{}, ErrInvalidInput
	}
	if items == nil {
		items = map[string]int{}
	}

	if qty == 0 {
		delete(items, productID)
	} else {
		if qty > MaxQuantity {
			return View{}, ErrInvalidInput
		}
		products, err := s.products.GetMany(ctx, []string{productID})
		if err != nil {
			return View{}, err
		}
		p, ok := products[productID]
		if !ok || !p.IsActive {
			return View{}, ErrUnknownItem
		}
		if qty > p.Stock {
			return View{}, ErrOutOfStock
		}
		items[productID] = qty
	}

	if err := b.Save(ctx, items); err != nil {
		return View{}, err
	}
	return s.View(ctx, items)
}

// MergeGuest suma el carrito de invitado al persistente al hacer login.
// Cantidades topeadas al stock; productos desconocidos o inactivos se descartan.
func (s *Service) MergeGuest(ctx context.Context, userID string, guest map[string]int) error {
	if len(guest) == 0 {
		return nil
	}

	b := s.ForUser(userID)
	items, err := b.Load(ctx)
	if err != nil {
		return err
	}
	if items == nil {
		items = map[string]int{}
	}

	products, err := s.products.GetMany(ctx, keys(guest))
	if err != nil {
		return err
	}

	for id, qty := range guest {
		p, ok := products[id]
		if !ok || !p.IsActive || qty <= 0 {
			continue
		}
		total := items[id] + qty
		if total > p.Stock {
			total = p.Stock
		}
		if total > MaxQuantity {
			total = MaxQuantity
		}
		if total <= 0 {
			delete(items, id)
			continue
		}
		items[id] = total
	}
	return b.Save(ctx, items)
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
