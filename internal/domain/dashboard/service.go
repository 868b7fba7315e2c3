package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/orders"
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type LowStockReader interface {
	LowStock(ctx context.Context, override int) ([]catalog.Product, error)
}

type OrderCounter interface {
	CountByStatus(ctx context.Context) (map[orders.Status]int64, error)
}

type Sources struct {
	Users    Counter
	Animals  Counter
	Products Counter
	Tags     ActiveCounter
	Listings ActiveCounter
	LowStock LowStockReader
	Orders   OrderCounter
}

type Stats struct {
	Users          int64                   `json:"users"`
	Animals        int64                   `json:"animals"`
	ActiveTags     int64                   `json:"active_tags"`
	Products       int64                   `json:"products"`
	LowStock       int64                   `json:"low_stock_products"`
	ActiveListings int64                   `json:"active_listings"`
	OrdersByStatus map[orders.Status]int64 `json:"orders_by_status"`
}

type Service struct {
	src Sources
}

func NewService(src Sources) *Service {
	return &Service{src: src}
}

// Stats consulta todos los contadores en paralelo; el primer error cancela el resto.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	g, ctx := errgroup.WithContext(ctx)

	count := func(name string, dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("dashboard %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}

	count("users", &out.Users, s.src.Users.Count)
	count("animals", &out.Animals, s.src.Animals.Count)
	count("products", &out.Products, s.src.Products.Count)
	count("tags", &out.ActiveTags, s.src.Tags.CountActive)
	count("listings", &out.ActiveListings, s.src.Listings.CountActive)
	count("low stock", &out.LowStock, func(ctx context.Context) (int64, error) {
		list, err := s.src.LowStock.LowStock(ctx, 0)
		return int64(len(list)), err
	})
	g.Go(func() error {
		m, err := s.src.Orders.CountByStatus(ctx)
		if err != nil {
			return fmt.Errorf("dashboard orders: %w", err)
		}
		out.OrdersByStatus = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}
