package router

import (
	"gorm.io/gorm"

	mem "petkimlik/internal/adapters/storage/memory"
	pg "petkimlik/internal/adapters/storage/postgres"
	"petkimlik/internal/config"
	"petkimlik/internal/domain/accounts"
	"petkimlik/internal/domain/addresses"
	"petkimlik/internal/domain/cart"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/dashboard"
	"petkimlik/internal/domain/listings"
	"petkimlik/internal/domain/locations"
	"petkimlik/internal/domain/orders"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/domain/shopcards"
	"petkimlik/internal/domain/tags"
	"petkimlik/internal/seed"
)

// Stores agrupa los repos de todos los módulos (memoria o Postgres).
type Stores struct {
	Accounts   accounts.Repository
	Locations  locations.Repository
	Pets       pets.Repository
	PetCatalog pets.CatalogRepository
	Tags       tags.Repository
	Catalog    catalog.Repository
	Carts      cart.Repository
	Addresses  addresses.Repository
	ShopCards  shopcards.Repository
	Orders     orders.Repository
	Listings   listings.Repository
}

// MemoryStores: el repo de órdenes comparte catálogo, tarjetas y carritos para
// que el checkout sea atómico también en memoria.
func MemoryStores() Stores {
	catalogRepo := mem.NewCatalogRepo()
	cardsRepo := mem.NewShopCardsRepo()
	cartRepo := mem.NewCartRepo()

	return Stores{
		Accounts:   mem.NewAccountsRepo(),
		Locations:  mem.NewLocationsRepo(),
		Pets:       mem.NewPetRepo(),
		PetCatalog: mem.NewPetCatalogRepo(),
		Tags:       mem.NewTagsRepo(),
		Catalog:    catalogRepo,
		Carts:      cartRepo,
		Addresses:  mem.NewAddressesRepo(),
		ShopCards:  cardsRepo,
		Orders:     mem.NewOrdersRepo(catalogRepo, cardsRepo, cartRepo),
		Listings:   mem.NewListingsRepo(),
	}
}

func PostgresStores(db *gorm.DB) Stores {
	return Stores{
		Accounts:   pg.NewAccountsRepo(db),
		Locations:  pg.NewLocationsRepo(db),
		Pets:       pg.NewPetsRepo(db),
		PetCatalog: pg.NewPetCatalogRepo(db),
		Tags:       pg.NewTagsRepo(db),
		Catalog:    pg.NewCatalogRepo(db),
		Carts:      pg.NewCartRepo(db),
		Addresses:  pg.NewAddressesRepo(db),
		ShopCards:  pg.NewShopCardsRepo(db),
		Orders:     pg.NewOrdersRepo(db),
		Listings:   pg.NewListingsRepo(db),
	}
}

// Services es el grafo de servicios; lo comparten la API y cmd/manage.
type Services struct {
	Accounts  *accounts.Service
	Locations *locations.Service
	Pets      *pets.Service
	Tags      *tags.Service
	Catalog   *catalog.Service
	Cart      *cart.Service
	Addresses *addresses.Service
	ShopCards *shopcards.Service
	Orders    *orders.Service
	Listings  *listings.Service
	Dashboard *dashboard.Service
}

func NewServices(cfg *config.Config, st Stores) *Services {
	locationsSvc := locations.NewService(st.Locations)
	accountsSvc := accounts.NewService(st.Accounts, locationsSvc)
	petsSvc := pets.NewService(st.Pets, st.PetCatalog)
	catalogSvc := catalog.NewService(st.Catalog, cfg.Shop.StockWarningThreshold)
	cartSvc := cart.NewService(st.Carts, catalogSvc)
	addressesSvc := addresses.NewService(st.Addresses, locationsSvc)
	cardsSvc := shopcards.NewService(st.ShopCards)

	s := &Services{
		Accounts:  accountsSvc,
		Locations: locationsSvc,
		Pets:      petsSvc,
		Tags:      tags.NewService(st.Tags, petsSvc, accountsSvc, cfg.App.BaseURL),
		Catalog:   catalogSvc,
		Cart:      cartSvc,
		Addresses: addressesSvc,
		ShopCards: cardsSvc,
		Orders: orders.NewService(st.Orders, orders.Deps{
			Carts:     cartSvc,
			Addresses: addressesSvc,
			Locations: locationsSvc,
			Guests:    accountsSvc,
			Cards:     cardsSvc,
		}),
		Listings: listings.NewService(st.Listings, petsSvc, locationsSvc),
	}

	s.Dashboard = dashboard.NewService(dashboard.Sources{
		Users:    s.Accounts,
		Animals:  s.Pets,
		Products: s.Catalog,
		Tags:     s.Tags,
		Listings: s.Listings,
		LowStock: s.Catalog,
		Orders:   s.Orders,
	})
	return s
}

// SeedServices arma las dependencias de seed.Run.
func (s *Services) SeedServices() seed.Services {
	return seed.Services{
		Accounts:  s.Accounts,
		Locations: s.Locations,
		Pets:      s.Pets,
		Catalog:   s.Catalog,
		Listings:  s.Listings,
	}
}
