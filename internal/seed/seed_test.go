package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/accounts"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/listings"
	"petkimlik/internal/domain/locations"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/seed"
)

func newServices() seed.Services {
	locs := locations.NewService(mem.NewLocationsRepo())
	petSvc := pets.NewService(mem.NewPetRepo(), mem.NewPetCatalogRepo())
	return seed.Services{
		Accounts:  accounts.NewService(mem.NewAccountsRepo(), locs),
		Locations: locs,
		Pets:      petSvc,
		Catalog:   catalog.NewService(mem.NewCatalogRepo(), 5),
		Listings:  listings.NewService(mem.NewListingsRepo(), petSvc, locs),
	}
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newServices()

	first, err := seed.Run(ctx, s, logger.Nop())
	require.NoError(t, err)
	assert.Empty(t, first.Skipped)

	second, err := seed.Run(ctx, s, logger.Nop())
	require.NoError(t, err)
	// 3 usuarios + 4 categorías + 5 productos + 3 paquetes.
	assert.Len(t, second.Skipped, 15)

	n, err := s.Accounts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	page, err := s.Catalog.ListProducts(ctx, catalog.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)

	pkgs, err := s.Listings.ListPackages(ctx)
	require.NoError(t, err)
	assert.Len(t, pkgs, 3)
}

func TestRun_VetProfileIncomplete(t *testing.T) {
	ctx := context.Background()
	s := newServices()

	_, err := seed.Run(ctx, s, logger.Nop())
	require.NoError(t, err)

	vet, err := s.Accounts.Authenticate(ctx, seed.VetEmail, seed.Password)
	require.NoError(t, err)
	complete, err := s.Accounts.VendorProfileComplete(ctx, vet.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	provinces, err := s.Locations.ListProvinces(ctx)
	require.NoError(t, err)
	assert.Len(t, provinces, 3)

	species, err := s.Pets.ListSpecies(ctx)
	require.NoError(t, err)
	assert.Len(t, species, 3)
}
