package listings_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/listings"
	"petkimlik/internal/domain/locations"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/ports/auth"
)

type fixture struct {
	svc      *listings.Service
	pets     *pets.Service
	clock    *time.Time
	province int64
	district int64
}

var (
	owner = auth.Claims{UserID: "owner-1", Role: auth.RoleOwner}
	other = auth.Claims{UserID: "owner-2", Role: auth.RoleOwner}
	admin = auth.Claims{UserID: "admin-1", Role: auth.RoleAdmin}
)

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	locs := locations.NewService(mem.NewLocationsRepo())
	_, err := locs.ImportCSV(ctx, strings.NewReader("il,ilce\nAnkara,Çankaya\n"), false)
	require.NoError(t, err)
	provs, err := locs.ListProvinces(ctx)
	require.NoError(t, err)
	dists, err := locs.ListDistricts(ctx, provs[0].ID)
	require.NoError(t, err)

	petSvc := pets.NewService(mem.NewPetRepo(), mem.NewPetCatalogRepo())
	svc := listings.NewService(mem.NewListingsRepo(), petSvc, locs)

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := fixture{svc: svc, pets: petSvc, clock: &clock, province: provs[0].ID, district: dists[0].ID}
	listings.SetNow(svc, func() time.Time { return *f.clock })
	return f
}

func (f fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f fixture) create(t *testing.T, actor auth.Claims, title string) listings.Listing {
	t.Helper()
	l, err := f.svc.Create(context.Background(), actor, listings.Input{
		Kind: listings.KindAdoption, Title: title, ProvinceID: f.province, DistrictID: f.district,
	})
	require.NoError(t, err)
	return l
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, owner, listings.Input{Kind: "sale", Title: "x", ProvinceID: f.province, DistrictID: f.district})
	assert.ErrorIs(t, err, listings.ErrInvalidInput)

	_, err = f.svc.Create(ctx, owner, listings.Input{Kind: listings.KindLost, Title: "  ", ProvinceID: f.province, DistrictID: f.district})
	assert.ErrorIs(t, err, listings.ErrInvalidInput)

	_, err = f.svc.Create(ctx, owner, listings.Input{Kind: listings.KindLost, Title: "Kayıp", ProvinceID: f.province, DistrictID: f.district + 9})
	assert.ErrorIs(t, err, listings.ErrInvalidLocation)

	l := f.create(t, owner, "  Sahiplendirme  ")
	assert.Equal(t, "Sahiplendirme", l.Title)
	assert.Equal(t, listings.StatusActive, l.Status)
}

func TestCreate_AnimalMustBelongToActor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.pets.ImportBreedsCSV(ctx, strings.NewReader("tür,ırk\nKedi,Tekir\n"), false)
	require.NoError(t, err)
	species, err := f.pets.ListSpecies(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, species)

	pet, err := f.pets.Create(ctx, owner.UserID, pets.CreateInput{Name: "Pamuk", SpeciesID: species[0].ID})
	require.NoError(t, err)

	in := listings.Input{Kind: listings.KindLost, Title: "Kayıp kedi", ProvinceID: f.province, DistrictID: f.district, AnimalID: pet.ID}
	_, err = f.svc.Create(ctx, other, in)
	assert.ErrorIs(t, err, listings.ErrForbidden)

	l, err := f.svc.Create(ctx, owner, in)
	require.NoError(t, err)
	require.NotNil(t, l.AnimalID)
	assert.Equal(t, pet.ID, *l.AnimalID)

	in.AnimalID = "missing"
	_, err = f.svc.Create(ctx, owner, in)
	assert.ErrorIs(t, err, listings.ErrInvalidInput)
}

func TestUpdateClose_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.create(t, owner, "İlan")

	title := "Yeni başlık"
	_, err := f.svc.Update(ctx, l.ID, other, listings.Patch{Title: &title})
	assert.ErrorIs(t, err, listings.ErrForbidden)

	updated, err := f.svc.Update(ctx, l.ID, owner, listings.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	closed, err := f.svc.Close(ctx, l.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, listings.StatusClosed, closed.Status)

	_, err = f.svc.Close(ctx, l.ID, owner)
	assert.ErrorIs(t, err, listings.ErrNotActive)

	// Cerrada: oculta para terceros, visible para el dueño.
	_, err = f.svc.Get(ctx, l.ID, auth.Claims{})
	assert.ErrorIs(t, err, listings.ErrNotFound)
	_, err = f.svc.Get(ctx, l.ID, owner)
	assert.NoError(t, err)
}

func TestListActive_BoostedFirstThenNewest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	oldest := f.create(t, owner, "Eski")
	f.advance(time.Hour)
	middle := f.create(t, owner, "Orta")
	f.advance(time.Hour)
	newest := f.create(t, owner, "Yeni")

	_, err := f.svc.Grant(ctx, owner.UserID, 5)
	require.NoError(t, err)
	_, err = f.svc.Boost(ctx, oldest.ID, owner, 2)
	require.NoError(t, err)

	page, err := f.svc.ListActive(ctx, listings.ListInput{})
	require.NoError(t, err)
	require.Len(t, page.Listings, 3)
	assert.Equal(t, []string{oldest.ID, newest.ID, middle.ID}, ids(page.Listings))

	// Vencido el destaque vuelve al orden por fecha.
	f.advance(72 * time.Hour)
	page, err = f.svc.ListActive(ctx, listings.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, ids(page.Listings))

	lost, err := f.svc.ListActive(ctx, listings.ListInput{Kind: listings.KindLost})
	require.NoError(t, err)
	assert.Empty(t, lost.Listings)
}

func ids(list []listings.Listing) []string {
	out := make([]string, 0, len(list))
	for _, l := range list {
		out = append(out, l.ID)
	}
	return out
}

func TestPurchaseAndBoost_Credits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.create(t, owner, "İlan")

	pkg, err := f.svc.CreatePackage(ctx, "Başlangıç", 3, 4990)
	require.NoError(t, err)
	_, err = f.svc.CreatePackage(ctx, "Başlangıç", 5, 9990)
	assert.ErrorIs(t, err, listings.ErrPackageExists)

	_, err = f.svc.Boost(ctx, l.ID, owner, 1)
	assert.ErrorIs(t, err, listings.ErrInsufficientCredits)

	_, err = f.svc.Purchase(ctx, owner, pkg.ID)
	require.NoError(t, err)
	bal, err := f.svc.Balance(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, bal)

	boosted, err := f.svc.Boost(ctx, l.ID, owner, 2)
	require.NoError(t, err)
	require.NotNil(t, boosted.BoostedUntil)
	assert.Equal(t, f.clock.Add(48*time.Hour), *boosted.BoostedUntil)

	// Extiende desde el vencimiento vigente.
	again, err := f.svc.Boost(ctx, l.ID, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Add(72*time.Hour), *again.BoostedUntil)

	bal, err = f.svc.Balance(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, bal)

	_, err = f.svc.Boost(ctx, l.ID, owner, 1)
	assert.ErrorIs(t, err, listings.ErrInsufficientCredits)

	_, err = f.svc.Boost(ctx, l.ID, other, 1)
	assert.ErrorIs(t, err, listings.ErrForbidden)

	_, err = f.svc.Boost(ctx, l.ID, owner, listings.MaxBoostDays+1)
	assert.ErrorIs(t, err, listings.ErrInvalidInput)

	txs, err := f.svc.Transactions(ctx, owner.UserID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, listings.ReasonBoost, txs[0].Reason)
	assert.Equal(t, listings.ReasonPurchase, txs[2].Reason)
}

// readBarrier retiene cada GetByID hasta que n lectores leyeron la misma fila.
type readBarrier struct {
	listings.Repository
	reads sync.WaitGroup
}

func (b *readBarrier) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	l, err := b.Repository.GetByID(ctx, id)
	b.reads.Done()
	b.reads.Wait()
	return l, err
}

func TestBoost_ConcurrentBoostsAddUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.create(t, owner, "İlan")
	pkg, err := f.svc.CreatePackage(ctx, "Paket", 3, 4990)
	require.NoError(t, err)
	_, err = f.svc.Purchase(ctx, owner, pkg.ID)
	require.NoError(t, err)

	repo := &readBarrier{Repository: listings.RepoOf(f.svc)}
	repo.reads.Add(2)
	svc := listings.NewService(repo, f.pets, nil)
	listings.SetNow(svc, func() time.Time { return *f.clock })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Boost(ctx, l.ID, owner, 1)
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	bal, err := f.svc.Balance(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, bal)

	got, err := repo.Repository.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BoostedUntil)
	assert.Equal(t, f.clock.Add(48*time.Hour), *got.BoostedUntil)
}

func TestExpireOlderThan_DryRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	old := f.create(t, owner, "Eski ilan")
	f.advance(40 * 24 * time.Hour)
	fresh := f.create(t, owner, "Yeni ilan")

	preview, err := f.svc.ExpireOlderThan(ctx, 30, true)
	require.NoError(t, err)
	require.Len(t, preview, 1)
	assert.Equal(t, old.ID, preview[0].ID)

	n, err := f.svc.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	done, err := f.svc.ExpireOlderThan(ctx, 30, false)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	got, err := f.svc.Get(ctx, old.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, listings.StatusExpired, got.Status)

	still, err := f.svc.Get(ctx, fresh.ID, auth.Claims{})
	require.NoError(t, err)
	assert.Equal(t, listings.StatusActive, still.Status)

	_, err = f.svc.ExpireOlderThan(ctx, 0, true)
	assert.ErrorIs(t, err, listings.ErrInvalidInput)
}
