package tags_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/domain/tags"
	"petkimlik/internal/ports/auth"
)

type fakeOwners map[string]string

func (f fakeOwners) OwnerPhone(_ context.Context, userID string) (string, error) {
	return f[userID], nil
}

type fixture struct {
	svc    *tags.Service
	repo   tags.Repository
	pets   *pets.Service
	animal pets.Animal
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	petSvc := pets.NewService(mem.NewPetRepo(), mem.NewPetCatalogRepo())
	_, err := petSvc.ImportBreedsCSV(ctx, strings.NewReader("tur,irk\nKöpek,Kangal\n"), false)
	require.NoError(t, err)
	species, err := petSvc.ListSpecies(ctx)
	require.NoError(t, err)
	breeds, err := petSvc.ListBreeds(ctx, species[0].ID)
	require.NoError(t, err)

	a, err := petSvc.Create(ctx, "owner-1", pets.CreateInput{Name: "Karabaş", SpeciesID: species[0].ID, BreedID: &breeds[0].ID, Color: "krem"})
	require.NoError(t, err)

	repo := mem.NewTagsRepo()
	svc := tags.NewService(repo, petSvc, fakeOwners{"owner-1": "+905321112233"}, "https://petkimlik.example/")
	return fixture{svc: svc, repo: repo, pets: petSvc, animal: a}
}

func owner(id string) auth.Claims { return auth.Claims{UserID: id, Role: auth.RoleOwner} }

func TestGenerateBatch_UniqueWellFormedCodes(t *testing.T) {
	f := newFixture(t)
	items, err := f.svc.GenerateBatch(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, items, 50)

	seen := map[string]bool{}
	for _, tg := range items {
		assert.Regexp(t, `^PK-[23456789ABCDEFGHJKMNPQRSTVWXYZ]{6}$`, tg.Code)
		assert.False(t, seen[tg.Code], "duplicate %s", tg.Code)
		seen[tg.Code] = true
		assert.False(t, tg.Assigned())
	}

	_, err = f.svc.GenerateBatch(context.Background(), 0)
	assert.ErrorIs(t, err, tags.ErrInvalidInput)
}

func TestGenerateBatch_RetriesCollisions(t *testing.T) {
	f := newFixture(t)
	codes := []string{"PK-AAAAAA", "PK-AAAAAA", "PK-BBBBBB"}
	i := 0
	tags.SetCodeSource(f.svc, func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	})

	items, err := f.svc.GenerateBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "PK-AAAAAA", items[0].Code)
	assert.Equal(t, "PK-BBBBBB", items[1].Code)

	// todos los códigos ya existen
	_, err = f.svc.GenerateBatch(context.Background(), 1)
	assert.ErrorIs(t, err, tags.ErrCodeCollisions)
}

func TestActivateScanDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, err := f.svc.GenerateBatch(ctx, 1)
	require.NoError(t, err)
	code := items[0].Code

	// libre: el scan se registra pero no hay perfil
	_, err = f.svc.Scan(ctx, code, tags.ScanMeta{IPAddress: "10.0.0.1"})
	assert.ErrorIs(t, err, tags.ErrNotActivated)

	_, err = f.svc.Activate(ctx, code, owner("intruder"), f.animal.ID)
	assert.ErrorIs(t, err, tags.ErrForbidden)

	tg, err := f.svc.Activate(ctx, strings.ToLower(code), owner("owner-1"), f.animal.ID)
	require.NoError(t, err)
	require.NotNil(t, tg.ActivatedAt)

	_, err = f.svc.Activate(ctx, code, owner("owner-1"), f.animal.ID)
	assert.ErrorIs(t, err, tags.ErrAlreadyActive)

	p, err := f.svc.Scan(ctx, code, tags.ScanMeta{IPAddress: "10.0.0.2", UserAgent: "Mozilla"})
	require.NoError(t, err)
	assert.Equal(t, "Karabaş", p.AnimalName)
	assert.Equal(t, "Köpek", p.SpeciesName)
	assert.Equal(t, "Kangal", p.BreedName)
	assert.Empty(t, p.OwnerPhone, "phone hidden by default")

	show := true
	_, err = f.pets.UpdateProfile(ctx, f.animal.ID, owner("owner-1"), pets.ProfileInput{ShowOwnerPhone: &show})
	require.NoError(t, err)
	p, err = f.svc.Scan(ctx, code, tags.ScanMeta{})
	require.NoError(t, err)
	assert.Equal(t, "+905321112233", p.OwnerPhone)

	scans, err := f.svc.ListScans(ctx, f.animal.ID, owner("owner-1"), 0)
	require.NoError(t, err)
	require.Len(t, scans, 2, "scan before activation has no animal")
	assert.Equal(t, "", scans[0].IPAddress)
	assert.Equal(t, "10.0.0.2", scans[1].IPAddress)

	_, err = f.svc.ListScans(ctx, f.animal.ID, owner("intruder"), 0)
	assert.ErrorIs(t, err, tags.ErrForbidden)

	_, err = f.svc.Deactivate(ctx, code, owner("owner-1"))
	require.NoError(t, err)
	_, err = f.svc.Scan(ctx, code, tags.ScanMeta{})
	assert.ErrorIs(t, err, tags.ErrNotActivated)
}

func TestScan_PrivateProfileUnlessLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, _ := f.svc.GenerateBatch(ctx, 1)
	code := items[0].Code
	_, err := f.svc.Activate(ctx, code, owner("owner-1"), f.animal.ID)
	require.NoError(t, err)

	private := false
	_, err = f.pets.UpdateProfile(ctx, f.animal.ID, owner("owner-1"), pets.ProfileInput{IsPublic: &private})
	require.NoError(t, err)

	_, err = f.svc.Scan(ctx, code, tags.ScanMeta{})
	assert.ErrorIs(t, err, tags.ErrProfileHidden)

	_, err = f.pets.SetLost(ctx, f.animal.ID, owner("owner-1"), true)
	require.NoError(t, err)
	p, err := f.svc.Scan(ctx, code, tags.ScanMeta{})
	require.NoError(t, err)
	assert.True(t, p.IsLost)
}

func TestScan_UnknownCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Scan(context.Background(), "PK-000000", tags.ScanMeta{})
	assert.ErrorIs(t, err, tags.ErrNotFound)
}

func TestQRCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, _ := f.svc.GenerateBatch(ctx, 1)

	png, err := f.svc.QRCode(ctx, items[0].Code, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	assert.Equal(t, fmt.Sprintf("https://petkimlik.example/etiket/%s", items[0].Code), f.svc.PublicURL(items[0].Code))
}

// codeBarrier retiene cada GetByCode hasta que n lectores vieron la etiqueta libre.
type codeBarrier struct {
	tags.Repository
	reads sync.WaitGroup
}

func (b *codeBarrier) GetByCode(ctx context.Context, code string) (tags.Tag, error) {
	t, err := b.Repository.GetByCode(ctx, code)
	b.reads.Done()
	b.reads.Wait()
	return t, err
}

func TestActivate_ConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items, err := f.svc.GenerateBatch(ctx, 1)
	require.NoError(t, err)

	second, err := f.pets.Create(ctx, "owner-1", pets.CreateInput{Name: "Pamuk", SpeciesID: f.animal.SpeciesID, Color: "beyaz"})
	require.NoError(t, err)

	repo := &codeBarrier{Repository: f.repo}
	repo.reads.Add(2)
	svc := tags.NewService(repo, f.pets, fakeOwners{}, "https://petkimlik.example/")

	animals := []string{f.animal.ID, second.ID}
	errs := make([]error, len(animals))
	var wg sync.WaitGroup
	for i, id := range animals {
		i, id := i, id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Activate(ctx, items[0].Code, owner("owner-1"), id)
		}()
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, tags.ErrAlreadyActive):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	got, err := f.repo.GetByCode(ctx, items[0].Code)
	require.NoError(t, err)
	require.NotNil(t, got.AnimalID)
	assert.Contains(t, animals, *got.AnimalID)
}
