package pets_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/ports/auth"
)

const breedsCSV = "tür,ırk\nKÖPEK,golden retriever\nköpek,Kangal\nkedi,VAN KEDİSİ\n,eksik\n"

func newService(t *testing.T) (*pets.Service, pets.CatalogRepository) {
	t.Helper()
	catalog := mem.NewPetCatalogRepo()
	svc := pets.NewService(mem.NewPetRepo(), catalog)

	_, err := svc.ImportBreedsCSV(context.Background(), strings.NewReader(breedsCSV), false)
	require.NoError(t, err)
	return svc, catalog
}

func speciesBySlug(t *testing.T, svc *pets.Service, slug string) pets.Species {
	t.Helper()
	items, err := svc.ListSpecies(context.Background())
	require.NoError(t, err)
	for _, s := range items {
		if s.Slug == slug {
			return s
		}
	}
	t.Fatalf("species %q not found", slug)
	return pets.Species{}
}

func owner(id string) auth.Claims { return auth.Claims{UserID: id, Role: auth.RoleOwner} }

func TestImportBreedsCSV(t *testing.T) {
	ctx := context.Background()
	svc := pets.NewService(mem.NewPetRepo(), mem.NewPetCatalogRepo())

	stats, err := svc.ImportBreedsCSV(ctx, strings.NewReader(breedsCSV), true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SpeciesCreated)
	assert.Equal(t, 3, stats.BreedsCreated)
	assert.Equal(t, 1, stats.Skipped)

	// dry-run no persiste
	items, err := svc.ListSpecies(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.ImportBreedsCSV(ctx, strings.NewReader(breedsCSV), false)
	require.NoError(t, err)

	// reimportar es idempotente
	stats, err = svc.ImportBreedsCSV(ctx, strings.NewReader(breedsCSV), false)
	require.NoError(t, err)
	assert.Zero(t, stats.SpeciesCreated)
	assert.Zero(t, stats.BreedsCreated)

	dog := speciesBySlug(t, svc, "kopek")
	assert.Equal(t, "Köpek", dog.Name)
	breeds, err := svc.ListBreeds(ctx, dog.ID)
	require.NoError(t, err)
	require.Len(t, breeds, 2)
	assert.Equal(t, "Golden Retriever", breeds[0].Name)
}

func TestImportBreedsCSV_BadHeader(t *testing.T) {
	svc := pets.NewService(mem.NewPetRepo(), mem.NewPetCatalogRepo())
	_, err := svc.ImportBreedsCSV(context.Background(), strings.NewReader("species,breed\nx,y\n"), false)
	assert.ErrorIs(t, err, pets.ErrBadHeader)
}

func TestCreate_ValidatesSpeciesBreedAndMicrochip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	dog := speciesBySlug(t, svc, "kopek")
	cat := speciesBySlug(t, svc, "kedi")
	catBreeds, _ := svc.ListBreeds(ctx, cat.ID)

	_, err := svc.Create(ctx, "u1", pets.CreateInput{Name: "Karabaş", SpeciesID: 999})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", pets.CreateInput{Name: "Karabaş", SpeciesID: dog.ID, BreedID: &catBreeds[0].ID})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", pets.CreateInput{Name: "Karabaş", SpeciesID: dog.ID, Microchip: "12345"})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)

	a, err := svc.Create(ctx, "u1", pets.CreateInput{Name: " Karabaş ", SpeciesID: dog.ID, Microchip: "900 108 000 123 456"})
	require.NoError(t, err)
	assert.Equal(t, "Karabaş", a.Name)
	assert.Equal(t, pets.SexUnknown, a.Sex)
	require.NotNil(t, a.Microchip)
	assert.Equal(t, "900108000123456", *a.Microchip)

	_, err = svc.Create(ctx, "u2", pets.CreateInput{Name: "Boncuk", SpeciesID: dog.ID, Microchip: "900108000123456"})
	assert.ErrorIs(t, err, pets.ErrMicrochipTaken)

	p, err := svc.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, p.IsPublic)
	assert.False(t, p.ShowOwnerPhone)
}

func TestUpdate_PatchSemantics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	dog := speciesBySlug(t, svc, "kopek")
	breeds, _ := svc.ListBreeds(ctx, dog.ID)

	bd := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	a, err := svc.Create(ctx, "u1", pets.CreateInput{Name: "Karabaş", SpeciesID: dog.ID, BreedID: &breeds[0].ID, BirthDate: &bd, Color: "siyah"})
	require.NoError(t, err)

	name := "Paşa"
	updated, err := svc.Update(ctx, a.ID, owner("u1"), pets.UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Paşa", updated.Name)
	assert.Equal(t, "siyah", updated.Color)
	require.NotNil(t, updated.BirthDate)
	require.NotNil(t, updated.BreedID)

	updated, err = svc.Update(ctx, a.ID, owner("u1"), pets.UpdateInput{
		BirthDate:  pets.PatchDate{Present: true},
		ClearBreed: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.BirthDate)
	assert.Nil(t, updated.BreedID)

	_, err = svc.Update(ctx, a.ID, owner("u2"), pets.UpdateInput{Name: &name})
	assert.ErrorIs(t, err, pets.ErrForbidden)

	// admin puede editar
	_, err = svc.Update(ctx, a.ID, auth.Claims{UserID: "adm", Role: auth.RoleAdmin}, pets.UpdateInput{Name: &name})
	require.NoError(t, err)

	future := time.Now().Add(48 * time.Hour)
	_, err = svc.Update(ctx, a.ID, owner("u1"), pets.UpdateInput{BirthDate: pets.PatchDate{Present: true, Value: &future}})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)
}

func TestSetLostAndProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	dog := speciesBySlug(t, svc, "kopek")

	a, err := svc.Create(ctx, "u1", pets.CreateInput{Name: "Karabaş", SpeciesID: dog.ID})
	require.NoError(t, err)

	lost, err := svc.SetLost(ctx, a.ID, owner("u1"), true)
	require.NoError(t, err)
	assert.True(t, lost.IsLost)

	_, err = svc.SetLost(ctx, a.ID, owner("u2"), false)
	assert.ErrorIs(t, err, pets.ErrForbidden)

	show := true
	note := " Ödül var "
	p, err := svc.UpdateProfile(ctx, a.ID, owner("u1"), pets.ProfileInput{ShowOwnerPhone: &show, RewardNote: &note})
	require.NoError(t, err)
	assert.True(t, p.ShowOwnerPhone)
	assert.Equal(t, "Ödül var", p.RewardNote)

	_, err = svc.GetForUser(ctx, a.ID, owner("u2"))
	assert.ErrorIs(t, err, pets.ErrForbidden)
	_, err = svc.GetForUser(ctx, "missing", owner("u1"))
	assert.ErrorIs(t, err, pets.ErrNotFound)
}
