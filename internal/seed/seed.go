// Package seed carga datos de ejemplo idempotentes para desarrollo y tests.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"

	"petkimlik/internal/domain/accounts"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/listings"
	"petkimlik/internal/domain/locations"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/ports/auth"
)

//go:embed fixtures/locations.csv
var locationsCSV []byte

//go:embed fixtures/breeds.csv
var breedsCSV []byte

const (
	AdminEmail = "admin@petkimlik.local"
	OwnerEmail = "sahip@petkimlik.local"
	VetEmail   = "veteriner@petkimlik.local"

	// Password es la contraseña de todas las cuentas de ejemplo.
	Password = "petkimlik123"
)

type Services struct {
	Accounts  *accounts.Service
	Locations *locations.Service
	Pets      *pets.Service
	Catalog   *catalog.Service
	Listings  *listings.Service
}

type Report struct {
	Created []string
	Skipped []string
}

func (r *Report) created(format string, args ...any) {
	r.Created = append(r.Created, fmt.Sprintf(format, args...))
}

func (r *Report) skipped(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

type product struct {
	name       string
	desc       string
	priceKurus int64
	stock      int
	categories []string
}

var (
	categoryNames = []string{"Kedi Maması", "Köpek Maması", "Oyuncak", "Aksesuar"}

	products = []product{
		{"Yetişkin Kedi Maması 1,5 kg", "Tavuklu kuru mama", 45000, 40, []string{"kedi-mamasi"}},
		{"Yavru Köpek Maması 3 kg", "Kuzu etli kuru mama", 62000, 25, []string{"kopek-mamasi"}},
		{"Oyuncak Fare", "Kedi nanesi içerir", 2550, 3, []string{"oyuncak"}},
		{"Çelik Mama Kabı", "Paslanmaz çelik, 500 ml", 12900, 15, []string{"aksesuar"}},
		{"Reflektörlü Tasma", "Ayarlanabilir, orta boy", 18900, 2, []string{"aksesuar", "oyuncak"}},
	}

	packages = []struct {
		name    string
		credits int
		price   int64
	}{
		{"Başlangıç", 5, 4990},
		{"Standart", 15, 12990},
		{"Profesyonel", 40, 29990},
	}
)

// Run es idempotente: lo que ya existe se reporta como skipped.
func Run(ctx context.Context, s Services, log logger.Logger) (Report, error) {
	var rep Report

	locStats, err := s.Locations.ImportCSV(ctx, bytes.NewReader(locationsCSV), false)
	if err != nil {
		return rep, fmt.Errorf("seed locations: %w", err)
	}
	rep.created("locations: %d provinces, %d districts, %d neighborhoods",
		locStats.ProvincesCreated, locStats.DistrictsCreated, locStats.NeighborhoodsCreated)

	breedStats, err := s.Pets.ImportBreedsCSV(ctx, bytes.NewReader(breedsCSV), false)
	if err != nil {
		return rep, fmt.Errorf("seed breeds: %w", err)
	}
	rep.created("species/breeds: %d species, %d breeds", breedStats.SpeciesCreated, breedStats.BreedsCreated)

	admin, err := s.Accounts.CreateAdmin(ctx, AdminEmail, Password, "Sistem Yöneticisi")
	switch {
	case err == nil:
		rep.created("user %s (admin)", admin.Email)
	case errors.Is(err, accounts.ErrEmailTaken):
		rep.skipped("user %s exists", AdminEmail)
	default:
		return rep, fmt.Errorf("seed admin: %w", err)
	}

	users := []accounts.RegisterInput{
		{Email: OwnerEmail, Phone: "+905321112233", Password: Password, FullName: "Ayşe Yılmaz", Role: auth.RoleOwner},
		// Sin perfil de negocio: el middleware lo manda a completar.
		{Email: VetEmail, Password: Password, FullName: "Dr. Mehmet Kaya", Role: auth.RoleVet},
	}
	for _, in := range users {
		u, err := s.Accounts.Register(ctx, in)
		switch {
		case err == nil:
			rep.created("user %s (%s)", u.Email, u.Role)
		case errors.Is(err, accounts.ErrEmailTaken), errors.Is(err, accounts.ErrPhoneTaken):
			rep.skipped("user %s exists", in.Email)
		default:
			return rep, fmt.Errorf("seed user %s: %w", in.Email, err)
		}
	}

	actor := auth.Claims{UserID: "seed", Role: auth.RoleAdmin}
	for _, name := range categoryNames {
		c, err := s.Catalog.CreateCategory(ctx, actor, name)
		switch {
		case err == nil:
			rep.created("category %s", c.Slug)
		case errors.Is(err, catalog.ErrSlugTaken):
			rep.skipped("category %s exists", name)
		default:
			return rep, fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	for _, p := range products {
		created, err := s.Catalog.CreateProduct(ctx, actor, catalog.ProductInput{
			Name:          p.name,
			Description:   p.desc,
			PriceKurus:    p.priceKurus,
			Stock:         p.stock,
			CategorySlugs: p.categories,
		})
		switch {
		case err == nil:
			rep.created("product %s", created.Slug)
		case errors.Is(err, catalog.ErrSlugTaken):
			rep.skipped("product %s exists", p.name)
		default:
			return rep, fmt.Errorf("seed product %s: %w", p.name, err)
		}
	}

	for _, p := range packages {
		_, err := s.Listings.CreatePackage(ctx, p.name, p.credits, p.price)
		switch {
		case err == nil:
			rep.created("credit package %s", p.name)
		case errors.Is(err, listings.ErrPackageExists):
			rep.skipped("credit package %s exists", p.name)
		default:
			return rep, fmt.Errorf("seed credit package %s: %w", p.name, err)
		}
	}

	log.Info("seed finished", map[string]any{"created": len(rep.Created), "skipped": len(rep.Skipped)})
	return rep, nil
}
