package router

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "petkimlik/docs"
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
	"petkimlik/internal/middleware"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/platform/render"
	"petkimlik/internal/session"
)

type Options struct {
	Config   *config.Config
	Log      logger.Logger
	Services *Services

	// Opcional: si viene, reemplaza el cookie store (tests).
	Sessions *session.Manager
}

func NewRouter(opts Options) (http.Handler, error) {
	if opts.Config == nil || opts.Services == nil {
		return nil, errors.New("router: config and services are required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	svc := opts.Services

	sessions := opts.Sessions
	if sessions == nil {
		m, err := newSessions(opts.Config, log)
		if err != nil {
			return nil, err
		}
		sessions = m
	}

	view, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("router: templates: %w", err)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(middleware.AuthOptions{
		Sessions: sessions,
		Loader:   svc.Accounts,
		DevAuth:  opts.Config.App.DevAuth,
	}))
	r.Use(middleware.VendorProfileRequired(svc.Accounts, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	accounts.RegisterRoutes(r, svc.Accounts, accounts.HandlerDeps{
		Sessions:  sessions,
		Carts:     svc.Cart,
		Provinces: svc.Locations,
		Render:    view,
		Log:       log,
	})
	locations.RegisterRoutes(r, svc.Locations)
	pets.RegisterRoutes(r, svc.Pets)
	tags.RegisterRoutes(r, svc.Tags, view, log)
	catalog.RegisterRoutes(r, svc.Catalog, view, log)
	cart.RegisterRoutes(r, svc.Cart, sessions, view, log)
	addresses.RegisterRoutes(r, svc.Addresses)
	shopcards.RegisterRoutes(r, svc.ShopCards)
	orders.RegisterRoutes(r, svc.Orders, svc.Cart, sessions, view, log)
	listings.RegisterRoutes(r, svc.Listings)
	dashboard.RegisterRoutes(r, svc.Dashboard, log)

	return r, nil
}

// newSessions: fuera de producción se acepta SESSION_SECRET vacío con una clave
// aleatoria por proceso (las sesiones no sobreviven un reinicio).
func newSessions(cfg *config.Config, log logger.Logger) (*session.Manager, error) {
	secret := cfg.Session.Secret
	if secret == "" && cfg.App.Environment != "production" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("router: session secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		log.Warn("SESSION_SECRET not set, using an ephemeral key", nil)
	}

	m, err := session.NewManager(session.Options{
		Name:   cfg.Session.Name,
		Secret: secret,
		MaxAge: cfg.Session.MaxAge,
		Secure: cfg.Session.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("router: sessions: %w", err)
	}
	return m, nil
}
