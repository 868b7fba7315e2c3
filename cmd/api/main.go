package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petkimlik/internal/adapters/storage/postgres"
	"petkimlik/internal/config"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/router"
)

// @title        petkimlik API
// @version      1.0
// @description  Evcil hayvan kimlik etiketleri, ilanlar ve pet shop.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}

	// Sin base configurada corre en memoria (modo dev).
	stores := router.MemoryStores()
	if cfg.Database.HasDatabase() {
		db, _, err := postgres.Open(cfg.Database, log)
		if err != nil {
			log.Error("database open failed", map[string]any{"err": err})
			os.Exit(1)
		}
		defer func() { _ = postgres.Close(db) }()

		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Error("migrate failed", map[string]any{"err": err})
			os.Exit(1)
		}
		stores = router.PostgresStores(db)
	} else {
		log.Warn("no database configured, using in-memory storage", nil)
	}

	h, err := router.NewRouter(router.Options{
		Config:   cfg,
		Log:      log,
		Services: router.NewServices(cfg, stores),
	})
	if err != nil {
		log.Error("router setup failed", map[string]any{"err": err})
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.App.Environment})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"err": err})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", map[string]any{"err": err})
	}
	log.Info("server stopped", nil)
}
