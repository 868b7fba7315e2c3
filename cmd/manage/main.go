// Command manage agrupa las tareas de mantenimiento: migraciones, importaciones,
// limpiezas de datos y avisos periódicos (cron).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"petkimlik/internal/adapters/storage/postgres"
	"petkimlik/internal/config"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/router"
)

// StoreOpener abre los repos; devuelve db nil cuando corre en memoria.
type StoreOpener func(cfg *config.Config, log logger.Logger) (router.Stores, *gorm.DB, error)

type cli struct {
	out  io.Writer
	cfg  *config.Config
	log  logger.Logger
	open StoreOpener

	db  *gorm.DB
	svc *router.Services
}

func openConfigured(cfg *config.Config, log logger.Logger) (router.Stores, *gorm.DB, error) {
	if !cfg.Database.HasDatabase() {
		log.Warn("no database configured, changes will not be persisted", nil)
		return router.MemoryStores(), nil, nil
	}
	db, _, err := postgres.Open(cfg.Database, log)
	if err != nil {
		return router.Stores{}, nil, err
	}
	return router.PostgresStores(db), db, nil
}

func newRootCmd(c *cli) *cobra.Command {
	if c.open == nil {
		c.open = openConfigured
	}
	var verbose bool

	root := &cobra.Command{
		Use:           "manage",
		Short:         "petkimlik maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg == nil {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				c.cfg = cfg
			}
			if c.log == nil {
				level := logger.ParseLevel(c.cfg.Log.Level)
				if verbose {
					level = logger.Debug
				}
				c.log = logger.New(logger.Options{Level: level, Format: logger.ParseFormat(c.cfg.Log.Format), App: "manage"})
			}

			stores, db, err := c.open(c.cfg, c.log)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			c.db = db
			c.svc = router.NewServices(c.cfg, stores)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.db != nil {
				return postgres.Close(c.db)
			}
			return nil
		},
	}
	root.SetOut(c.out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		migrateCmd(c),
		seedLocationsCmd(c),
		loadBreedsCmd(c),
		fixDuplicateEmailsCmd(c),
		fixDuplicatePhonesCmd(c),
		stockWarningCmd(c),
		expireListingsCmd(c),
		generateTagsCmd(c),
		issueShopCardCmd(c),
		seedFixturesCmd(c),
	)
	return root
}

func main() {
	if err := newRootCmd(&cli{out: os.Stdout}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
