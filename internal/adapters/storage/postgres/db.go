package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"petkimlik/internal/config"
	"petkimlik/internal/domain/accounts"
	"petkimlik/internal/domain/addresses"
	"petkimlik/internal/domain/cart"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/listings"
	"petkimlik/internal/domain/locations"
	"petkimlik/internal/domain/orders"
	"petkimlik/internal/domain/pets"
	"petkimlik/internal/domain/shopcards"
	"petkimlik/internal/domain/tags"
	"petkimlik/internal/platform/logger"
)

// Open abre el pool con pgx (database/sql) y monta gorm encima.
func Open(cfg config.DatabaseConfig, log logger.Logger) (*gorm.DB, *QueryCounter, error) {
	sqlDB, err := sql.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, nil, err
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	counter := &QueryCounter{}
	db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB}), &gorm.Config{
		Logger:  NewGormLogger(log, counter, cfg.SlowQuery),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("gorm open: %w", err)
	}
	return db, counter, nil
}

// Models en orden de dependencia para AutoMigrate.
func Models() []any {
	return []any{
		&accounts.User{},
		&accounts.VendorProfile{},
		&accounts.GuestProfile{},
		&locations.Province{},
		&locations.District{},
		&locations.Neighborhood{},
		&pets.Species{},
		&pets.Breed{},
		&pets.Animal{},
		&pets.AnimalProfile{},
		&tags.Tag{},
		&tags.TagScan{},
		&catalog.Category{},
		&catalog.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&addresses.Address{},
		&shopcards.ShopCard{},
		&orders.Order{},
		&orders.OrderItem{},
		&listings.Listing{},
		&listings.CreditPackage{},
		&listings.CreditTransaction{},
	}
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
