package shopcards

import "time"

// ShopCard es una tarjeta de regalo con saldo en kuruş.
type ShopCard struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex"`
	InitialKurus int64  `gorm:"not null"`
	BalanceKurus int64  `gorm:"not null;check:balance_kurus >= 0"`
	ExpiresAt    *time.Time
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ShopCard) TableName() string { return "shop_cards" }

func (c ShopCard) Usable(now time.Time) bool {
	if !c.IsActive || c.BalanceKurus <= 0 {
		return false
	}
	return c.ExpiresAt == nil || now.Before(*c.ExpiresAt)
}
