package cart

import "time"

// Cart persistente: uno por usuario.
type Cart struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	UserID    string     `gorm:"type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	CartID    string `gorm:"type:uuid;primaryKey"`
	ProductID string `gorm:"type:uuid;primaryKey"`
	Quantity  int    `gorm:"not null;check:quantity >= 1"`
}

func (CartItem) TableName() string { return "cart_items" }

// Line es un renglón del carrito ya resuelto contra el catálogo.
type Line struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	ProductSlug    string `json:"product_slug"`
	Quantity       int    `json:"quantity"`
	UnitPriceKurus int64  `json:"unit_price_kurus"`
	LineTotalKurus int64  `json:"line_total_kurus"`
	Available      bool   `json:"available"` // false si no hay stock suficiente
}

type View struct {
	Lines         []Line `json:"lines"`
	ItemCount     int    `json:"item_count"`
	SubtotalKurus int64  `json:"subtotal_kurus"`
}
