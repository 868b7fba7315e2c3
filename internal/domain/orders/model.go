package orders

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPaid:      1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// CanAdvanceTo: solo hacia adelante, nunca desde cancelled/delivered.
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to > from
}

func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusPaid
}

// Order: exactamente uno de UserID / GuestProfileID.
type Order struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	Number         string  `gorm:"type:varchar(24);not null;uniqueIndex"`
	UserID         *string `gorm:"type:uuid;index"`
	GuestProfileID *string `gorm:"type:uuid;index"`
	Status         Status  `gorm:"type:varchar(20);not null;index"`

	SubtotalKurus int64  `gorm:"not null"`
	DiscountKurus int64  `gorm:"not null;default:0"`
	TotalKurus    int64  `gorm:"not null"`
	ShopCardCode  string `gorm:"type:varchar(20)"`

	// Snapshot del envío: la dirección puede cambiar o borrarse después.
	ShipFullName     string `gorm:"type:varchar(150);not null"`
	ShipPhone        string `gorm:"type:varchar(20);not null"`
	ShipEmail        string `gorm:"type:varchar(254)"`
	ShipProvince     string `gorm:"type:varchar(80);not null"`
	ShipDistrict     string `gorm:"type:varchar(80);not null"`
	ShipNeighborhood string `gorm:"type:varchar(120)"`
	ShipLine         string `gorm:"type:text;not null"`
	ShipPostalCode   string `gorm:"type:varchar(10)"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Order) TableName() string { return "orders" }

func (o Order) OwnedBy(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}

type OrderItem struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	OrderID        string `gorm:"type:uuid;not null;index"`
	ProductID      string `gorm:"type:uuid;not null;index"`
	ProductName    string `gorm:"type:varchar(200);not null"`
	UnitPriceKurus int64  `gorm:"not null"`
	Quantity       int    `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i OrderItem) LineTotal() int64 {
	return i.UnitPriceKurus * int64(i.Quantity)
}

// AdminRow es un pedido con la cantidad total de pedidos de su usuario.
type AdminRow struct {
	Order          Order
	UserOrderCount int64
}

type AdminFilter struct {
	Status Status
	Offset int
	Limit  int
}
