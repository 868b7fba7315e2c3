package listings

import "time"

type Kind string

const (
	KindAdoption Kind = "adoption"
	KindLost     Kind = "lost"
	KindFound    Kind = "found"
	KindMating   Kind = "mating"
)

func (k Kind) Valid() bool {
	switch k {
	case KindAdoption, KindLost, KindFound, KindMating:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
	StatusExpired Status = "expired"
)

type Listing struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;index" json:"user_id"`
	AnimalID     *string    `gorm:"type:uuid;index" json:"animal_id,omitempty"`
	Kind         Kind       `gorm:"type:varchar(20);not null;index" json:"kind"`
	Title        string     `gorm:"type:varchar(150);not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	ProvinceID   int64      `gorm:"not null;index" json:"province_id"`
	DistrictID   int64      `gorm:"not null" json:"district_id"`
	Status       Status     `gorm:"type:varchar(20);not null;index" json:"status"`
	BoostedUntil *time.Time `gorm:"index" json:"boosted_until,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Listing) TableName() string { return "listings" }

func (l Listing) Boosted(now time.Time) bool {
	return l.BoostedUntil != nil && l.BoostedUntil.After(now)
}

// BoostEnd suma days al vencimiento vigente, o a now si ya no está destacada.
func (l Listing) BoostEnd(now time.Time, days int) time.Time {
	from := now
	if l.Boosted(now) {
		from = *l.BoostedUntil
	}
	return from.Add(time.Duration(days) * 24 * time.Hour)
}

type CreditPackage struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Credits    int    `gorm:"not null" json:"credits"`
	PriceKurus int64  `gorm:"not null" json:"price_kurus"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`
}

func (CreditPackage) TableName() string { return "credit_packages" }

const (
	ReasonPurchase = "purchase"
	ReasonBoost    = "boost"
	ReasonGrant    = "grant"
)

// CreditTransaction: el saldo es la suma de Amount; nunca negativo.
type CreditTransaction struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:varchar(40);not null" json:"reason"`
	PackageID *string   `gorm:"type:uuid" json:"package_id,omitempty"`
	ListingID *string   `gorm:"type:uuid" json:"listing_id,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }

type ListFilter struct {
	Kind       Kind
	ProvinceID int64
	// Now decide qué publicaciones siguen destacadas.
	Now    time.Time
	Offset int
	Limit  int
}
