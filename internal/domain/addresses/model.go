package addresses

import "time"

// Address es una dirección de envío del usuario.
type Address struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	UserID         string `gorm:"type:uuid;not null;index"`
	Title          string `gorm:"type:varchar(60);not null"` // "Ev", "İş"
	FullName       string `gorm:"type:varchar(150);not null"`
	Phone          string `gorm:"type:varchar(20);not null"`
	ProvinceID     int64  `gorm:"not null"`
	DistrictID     int64  `gorm:"not null"`
	NeighborhoodID *int64
	Line           string `gorm:"type:text;not null"`
	PostalCode     string `gorm:"type:varchar(10)"`
	IsDefault      bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Address) TableName() string { return "addresses" }
