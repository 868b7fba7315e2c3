package accounts

import (
	"strings"
	"time"

	"petkimlik/internal/ports/auth"
)

// User es la cuenta de la plataforma (dueño, veterinario, petshop o admin).
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone        *string    `gorm:"type:varchar(20);uniqueIndex"` // E.164, nil si no tiene
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	FullName     string     `gorm:"type:varchar(150);not null"`
	Role         auth.Role  `gorm:"type:varchar(20);not null;index"`
	IsActive     bool       `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// VendorProfile es el perfil de negocio de veterinerler y petshoplar.
type VendorProfile struct {
	UserID       string `gorm:"type:uuid;primaryKey"`
	BusinessName string `gorm:"type:varchar(200)"`
	TaxNumber    string `gorm:"type:varchar(20)"`
	Phone        string `gorm:"type:varchar(20)"`
	ProvinceID   int64
	DistrictID   int64
	AddressLine  string `gorm:"type:text"`
	UpdatedAt    time.Time
}

func (VendorProfile) TableName() string { return "vendor_profiles" }

// Complete: los campos mínimos para operar en la plataforma.
func (p VendorProfile) Complete() bool {
	return strings.TrimSpace(p.BusinessName) != "" &&
		strings.TrimSpace(p.Phone) != "" &&
		p.ProvinceID > 0 &&
		p.DistrictID > 0 &&
		strings.TrimSpace(p.AddressLine) != ""
}

// GuestProfile guarda el contacto de compras sin cuenta (invitado).
type GuestProfile struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	FullName  string `gorm:"type:varchar(150);not null"`
	Email     string `gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone     string `gorm:"type:varchar(20)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GuestProfile) TableName() string { return "guest_profiles" }
