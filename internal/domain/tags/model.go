package tags

import "time"

// Tag es una etiqueta QR física. Nace sin asignar y el dueño la activa.
type Tag struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	Code        string     `gorm:"type:varchar(16);not null;uniqueIndex"`
	AnimalID    *string    `gorm:"type:uuid;index"`
	ActivatedAt *time.Time
	CreatedAt   time.Time
}

func (Tag) TableName() string { return "tags" }

func (t Tag) Assigned() bool {
	return t.AnimalID != nil && *t.AnimalID != ""
}

// TagScan es append-only: un registro por lectura del QR.
type TagScan struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	TagID     string    `gorm:"type:uuid;not null;index"`
	AnimalID  *string   `gorm:"type:uuid;index"`
	ScannedAt time.Time `gorm:"not null;index"`
	IPAddress string    `gorm:"type:varchar(45)"`
	UserAgent string    `gorm:"type:varchar(300)"`
	Latitude  *float64
	Longitude *float64
}

func (TagScan) TableName() string { return "tag_scans" }

type ScanMeta struct {
	IPAddress string
	UserAgent string
	Latitude  *float64
	Longitude *float64
}

// PublicProfile es lo que ve quien escanea: nunca incluye ids internos.
type PublicProfile struct {
	Code        string `json:"code"`
	AnimalName  string `json:"animal_name"`
	SpeciesName string `json:"species_name"`
	BreedName   string `json:"breed_name,omitempty"`
	Color       string `json:"color,omitempty"`
	IsLost      bool   `json:"is_lost"`
	ContactNote string `json:"contact_note,omitempty"`
	RewardNote  string `json:"reward_note,omitempty"`
	OwnerPhone  string `json:"owner_phone,omitempty"`
}
