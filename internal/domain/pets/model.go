package pets

import "time"

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale || s == SexUnknown
}

// Species (tür) y Breed (ırk) son catálogo, cargado desde CSV `tur,irk`.
type Species struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(80);not null;uniqueIndex" json:"name"`
	Slug string `gorm:"type:varchar(80);not null;uniqueIndex" json:"slug"`
}

func (Species) TableName() string { return "species" }

type Breed struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	SpeciesID int64  `gorm:"not null;uniqueIndex:ux_breeds_species_name" json:"species_id"`
	Name      string `gorm:"type:varchar(120);not null;uniqueIndex:ux_breeds_species_name" json:"name"`
}

func (Breed) TableName() string { return "breeds" }

// Animal representa una mascota registrada por su dueño.
type Animal struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	OwnerUserID string `gorm:"type:uuid;not null;index"`

	Name      string `gorm:"type:varchar(100);not null"`
	SpeciesID int64  `gorm:"not null;index"`
	BreedID   *int64
	Sex       Sex    `gorm:"type:varchar(10);not null"`
	Color     string `gorm:"type:varchar(60)"`

	BirthDate *time.Time `gorm:"type:date"`
	Microchip *string    `gorm:"type:varchar(15);uniqueIndex"` // 15 dígitos ISO 11784

	Notes  string `gorm:"type:text"`
	IsLost bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Animal) TableName() string { return "animals" }

// AnimalProfile controla lo que ve quien escanea la etiqueta QR.
type AnimalProfile struct {
	AnimalID       string `gorm:"type:uuid;primaryKey"`
	IsPublic       bool   `gorm:"not null;default:true"`
	ShowOwnerPhone bool   `gorm:"not null;default:false"`
	ContactNote    string `gorm:"type:text"`
	RewardNote     string `gorm:"type:text"`
	UpdatedAt      time.Time
}

func (AnimalProfile) TableName() string { return "animal_profiles" }

func DefaultProfile(animalID string, now time.Time) AnimalProfile {
	return AnimalProfile{
		AnimalID:  animalID,
		IsPublic:  true,
		UpdatedAt: now,
	}
}

type BreedRow struct {
	Species string
	Breed   string
}

type BreedImportStats struct {
	Rows           int
	Skipped        int
	SpeciesCreated int
	BreedsCreated  int
	Lines          []string
}
