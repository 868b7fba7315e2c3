package locations

// Province (il), District (ilçe), Neighborhood (mahalle).
type Province struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
}

func (Province) TableName() string { return "provinces" }

type District struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	ProvinceID int64  `gorm:"not null;uniqueIndex:ux_districts_province_name" json:"province_id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex:ux_districts_province_name" json:"name"`
}

func (District) TableName() string { return "districts" }

type Neighborhood struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	DistrictID int64  `gorm:"not null;uniqueIndex:ux_neighborhoods_district_name" json:"district_id"`
	Name       string `gorm:"type:varchar(150);not null;uniqueIndex:ux_neighborhoods_district_name" json:"name"`
}

func (Neighborhood) TableName() string { return "neighborhoods" }

// ImportRow es una fila ya normalizada del CSV `il,ilce[,mahalle]`.
type ImportRow struct {
	Province     string
	District     string
	Neighborhood string
}

type ImportStats struct {
	Rows                 int
	Skipped              int
	ProvincesCreated     int
	DistrictsCreated     int
	NeighborhoodsCreated int

	// Lines: vista previa línea a línea (lo que se creó o se crearía en dry-run).
	Lines []string
}
