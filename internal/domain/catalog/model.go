package catalog

import "time"

type Category struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Name string `gorm:"type:varchar(120);not null" json:"name"`
	Slug string `gorm:"type:varchar(140);not null;uniqueIndex" json:"slug"`
}

func (Category) TableName() string { return "categories" }

// Product es un ítem de la tienda. Precio en kuruş.
type Product struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(220);not null;uniqueIndex"`
	Description string `gorm:"type:text"`

	PriceKurus        int64 `gorm:"not null;check:price_kurus > 0"`
	Stock             int   `gorm:"not null;default:0;check:stock >= 0"`
	LowStockThreshold int   `gorm:"not null;default:5"`
	IsActive          bool  `gorm:"not null;default:true;index"`

	// VendorUserID: petshop dueño del producto; nil = producto de la plataforma.
	VendorUserID *string `gorm:"type:uuid;index"`

	Categories []Category `gorm:"many2many:product_categories;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Product) TableName() string { return "products" }

func (p Product) InStock(qty int) bool {
	return p.IsActive && qty > 0 && p.Stock >= qty
}

func (p Product) HasCategory(slug string) bool {
	for _, c := range p.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

type ProductFilter struct {
	CategorySlug string
	Query        string
	ActiveOnly   bool
	Offset       int
	Limit        int
}

type ProductPage struct {
	Items    []Product
	Total    int64
	Page     int
	PageSize int
}
