package models

import "time"

// ProductCategory is the storefront department a product is listed under.
type ProductCategory string

const (
	CategoryPC                ProductCategory = "pc"
	CategoryPCParts           ProductCategory = "pc_parts"
	CategoryMobile            ProductCategory = "mobile"
	CategoryMobileAccessories ProductCategory = "mobile_accessories"
)

// PCPartType classifies pc_parts products for the build wizard.
type PCPartType string

const (
	PartCPU         PCPartType = "cpu"
	PartGPU         PCPartType = "gpu"
	PartRAM         PCPartType = "ram"
	PartStorage     PCPartType = "storage"
	PartMotherboard PCPartType = "motherboard"
	PartPSU         PCPartType = "psu"
	PartCase        PCPartType = "case"
	PartCooling     PCPartType = "cooling"
)

// Product is a catalog record. Cart lines carry a copy of it as a display snapshot.
type Product struct {
	ID                 string            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name               string            `gorm:"type:varchar(255);not null" json:"name"`
	Description        string            `gorm:"type:text" json:"description,omitempty"`
	Price              float64           `gorm:"not null" json:"price"`
	SalePrice          *float64          `json:"sale_price"`
	Category           ProductCategory   `gorm:"type:varchar(32);index;not null" json:"category"`
	PCPartType         PCPartType        `gorm:"column:pc_part_type;type:varchar(32);index" json:"pc_part_type,omitempty"`
	Brand              string            `gorm:"type:varchar(128)" json:"brand,omitempty"`
	Model              string            `gorm:"type:varchar(128)" json:"model,omitempty"`
	ImageURL           string            `json:"image_url,omitempty"`
	Images             []string          `gorm:"serializer:json" json:"images"`
	StockQuantity      int               `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold  *int              `json:"low_stock_threshold,omitempty"`
	Specs              map[string]string `gorm:"serializer:json" json:"specs"`
	CompatibilityNotes string            `json:"compatibility_notes,omitempty"`
	IsFeatured         bool              `gorm:"not null;default:false" json:"is_featured"`
	IsActive           bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// EffectivePrice is the sale price when one is set, otherwise the list price.
func (p *Product) EffectivePrice() float64 {
	if p == nil {
		return 0
	}
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p != nil && p.StockQuantity > 0
}

// ProductFilter narrows a catalog listing. Zero values mean "no constraint",
// except IncludeInactive which must be set to list inactive products.
type ProductFilter struct {
	Category        ProductCategory
	PCPartType      PCPartType
	FeaturedOnly    bool
	IncludeInactive bool
	Limit           int
}
