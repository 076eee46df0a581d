package catalog

import (
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// Product is the aggregate root for a catalog entry
type Product struct {
	shared.BaseAggregateRoot
	SKU          string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string            `gorm:"type:varchar(200);not null"`
	ImageURL     string            `gorm:"type:varchar(500)"`
	Description  string            `gorm:"type:text"`
	Category     string            `gorm:"type:varchar(100);index"`
	Price        valueobject.Money `gorm:"type:decimal(18,2);not null"`
	CountInStock int               `gorm:"not null;default:0"`
	Rating       float64           `gorm:"not null;default:0"`
	NumReviews   int               `gorm:"not null;default:0"`
	Material     string            `gorm:"type:varchar(100)"`
	DesignStyle  string            `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product
func NewProduct(sku, name string, price valueobject.Money, countInStock int) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}
	if countInStock < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock count cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Price:             price,
		CountInStock:      countInStock,
	}, nil
}

// InStock returns true if at least the requested quantity is available
func (p *Product) InStock(qty int) bool {
	return qty > 0 && p.CountInStock >= qty
}

// UpdateDetails replaces the describing fields
func (p *Product) UpdateDetails(name, imageURL, description, category, material, designStyle string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	p.Name = name
	p.ImageURL = imageURL
	p.Description = description
	p.Category = category
	p.Material = material
	p.DesignStyle = designStyle
	return nil
}

// SetPrice replaces the price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}
	p.Price = price
	return nil
}

// SetStock replaces the stock count
func (p *Product) SetStock(count int) error {
	if count < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Stock count cannot be negative")
	}
	p.CountInStock = count
	return nil
}
