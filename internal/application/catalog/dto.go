package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/catalog"
)

// ProductListFilter represents the storefront browse filters
type ProductListFilter struct {
	Keyword  string   `form:"keyword"`
	Category string   `form:"category"`
	MinPrice *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
}

// CreateProductRequest represents an admin request to create a product
type CreateProductRequest struct {
	SKU          string  `json:"sku" binding:"required,min=1,max=50"`
	Name         string  `json:"name" binding:"required,min=1,max=200"`
	ImageURL     string  `json:"imageURL"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Price        float64 `json:"price" binding:"min=0"`
	CountInStock int     `json:"countInStock" binding:"min=0"`
	Material     string  `json:"material"`
	DesignStyle  string  `json:"designStyle"`
}

// UpdateProductRequest represents an admin request to update a product
type UpdateProductRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=200"`
	ImageURL     string   `json:"imageURL"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	CountInStock *int     `json:"countInStock" binding:"omitempty,min=0"`
	Material     string   `json:"material"`
	DesignStyle  string   `json:"designStyle"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"imageURL"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Material     string    `json:"material"`
	DesignStyle  string    `json:"designStyle"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProductListResponse is the paginated browse result
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// ToProductResponse converts a product aggregate to its API representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		ImageURL:     p.ImageURL,
		Description:  p.Description,
		Category:     p.Category,
		Price:        p.Price.Float64(),
		CountInStock: p.CountInStock,
		Rating:       p.Rating,
		NumReviews:   p.NumReviews,
		Material:     p.Material,
		DesignStyle:  p.DesignStyle,
		CreatedAt:    p.CreatedAt,
	}
}
