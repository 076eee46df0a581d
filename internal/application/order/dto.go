package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/order"
)

// CreateOrderItemInput represents one cart line submitted for placement
type CreateOrderItemInput struct {
	Product      string  `json:"product" binding:"required,min=1,max=100"`
	Name         string  `json:"name" binding:"required,min=1,max=200"`
	Price        float64 `json:"price" binding:"min=0"`
	Image        string  `json:"image"`
	Qty          int     `json:"qty" binding:"required,min=1"`
	CountInStock int     `json:"countInStock"`
}

// AddressInput represents the shipping address in a create request
type AddressInput struct {
	Address    string `json:"address" binding:"required,min=1,max=200"`
	City       string `json:"city" binding:"required,min=1,max=100"`
	PostalCode string `json:"postalCode" binding:"required,min=1,max=20"`
	Country    string `json:"country"`
}

// CreateOrderRequest represents a request to place an order.
// Totals are never read from the client; they are recomputed from the
// submitted lines before the order is stored.
type CreateOrderRequest struct {
	OrderItems      []CreateOrderItemInput `json:"orderItems"`
	ShippingAddress AddressInput           `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// OrderListFilter represents filter options for a user's order history
type OrderListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Image   string  `json:"image"`
	Qty     int     `json:"qty"`
}

// AddressResponse represents a shipping address in API responses
type AddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          uuid.UUID           `json:"user"`
	OrderItems      []OrderItemResponse `json:"orderItems"`
	ShippingAddress AddressResponse     `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
	ItemsPrice      float64             `json:"itemsPrice"`
	ShippingPrice   float64             `json:"shippingPrice"`
	TaxPrice        float64             `json:"taxPrice"`
	TotalPrice      float64             `json:"totalPrice"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// ToOrderResponse converts an order aggregate to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			Product: item.ProductRef,
			Name:    item.Name,
			Price:   item.UnitPrice.Float64(),
			Image:   item.ImageRef,
			Qty:     item.Qty,
		})
	}

	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		OrderItems:  items,
		ShippingAddress: AddressResponse{
			Address:    o.ShippingAddress.Line1(),
			City:       o.ShippingAddress.City(),
			PostalCode: o.ShippingAddress.PostalCode(),
			Country:    o.ShippingAddress.Country(),
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice.Float64(),
		ShippingPrice: o.ShippingPrice.Float64(),
		TaxPrice:      o.TaxPrice.Float64(),
		TotalPrice:    o.TotalPrice.Float64(),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
	}
}
