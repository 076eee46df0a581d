package checkout

import (
	"net/url"

	"github.com/outpost-commerce/backend/internal/domain/checkout"
)

// AddItemRequest represents a cart line to add or replace.
// Qty is absolute: adding a product already in the cart replaces its line.
type AddItemRequest struct {
	Product      string  `json:"product" binding:"required,min=1,max=100"`
	Name         string  `json:"name" binding:"required,min=1,max=200"`
	Price        float64 `json:"price" binding:"min=0"`
	Image        string  `json:"image"`
	Qty          int     `json:"qty" binding:"required,min=1"`
	CountInStock int     `json:"countInStock"`
}

// SetAddressRequest represents a shipping address update
type SetAddressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// SetPaymentRequest represents a payment method selection
type SetPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required,min=1,max=50"`
}

// CartItemResponse represents one cart line in API responses
type CartItemResponse struct {
	Product      string  `json:"product"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	Qty          int     `json:"qty"`
	CountInStock int     `json:"countInStock"`
}

// AddressResponse represents the cart's shipping address
type AddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CartResponse is the priced view of a checkout session
type CartResponse struct {
	Items           []CartItemResponse `json:"items"`
	ShippingAddress AddressResponse    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	Stage           string             `json:"stage"`
	ItemsPrice      float64            `json:"itemsPrice"`
	ShippingPrice   float64            `json:"shippingPrice"`
	TaxPrice        float64            `json:"taxPrice"`
	TotalPrice      float64            `json:"totalPrice"`
}

// RedirectResponse carries the login redirect for unauthenticated checkout
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

// LoginRedirect builds the login URL with a return-path token so the
// buyer lands back where checkout was interrupted
func LoginRedirect(returnPath string) RedirectResponse {
	if returnPath == "" {
		returnPath = "/"
	}
	return RedirectResponse{
		Redirect: "/login?redirect=" + url.QueryEscape(returnPath),
	}
}

func toCartResponse(cart checkout.Cart, stage checkout.Stage, quote checkout.Quote) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.LineItems))
	for _, li := range cart.LineItems {
		items = append(items, CartItemResponse{
			Product:      li.ProductRef,
			Name:         li.Name,
			Price:        li.UnitPrice.Float64(),
			Image:        li.ImageRef,
			Qty:          li.Qty,
			CountInStock: li.StockAtAddTime,
		})
	}

	return CartResponse{
		Items: items,
		ShippingAddress: AddressResponse{
			Address:    cart.ShippingAddress.Line1(),
			City:       cart.ShippingAddress.City(),
			PostalCode: cart.ShippingAddress.PostalCode(),
			Country:    cart.ShippingAddress.Country(),
		},
		PaymentMethod: cart.PaymentMethod,
		Stage:         stage.String(),
		ItemsPrice:    quote.ItemsPrice.Float64(),
		ShippingPrice: quote.ShippingPrice.Float64(),
		TaxPrice:      quote.TaxPrice.Float64(),
		TotalPrice:    quote.TotalPrice.Float64(),
	}
}
