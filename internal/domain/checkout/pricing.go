package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// PricingConfig holds the knobs the quote computation depends on
type PricingConfig struct {
	// FreeShippingThreshold must be strictly exceeded for free shipping.
	// An items total exactly at the threshold still pays the flat fee.
	FreeShippingThreshold valueobject.Money

	// FlatShippingFee is charged on every order below the threshold
	FlatShippingFee valueobject.Money

	// VATRate is the fraction of the items price shown as tax, e.g. 0.2
	VATRate decimal.Decimal
}

// DefaultPricingConfig returns the storefront defaults
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: valueobject.NewMoneyGBPFromFloat(500),
		FlatShippingFee:       valueobject.NewMoneyGBPFromFloat(50),
		VATRate:               decimal.NewFromFloat(0.2),
	}
}

// Quote is the priced view of a set of line items.
// TaxPrice is display-only: the total is items plus shipping, tax excluded.
type Quote struct {
	ItemsPrice    valueobject.Money `json:"itemsPrice"`
	ShippingPrice valueobject.Money `json:"shippingPrice"`
	TaxPrice      valueobject.Money `json:"taxPrice"`
	TotalPrice    valueobject.Money `json:"totalPrice"`
}

// ComputeQuote prices the given line items. It is a pure function of its
// arguments: no clock, no configuration lookup, no stored state.
func ComputeQuote(items []LineItem, cfg PricingConfig) Quote {
	currency := cfg.FlatShippingFee.Currency()
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	itemsPrice := valueobject.Zero(currency)
	for _, li := range items {
		itemsPrice = itemsPrice.MustAdd(li.Subtotal())
	}

	shippingPrice := cfg.FlatShippingFee
	if itemsPrice.Amount().GreaterThan(cfg.FreeShippingThreshold.Amount()) {
		shippingPrice = valueobject.Zero(currency)
	}

	taxPrice := itemsPrice.Multiply(cfg.VATRate).Round(2)
	totalPrice := itemsPrice.MustAdd(shippingPrice)

	return Quote{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}
