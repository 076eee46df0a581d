package checkout

import (
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// PaymentMethodCOD is cash on delivery, the default payment method
const PaymentMethodCOD = "COD"

// LineItem is a snapshot of a product at the moment it was added to a cart
type LineItem struct {
	ProductRef     string             `json:"product"`
	Name           string             `json:"name"`
	UnitPrice      valueobject.Money  `json:"price"`
	ImageRef       string             `json:"image"`
	Qty            int                `json:"qty"`
	StockAtAddTime int                `json:"countInStock"`
}

// NewLineItem creates a validated line item
func NewLineItem(productRef, name string, unitPrice valueobject.Money, imageRef string, qty, stockAtAddTime int) (LineItem, error) {
	if productRef == "" {
		return LineItem{}, shared.NewDomainError("VALIDATION_ERROR", "Product reference cannot be empty")
	}
	if name == "" {
		return LineItem{}, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if qty <= 0 {
		return LineItem{}, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}
	return LineItem{
		ProductRef:     productRef,
		Name:           name,
		UnitPrice:      unitPrice,
		ImageRef:       imageRef,
		Qty:            qty,
		StockAtAddTime: stockAtAddTime,
	}, nil
}

// Subtotal returns unit price times quantity
func (li LineItem) Subtotal() valueobject.Money {
	return li.UnitPrice.MultiplyByInt(int64(li.Qty))
}

// Cart holds a buyer's pending purchase. Line items are ordered and unique
// by product reference. Values are treated as immutable; every mutation
// goes through Apply, which returns a fresh Cart.
type Cart struct {
	LineItems       []LineItem          `json:"lineItems"`
	ShippingAddress valueobject.Address `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`
}

// NewCart returns an empty cart with the default payment method
func NewCart() Cart {
	return Cart{
		LineItems:     []LineItem{},
		PaymentMethod: PaymentMethodCOD,
	}
}

// IsEmpty returns true if the cart has no line items
func (c Cart) IsEmpty() bool {
	return len(c.LineItems) == 0
}

// Find returns the line item for the given product reference, if present
func (c Cart) Find(productRef string) (LineItem, bool) {
	for _, li := range c.LineItems {
		if li.ProductRef == productRef {
			return li, true
		}
	}
	return LineItem{}, false
}

// ItemCount returns the total number of units across all lines
func (c Cart) ItemCount() int {
	total := 0
	for _, li := range c.LineItems {
		total += li.Qty
	}
	return total
}

// Command is a tagged cart mutation. The closed set of implementations
// below is the only way to change a cart.
type Command interface {
	isCartCommand()
}

// AddItem inserts a line item, or replaces the existing line with the same
// product reference. The quantity carried by the item is absolute.
type AddItem struct {
	Item LineItem
}

// RemoveItem drops the line with the given product reference, if any
type RemoveItem struct {
	ProductRef string
}

// SetAddress replaces the shipping address
type SetAddress struct {
	Address valueobject.Address
}

// SetPayment replaces the payment method
type SetPayment struct {
	Method string
}

// Clear empties the line items. The shipping address and payment method
// are deliberately retained for the buyer's next order.
type Clear struct{}

func (AddItem) isCartCommand()    {}
func (RemoveItem) isCartCommand() {}
func (SetAddress) isCartCommand() {}
func (SetPayment) isCartCommand() {}
func (Clear) isCartCommand()      {}

// Apply is a pure reducer: it returns the cart that results from applying
// cmd to c, never mutating c or its line item slice.
func Apply(c Cart, cmd Command) Cart {
	next := c
	next.LineItems = make([]LineItem, len(c.LineItems))
	copy(next.LineItems, c.LineItems)

	switch v := cmd.(type) {
	case AddItem:
		replaced := false
		for i, li := range next.LineItems {
			if li.ProductRef == v.Item.ProductRef {
				next.LineItems[i] = v.Item
				replaced = true
				break
			}
		}
		if !replaced {
			next.LineItems = append(next.LineItems, v.Item)
		}
	case RemoveItem:
		kept := next.LineItems[:0]
		for _, li := range next.LineItems {
			if li.ProductRef != v.ProductRef {
				kept = append(kept, li)
			}
		}
		next.LineItems = kept
	case SetAddress:
		next.ShippingAddress = v.Address
	case SetPayment:
		next.PaymentMethod = v.Method
	case Clear:
		next.LineItems = []LineItem{}
	}

	return next
}
