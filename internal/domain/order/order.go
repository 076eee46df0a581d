package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// PaymentMethodCOD is cash on delivery; such orders start out unpaid
const PaymentMethodCOD = "COD"

// OrderItem is a frozen copy of a cart line at placement time. Later cart
// edits never reach back into a placed order.
type OrderItem struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductRef string            `gorm:"type:varchar(100);not null"`
	Name       string            `gorm:"type:varchar(200);not null"`
	UnitPrice  valueobject.Money `gorm:"type:decimal(18,2);not null"`
	ImageRef   string            `gorm:"type:varchar(500)"`
	Qty        int               `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a validated order item
func NewOrderItem(orderID uuid.UUID, productRef, name string, unitPrice valueobject.Money, imageRef string, qty int) (*OrderItem, error) {
	if productRef == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product reference cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}
	return &OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		ProductRef: productRef,
		Name:       name,
		UnitPrice:  unitPrice,
		ImageRef:   imageRef,
		Qty:        qty,
		CreatedAt:  time.Now(),
	}, nil
}

// Subtotal returns unit price times quantity
func (i OrderItem) Subtotal() valueobject.Money {
	return i.UnitPrice.MultiplyByInt(int64(i.Qty))
}

// Order is the aggregate root for a placed order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb"`
	PaymentMethod   string              `gorm:"type:varchar(50);not null"`
	ItemsPrice      valueobject.Money   `gorm:"type:decimal(18,2);not null"`
	ShippingPrice   valueobject.Money   `gorm:"type:decimal(18,2);not null"`
	TaxPrice        valueobject.Money   `gorm:"type:decimal(18,2);not null"`
	TotalPrice      valueobject.Money   `gorm:"type:decimal(18,2);not null"`
	IsPaid          bool                `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsDelivered     bool `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
	IdempotencyKey  string `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order for a user. The item slice must already be
// validated copies; an empty order is rejected. Orders paid on delivery
// start unpaid, anything else is treated as settled up front.
func NewOrder(orderNumber string, userID uuid.UUID, items []OrderItem, shippingAddress valueobject.Address, paymentMethod string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order number cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "No order items")
	}
	if paymentMethod == "" {
		paymentMethod = PaymentMethodCOD
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		UserID:            userID,
		ShippingAddress:   shippingAddress,
		PaymentMethod:     paymentMethod,
		ItemsPrice:        valueobject.ZeroGBP(),
		ShippingPrice:     valueobject.ZeroGBP(),
		TaxPrice:          valueobject.ZeroGBP(),
		TotalPrice:        valueobject.ZeroGBP(),
	}

	for _, item := range items {
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}

	if paymentMethod != PaymentMethodCOD {
		now := time.Now()
		o.IsPaid = true
		o.PaidAt = &now
	}

	return o, nil
}

// SetPrices records the server-computed price breakdown
func (o *Order) SetPrices(itemsPrice, shippingPrice, taxPrice, totalPrice valueobject.Money) {
	o.ItemsPrice = itemsPrice
	o.ShippingPrice = shippingPrice
	o.TaxPrice = taxPrice
	o.TotalPrice = totalPrice
	o.UpdatedAt = time.Now()
}

// MarkPaid records payment settlement
func (o *Order) MarkPaid(at time.Time) error {
	if o.IsPaid {
		return shared.NewDomainError("INVALID_STATE", "Order is already paid")
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered records delivery
func (o *Order) MarkDelivered(at time.Time) error {
	if o.IsDelivered {
		return shared.NewDomainError("INVALID_STATE", "Order is already delivered")
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	o.UpdatedAt = time.Now()
	return nil
}

// BelongsTo reports whether the order is owned by the given user
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}
